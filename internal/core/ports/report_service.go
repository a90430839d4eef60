package ports

import (
	"context"
	"io"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// ImageUpload is one uploaded image, validated and stored before the report
// document is written.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CreateReportInput carries everything needed to file a new report.
type CreateReportInput struct {
	Title       string
	Description string
	Category    string
	Longitude   float64
	Latitude    float64
	Address     string
	Priority    string // defaults to medium when empty
	Images      []ImageUpload
}

// UpdateReportInput is the owner's partial edit. Nil means "leave untouched".
type UpdateReportInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Status      *string
	AssignedTo  *string
}

// ListReportsInput carries the public listing parameters. The geo triple
// (Latitude, Longitude, RadiusKm) must be fully present or fully absent.
type ListReportsInput struct {
	Page      int
	PerPage   int
	Category  string
	Status    string
	Priority  string
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

// ListReportsResult is one page of enriched reports plus pagination totals.
type ListReportsResult struct {
	Reports    []*domain.EnrichedReport
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ListCommentsResult is one page of enriched comments.
type ListCommentsResult struct {
	Comments   []*domain.EnrichedComment
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ReportService is the façade over the report repository, counter/lifecycle
// management, enrichment, and real-time distribution. Reads are public;
// writes require a principal, and update/delete require ownership.
type ReportService interface {
	Create(ctx context.Context, principal domain.Principal, input CreateReportInput) (*domain.EnrichedReport, error)
	List(ctx context.Context, input ListReportsInput) (*ListReportsResult, error)
	GetByID(ctx context.Context, id string) (*domain.EnrichedReport, error)
	Update(ctx context.Context, principal domain.Principal, id string, input UpdateReportInput) (*domain.EnrichedReport, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
	CastVote(ctx context.Context, principal domain.Principal, reportID, voteType string) (*domain.Report, error)
	AddComment(ctx context.Context, principal domain.Principal, reportID, content string) (*domain.EnrichedComment, error)
	ListComments(ctx context.Context, reportID string, page, perPage int) (*ListCommentsResult, error)
}

// Publisher is the real-time distribution boundary. Publish is fire-and-
// forget after the triggering mutation commits; with no subscribers the event
// is dropped, not queued.
type Publisher interface {
	Publish(topic string, event domain.Event)
}
