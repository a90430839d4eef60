package ports

import (
	"context"
	"time"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// GeoFilter restricts a listing to reports within RadiusKm of a center point.
// The filter is all-or-none: it is either fully present or absent.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// ListReportsFilter carries the predicate for listing and counting reports.
// The same filter produces the page and the total; pagination is applied on
// top of it, never inside it.
type ListReportsFilter struct {
	Category domain.ReportCategory // optional, "" = no filter
	Status   domain.ReportStatus   // optional
	Priority domain.ReportPriority // optional
	UserID   string                // optional, scope to one owner
	Geo      *GeoFilter            // optional proximity constraint
	Skip     int
	Limit    int
}

// ReportFieldUpdate is the partial field set applied by UpdateReport. Nil
// pointers mean "leave untouched"; supplied fields overwrite (last writer
// wins on overlapping fields).
type ReportFieldUpdate struct {
	Title       *string
	Description *string
	Category    *domain.ReportCategory
	Priority    *domain.ReportPriority
	Status      *domain.ReportStatus
	AssignedTo  *string
	UpdatedAt   time.Time
	ResolvedAt  *time.Time // set only on the transition into resolved
}

// ReportRepository is the entity store for reports. All writes are
// single-document atomic; counter mutations use atomic increments so
// concurrent votes and comments never lose updates.
type ReportRepository interface {
	Insert(ctx context.Context, r *domain.Report) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	// List returns one page matching filter. With a geo filter results are
	// ordered by distance ascending; otherwise by created_at descending.
	List(ctx context.Context, filter ListReportsFilter) ([]*domain.Report, error)
	// Count counts against the same predicate as List, before pagination.
	Count(ctx context.Context, filter ListReportsFilter) (int64, error)
	UpdateFields(ctx context.Context, id string, update ReportFieldUpdate) error
	Delete(ctx context.Context, id string) error
	// IncVotes adjusts the upvote/downvote counters by the given deltas.
	IncVotes(ctx context.Context, id string, upDelta, downDelta int64) error
	IncComments(ctx context.Context, id string, delta int64) error
}

// CommentRepository persists report comments.
type CommentRepository interface {
	Insert(ctx context.Context, c *domain.Comment) (string, error)
	ListByReport(ctx context.Context, reportID string, skip, limit int) ([]*domain.Comment, error)
	CountByReport(ctx context.Context, reportID string) (int64, error)
	// DeleteByReport removes every comment attached to the report (cascade on
	// report deletion) and returns the number removed.
	DeleteByReport(ctx context.Context, reportID string) (int64, error)
}

// VoteRepository persists per-user vote records. Upsert returns the previous
// vote type for the (report, user) pair, or "" when the user had not voted;
// the unique (report_id, user_id) index makes the pair at-most-one.
type VoteRepository interface {
	Upsert(ctx context.Context, v *domain.Vote) (previous domain.VoteType, err error)
	DeleteByReport(ctx context.Context, reportID string) (int64, error)
}
