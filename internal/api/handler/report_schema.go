package handler

import (
	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// locationForm is the "location" multipart field, submitted as a JSON string.
type locationForm struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type updateReportRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assigned_to"`
}

type castVoteRequest struct {
	VoteType string `json:"vote_type" validate:"required,oneof=upvote downvote"`
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type listReportsResponse struct {
	Reports    []*domain.EnrichedReport `json:"reports"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	PerPage    int                      `json:"per_page"`
	TotalPages int                      `json:"total_pages"`
}

type listCommentsResponse struct {
	Comments   []*domain.EnrichedComment `json:"comments"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PerPage    int                       `json:"per_page"`
	TotalPages int                       `json:"total_pages"`
}

type voteResponse struct {
	ReportID  string `json:"report_id"`
	Upvotes   int64  `json:"upvotes"`
	Downvotes int64  `json:"downvotes"`
}

type deletedResponse struct {
	Message string `json:"message"`
}

func toListResponse(r *ports.ListReportsResult) listReportsResponse {
	return listReportsResponse{
		Reports:    r.Reports,
		Total:      r.Total,
		Page:       r.Page,
		PerPage:    r.PerPage,
		TotalPages: r.TotalPages,
	}
}

func toCommentsResponse(r *ports.ListCommentsResult) listCommentsResponse {
	return listCommentsResponse{
		Comments:   r.Comments,
		Total:      r.Total,
		Page:       r.Page,
		PerPage:    r.PerPage,
		TotalPages: r.TotalPages,
	}
}
