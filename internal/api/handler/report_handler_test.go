package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/api"
	"github.com/civicreporter/civic-reporter-api/internal/api/handler"
	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

type stubReportService struct {
	createFn       func(ctx context.Context, p domain.Principal, in ports.CreateReportInput) (*domain.EnrichedReport, error)
	listFn         func(ctx context.Context, in ports.ListReportsInput) (*ports.ListReportsResult, error)
	getFn          func(ctx context.Context, id string) (*domain.EnrichedReport, error)
	castVoteFn     func(ctx context.Context, p domain.Principal, reportID, voteType string) (*domain.Report, error)
	addCommentFn   func(ctx context.Context, p domain.Principal, reportID, content string) (*domain.EnrichedComment, error)
	listCommentsFn func(ctx context.Context, reportID string, page, perPage int) (*ports.ListCommentsResult, error)
}

func (s *stubReportService) Create(ctx context.Context, p domain.Principal, in ports.CreateReportInput) (*domain.EnrichedReport, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubReportService) List(ctx context.Context, in ports.ListReportsInput) (*ports.ListReportsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubReportService) GetByID(ctx context.Context, id string) (*domain.EnrichedReport, error) {
	return s.getFn(ctx, id)
}

func (s *stubReportService) Update(context.Context, domain.Principal, string, ports.UpdateReportInput) (*domain.EnrichedReport, error) {
	panic("not used")
}

func (s *stubReportService) Delete(context.Context, domain.Principal, string) error {
	panic("not used")
}

func (s *stubReportService) CastVote(ctx context.Context, p domain.Principal, reportID, voteType string) (*domain.Report, error) {
	return s.castVoteFn(ctx, p, reportID, voteType)
}

func (s *stubReportService) AddComment(ctx context.Context, p domain.Principal, reportID, content string) (*domain.EnrichedComment, error) {
	return s.addCommentFn(ctx, p, reportID, content)
}

func (s *stubReportService) ListComments(ctx context.Context, reportID string, page, perPage int) (*ports.ListCommentsResult, error) {
	return s.listCommentsFn(ctx, reportID, page, perPage)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func TestReportHandler_List_ParsesQuery(t *testing.T) {
	e := newTestEcho()
	var got ports.ListReportsInput
	stub := &stubReportService{
		listFn: func(_ context.Context, in ports.ListReportsInput) (*ports.ListReportsResult, error) {
			got = in
			return &ports.ListReportsResult{Page: in.Page, PerPage: in.PerPage}, nil
		},
	}
	h := handler.NewReportHandler(stub)

	q := url.Values{}
	q.Set("page", "2")
	q.Set("per_page", "50")
	q.Set("category", "pothole")
	q.Set("status", "pending")
	q.Set("latitude", "19.43")
	q.Set("longitude", "-99.13")
	q.Set("radius", "5")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if got.Page != 2 || got.PerPage != 50 || got.Category != "pothole" || got.Status != "pending" {
		t.Fatalf("parsed input = %+v", got)
	}
	if got.Latitude == nil || *got.Latitude != 19.43 {
		t.Fatalf("latitude = %v", got.Latitude)
	}
	if got.Longitude == nil || *got.Longitude != -99.13 {
		t.Fatalf("longitude = %v", got.Longitude)
	}
	if got.RadiusKm == nil || *got.RadiusKm != 5 {
		t.Fatalf("radius = %v", got.RadiusKm)
	}
}

func TestReportHandler_List_BadNumbers(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		listFn: func(context.Context, ports.ListReportsInput) (*ports.ListReportsResult, error) {
			t.Fatal("service called with unparseable query")
			return nil, nil
		},
	})

	for _, query := range []string{"page=abc", "per_page=x", "latitude=north", "radius=wide"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?"+query, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.List(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, rec.Code)
		}
	}
}

func TestReportHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		getFn: func(context.Context, string) (*domain.EnrichedReport, error) {
			return nil, domain.ErrReportNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/reports/:id")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["error"] != "report not found" {
		t.Fatalf("body = %v", body)
	}
}

func TestReportHandler_Vote(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		castVoteFn: func(_ context.Context, p domain.Principal, reportID, voteType string) (*domain.Report, error) {
			if p.ID != "user-1" || reportID != "report-1" || voteType != "upvote" {
				t.Fatalf("unexpected args: %s %s %s", p.ID, reportID, voteType)
			}
			return &domain.Report{ID: reportID, Upvotes: 3, Downvotes: 1}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"vote_type":"upvote"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/reports/:id/vote")
	c.SetParamNames("id")
	c.SetParamValues("report-1")
	c.Set(handler.PrincipalKey, domain.Principal{ID: "user-1", IsActive: true})

	if err := h.Vote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		ReportID  string `json:"report_id"`
		Upvotes   int64  `json:"upvotes"`
		Downvotes int64  `json:"downvotes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Upvotes != 3 || body.Downvotes != 1 {
		t.Fatalf("body = %+v", body)
	}
}

func TestReportHandler_Vote_InvalidType(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		castVoteFn: func(context.Context, domain.Principal, string, string) (*domain.Report, error) {
			t.Fatal("service called with invalid vote type")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"vote_type":"like"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.PrincipalKey, domain.Principal{ID: "user-1", IsActive: true})

	if err := h.Vote(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReportHandler_Vote_MissingPrincipal(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"vote_type":"upvote"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Vote(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReportHandler_AddComment(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		addCommentFn: func(_ context.Context, p domain.Principal, reportID, content string) (*domain.EnrichedComment, error) {
			return &domain.EnrichedComment{
				Comment: domain.Comment{ID: "comment-1", ReportID: reportID, UserID: p.ID, Content: content},
				User:    domain.UserSummary{ID: p.ID, Username: "ana"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"same problem here"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/reports/:id/comments")
	c.SetParamNames("id")
	c.SetParamValues("report-1")
	c.Set(handler.PrincipalKey, domain.Principal{ID: "user-1", IsActive: true})

	if err := h.AddComment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestReportHandler_AddComment_EmptyContent(t *testing.T) {
	e := newTestEcho()
	h := handler.NewReportHandler(&stubReportService{
		addCommentFn: func(context.Context, domain.Principal, string, string) (*domain.EnrichedComment, error) {
			t.Fatal("service called with empty content")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.PrincipalKey, domain.Principal{ID: "user-1", IsActive: true})

	if err := h.AddComment(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
