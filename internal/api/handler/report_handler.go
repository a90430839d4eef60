package handler

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/civicreporter/civic-reporter-api/internal/api/metrics"
	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// ReportHandler handles HTTP requests for report operations.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create handles POST /api/v1/reports. The body is multipart form data so
// report fields and image files arrive in a single request.
//
// @Summary      File a new report
// @Tags         reports
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData  string  true   "Report title"
// @Param        description  formData  string  true   "Report description"
// @Param        category     formData  string  true   "Category"
// @Param        location     formData  string  true   "JSON object with latitude and longitude"
// @Param        address      formData  string  true   "Street address"
// @Param        priority     formData  string  false  "Priority (defaults to medium)"
// @Param        images       formData  file    false  "Report images"
// @Success      201  {object}  domain.EnrichedReport
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var loc locationForm
	if raw := c.FormValue("location"); raw == "" {
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	} else if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return fmt.Errorf("%w: location must be a JSON object with latitude and longitude", domain.ErrValidation)
	}

	input := ports.CreateReportInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Longitude:   loc.Longitude,
		Latitude:    loc.Latitude,
		Address:     c.FormValue("address"),
		Priority:    c.FormValue("priority"),
	}

	files, err := formImages(c)
	if err != nil {
		return err
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("opening uploaded file: %w", err)
		}
		defer f.Close()
		input.Images = append(input.Images, ports.ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}

	report, err := h.service.Create(c.Request().Context(), principal, input)
	if err != nil {
		return err
	}

	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Category)).Inc()
	return c.JSON(http.StatusCreated, report)
}

// List handles GET /api/v1/reports.
//
// @Summary      List reports with filters and pagination
// @Tags         reports
// @Produce      json
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        per_page   query  int     false  "Page size (max 100)"
// @Param        category   query  string  false  "Filter by category"
// @Param        status     query  string  false  "Filter by status"
// @Param        priority   query  string  false  "Filter by priority"
// @Param        latitude   query  number  false  "Proximity center latitude"
// @Param        longitude  query  number  false  "Proximity center longitude"
// @Param        radius     query  number  false  "Proximity radius in kilometers"
// @Success      200  {object}  listReportsResponse
// @Failure      400  {object}  errorResponse
// @Router       /api/v1/reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	input := ports.ListReportsInput{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	}

	var err error
	if input.Page, err = intParam(c, "page", 1); err != nil {
		return err
	}
	if input.PerPage, err = intParam(c, "per_page", 20); err != nil {
		return err
	}
	if input.Latitude, err = floatParam(c, "latitude"); err != nil {
		return err
	}
	if input.Longitude, err = floatParam(c, "longitude"); err != nil {
		return err
	}
	if input.RadiusKm, err = floatParam(c, "radius"); err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /api/v1/reports/:id.
//
// @Summary      Get one report with its author
// @Tags         reports
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  domain.EnrichedReport
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	report, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Update handles PUT /api/v1/reports/:id. Only the owner may update.
//
// @Summary      Update a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report ID"
// @Param        body  body      updateReportRequest  true  "Fields to change"
// @Success      200   {object}  domain.EnrichedReport
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/reports/{id} [put]
func (h *ReportHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	report, err := h.service.Update(c.Request().Context(), principal, c.Param("id"), ports.UpdateReportInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}

	if req.Status != nil {
		metrics.ReportStatusChangesTotal.WithLabelValues(*req.Status).Inc()
	}
	return c.JSON(http.StatusOK, report)
}

// Delete handles DELETE /api/v1/reports/:id. Only the owner may delete.
//
// @Summary      Delete a report and its comments and votes
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  deletedResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/reports/{id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Message: "report deleted"})
}

// Vote handles POST /api/v1/reports/:id/vote.
//
// @Summary      Cast or switch a vote on a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Report ID"
// @Param        body  body      castVoteRequest  true  "Vote type"
// @Success      200   {object}  voteResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/reports/{id}/vote [post]
func (h *ReportHandler) Vote(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.service.CastVote(c.Request().Context(), principal, c.Param("id"), req.VoteType)
	if err != nil {
		return err
	}

	metrics.VotesCastTotal.WithLabelValues(req.VoteType).Inc()
	return c.JSON(http.StatusOK, voteResponse{
		ReportID:  report.ID,
		Upvotes:   report.Upvotes,
		Downvotes: report.Downvotes,
	})
}

// AddComment handles POST /api/v1/reports/:id/comments.
//
// @Summary      Comment on a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Report ID"
// @Param        body  body      addCommentRequest  true  "Comment content"
// @Success      201   {object}  domain.EnrichedComment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/reports/{id}/comments [post]
func (h *ReportHandler) AddComment(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.service.AddComment(c.Request().Context(), principal, c.Param("id"), req.Content)
	if err != nil {
		return err
	}

	metrics.CommentsAddedTotal.Inc()
	return c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /api/v1/reports/:id/comments.
//
// @Summary      List a report's comments with their authors
// @Tags         reports
// @Produce      json
// @Param        id        path   string  true   "Report ID"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        per_page  query  int     false  "Page size (max 100)"
// @Success      200  {object}  listCommentsResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/reports/{id}/comments [get]
func (h *ReportHandler) ListComments(c echo.Context) error {
	page, err := intParam(c, "page", 1)
	if err != nil {
		return err
	}
	perPage, err := intParam(c, "per_page", 20)
	if err != nil {
		return err
	}

	result, err := h.service.ListComments(c.Request().Context(), c.Param("id"), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentsResponse(result))
}

// formImages returns the uploaded "images" files, tolerating a body with no
// multipart form at all.
func formImages(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart || err == http.ErrMissingBoundary {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	return form.File["images"], nil
}

// intParam parses an optional integer query parameter.
func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return v, nil
}

// floatParam parses an optional float query parameter, nil when absent.
func floatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return &v, nil
}
