package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

const (
	maxPerPage     = 100
	defaultPerPage = 20
)

// ReportService orchestrates the report repository, counter and lifecycle
// writes, author enrichment, and real-time distribution. The publisher is an
// injected dependency, never a package-level singleton.
type ReportService struct {
	reports   ports.ReportRepository
	users     ports.UserRepository
	comments  ports.CommentRepository
	votes     ports.VoteRepository
	files     ports.FileStorage
	publisher ports.Publisher
	log       zerolog.Logger
}

func NewReportService(
	reports ports.ReportRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	votes ports.VoteRepository,
	files ports.FileStorage,
	publisher ports.Publisher,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		reports:   reports,
		users:     users,
		comments:  comments,
		votes:     votes,
		files:     files,
		publisher: publisher,
		log:       log,
	}
}

// requirePrincipal rejects requests without a usable authenticated actor.
func requirePrincipal(p domain.Principal) error {
	if p.ID == "" || !p.IsActive {
		return domain.ErrUnauthorized
	}
	return nil
}

// Create validates, stores images, inserts the report, bumps the owner's
// report counter, and publishes a new_report event. Image validation and
// storage happen before the insert: a storage failure there is a hard error.
// The counter increment after the insert is best-effort.
func (s *ReportService) Create(ctx context.Context, principal domain.Principal, input ports.CreateReportInput) (*domain.EnrichedReport, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = string(domain.PriorityMedium)
	}

	location, err := domain.NewLocation(input.Longitude, input.Latitude)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &domain.Report{
		UserID:      principal.ID,
		Title:       input.Title,
		Description: input.Description,
		Category:    domain.ReportCategory(input.Category),
		Location:    location,
		Address:     input.Address,
		Priority:    domain.ReportPriority(priority),
		Status:      domain.StatusPending,
		Images:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}

	for _, img := range input.Images {
		if err := s.files.Validate(img.Filename, img.Size); err != nil {
			return nil, err
		}
	}
	for _, img := range input.Images {
		ref, err := s.files.Store(ctx, img.Filename, img.Content, "reports")
		if err != nil {
			return nil, fmt.Errorf("store image %s: %w", img.Filename, err)
		}
		report.Images = append(report.Images, ref)
	}

	id, err := s.reports.Insert(ctx, report)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to insert report")
		return nil, err
	}
	report.ID = id

	// Sequential best-effort: a report without the counter bump is tolerable
	// drift, a blocked creation is not.
	if err := s.users.IncReportsCount(ctx, principal.ID, 1); err != nil {
		s.log.Warn().Err(err).Str("user_id", principal.ID).Msg("failed to increment reports_count")
	}

	enriched, err := s.enrichOne(ctx, report)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.TopicReports, domain.Event{Type: domain.EventNewReport, Payload: enriched})
	s.log.Info().Str("report_id", id).Str("user_id", principal.ID).Str("category", string(report.Category)).Msg("report created")

	return enriched, nil
}

// List answers a filtered, paginated query. The total is counted against the
// same predicate before pagination; totalPages = ceil(total/perPage).
func (s *ReportService) List(ctx context.Context, input ports.ListReportsInput) (*ports.ListReportsResult, error) {
	page, perPage, err := normalizePage(input.Page, input.PerPage)
	if err != nil {
		return nil, err
	}

	filter := ports.ListReportsFilter{
		Skip:  (page - 1) * perPage,
		Limit: perPage,
	}
	if input.Category != "" {
		c := domain.ReportCategory(input.Category)
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, input.Category)
		}
		filter.Category = c
	}
	if input.Status != "" {
		st := domain.ReportStatus(input.Status)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
		}
		filter.Status = st
	}
	if input.Priority != "" {
		p := domain.ReportPriority(input.Priority)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, input.Priority)
		}
		filter.Priority = p
	}

	geo, err := geoFilter(input.Latitude, input.Longitude, input.RadiusKm)
	if err != nil {
		return nil, err
	}
	filter.Geo = geo

	total, err := s.reports.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrichMany(ctx, reports)
	if err != nil {
		return nil, err
	}

	return &ports.ListReportsResult{
		Reports:    enriched,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// GetByID returns a single enriched report.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.EnrichedReport, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, report)
}

// Update applies the owner's partial edit. A transition into resolved stamps
// resolved_at; later transitions leave it untouched. The status machine is
// permissive: any valid status may be set at any time.
func (s *ReportService) Update(ctx context.Context, principal domain.Principal, id string, input ports.UpdateReportInput) (*domain.EnrichedReport, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.UserID != principal.ID {
		return nil, domain.ErrForbidden
	}

	update := ports.ReportFieldUpdate{UpdatedAt: time.Now().UTC()}
	if input.Title != nil {
		if err := lengthCheck("title", *input.Title, 5, 200); err != nil {
			return nil, err
		}
		update.Title = input.Title
	}
	if input.Description != nil {
		if err := lengthCheck("description", *input.Description, 10, 2000); err != nil {
			return nil, err
		}
		update.Description = input.Description
	}
	if input.Category != nil {
		c := domain.ReportCategory(*input.Category)
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *input.Category)
		}
		update.Category = &c
	}
	if input.Priority != nil {
		p := domain.ReportPriority(*input.Priority)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, *input.Priority)
		}
		update.Priority = &p
	}
	if input.AssignedTo != nil {
		update.AssignedTo = input.AssignedTo
	}
	if input.Status != nil {
		st := domain.ReportStatus(*input.Status)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *input.Status)
		}
		update.Status = &st
		if st == domain.StatusResolved && report.Status != domain.StatusResolved {
			resolvedAt := update.UpdatedAt
			update.ResolvedAt = &resolvedAt
		}
	}

	if err := s.reports.UpdateFields(ctx, id, update); err != nil {
		return nil, err
	}

	enriched, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.TopicReports, domain.Event{Type: domain.EventReportUpdated, Payload: enriched})
	s.log.Info().Str("report_id", id).Msg("report updated")

	return enriched, nil
}

// Delete removes the report, cascades comments and votes, decrements the
// owner's counter, and publishes report_deleted. Image cleanup failures are
// logged, never propagated: a stray orphaned file is cheaper than a
// permanently undeletable report.
func (s *ReportService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if report.UserID != principal.ID {
		return domain.ErrForbidden
	}

	for _, ref := range report.Images {
		if _, err := s.files.Delete(ref); err != nil {
			s.log.Warn().Err(err).Str("report_id", id).Str("image", ref).Msg("failed to delete report image")
		}
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.comments.DeleteByReport(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("report_id", id).Msg("failed to cascade comment deletion")
	}
	if _, err := s.votes.DeleteByReport(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("report_id", id).Msg("failed to cascade vote deletion")
	}
	if err := s.users.IncReportsCount(ctx, report.UserID, -1); err != nil {
		s.log.Warn().Err(err).Str("user_id", report.UserID).Msg("failed to decrement reports_count")
	}

	s.publisher.Publish(domain.TopicReports, domain.Event{
		Type:    domain.EventReportDeleted,
		Payload: domain.DeletedReport{ReportID: id},
	})
	s.log.Info().Str("report_id", id).Msg("report deleted")

	return nil
}

// CastVote records the caller's vote. At most one active vote per
// (user, report): the same type again is a no-op, the opposite type switches
// the vote and adjusts both counters atomically.
func (s *ReportService) CastVote(ctx context.Context, principal domain.Principal, reportID, voteType string) (*domain.Report, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	vt, err := domain.ParseVoteType(voteType)
	if err != nil {
		return nil, err
	}
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		return nil, err
	}

	previous, err := s.votes.Upsert(ctx, &domain.Vote{
		ReportID:  reportID,
		UserID:    principal.ID,
		Type:      vt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if previous != vt {
		var upDelta, downDelta int64
		switch vt {
		case domain.VoteUp:
			upDelta = 1
		case domain.VoteDown:
			downDelta = 1
		}
		switch previous {
		case domain.VoteUp:
			upDelta--
		case domain.VoteDown:
			downDelta--
		}
		if err := s.reports.IncVotes(ctx, reportID, upDelta, downDelta); err != nil {
			return nil, err
		}
	}

	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", reportID).Str("user_id", principal.ID).Str("vote_type", string(vt)).Msg("vote cast")
	return report, nil
}

// AddComment inserts the comment and bumps the report's comments_count.
func (s *ReportService) AddComment(ctx context.Context, principal domain.Principal, reportID, content string) (*domain.EnrichedComment, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ReportID:  reportID,
		UserID:    principal.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		return nil, err
	}

	id, err := s.comments.Insert(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	if err := s.reports.IncComments(ctx, reportID, 1); err != nil {
		s.log.Warn().Err(err).Str("report_id", reportID).Msg("failed to increment comments_count")
	}

	summary, err := s.users.FindSummary(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: comment %s references missing user %s", domain.ErrIntegrityFault, id, principal.ID)
	}

	s.log.Info().Str("report_id", reportID).Str("comment_id", id).Msg("comment added")
	return &domain.EnrichedComment{Comment: *comment, User: *summary}, nil
}

// ListComments returns one page of a report's comments with author summaries.
func (s *ReportService) ListComments(ctx context.Context, reportID string, page, perPage int) (*ports.ListCommentsResult, error) {
	page, perPage, err := normalizePage(page, perPage)
	if err != nil {
		return nil, err
	}
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		return nil, err
	}

	total, err := s.comments.CountByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByReport(ctx, reportID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	summaries, err := s.users.FindSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]*domain.EnrichedComment, 0, len(comments))
	for _, c := range comments {
		summary, ok := summaries[c.UserID]
		if !ok {
			return nil, fmt.Errorf("%w: comment %s references missing user %s", domain.ErrIntegrityFault, c.ID, c.UserID)
		}
		enriched = append(enriched, &domain.EnrichedComment{Comment: *c, User: summary})
	}

	return &ports.ListCommentsResult{
		Comments:   enriched,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// enrichOne joins a report with a fresh author snapshot. A missing owner is
// referential-integrity breakage and surfaces as ErrIntegrityFault.
func (s *ReportService) enrichOne(ctx context.Context, report *domain.Report) (*domain.EnrichedReport, error) {
	summary, err := s.users.FindSummary(ctx, report.UserID)
	if err != nil {
		s.log.Error().Str("report_id", report.ID).Str("user_id", report.UserID).Msg("report owner does not resolve")
		return nil, fmt.Errorf("%w: report %s references missing user %s", domain.ErrIntegrityFault, report.ID, report.UserID)
	}
	return &domain.EnrichedReport{Report: *report, User: *summary}, nil
}

// enrichMany batches the author lookup for a page of reports.
func (s *ReportService) enrichMany(ctx context.Context, reports []*domain.Report) ([]*domain.EnrichedReport, error) {
	ids := make([]string, 0, len(reports))
	seen := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ids = append(ids, r.UserID)
		}
	}

	summaries, err := s.users.FindSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]*domain.EnrichedReport, 0, len(reports))
	for _, r := range reports {
		summary, ok := summaries[r.UserID]
		if !ok {
			s.log.Error().Str("report_id", r.ID).Str("user_id", r.UserID).Msg("report owner does not resolve")
			return nil, fmt.Errorf("%w: report %s references missing user %s", domain.ErrIntegrityFault, r.ID, r.UserID)
		}
		enriched = append(enriched, &domain.EnrichedReport{Report: *r, User: summary})
	}
	return enriched, nil
}

// normalizePage validates pagination bounds: page >= 1, perPage in [1,100].
func normalizePage(page, perPage int) (int, int, error) {
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if perPage < 1 || perPage > maxPerPage {
		return 0, 0, fmt.Errorf("%w: per_page must be between 1 and %d", domain.ErrValidation, maxPerPage)
	}
	return page, perPage, nil
}

func totalPages(total int64, perPage int) int {
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// geoFilter enforces the all-or-none rule on the (lat, lng, radius) triple.
func geoFilter(lat, lng, radiusKm *float64) (*ports.GeoFilter, error) {
	provided := 0
	for _, v := range []*float64{lat, lng, radiusKm} {
		if v != nil {
			provided++
		}
	}
	switch provided {
	case 0:
		return nil, nil
	case 3:
		if *radiusKm <= 0 {
			return nil, fmt.Errorf("%w: radius must be > 0", domain.ErrValidation)
		}
		if *lng < -180 || *lng > 180 || *lat < -90 || *lat > 90 {
			return nil, fmt.Errorf("%w: center coordinates out of range", domain.ErrValidation)
		}
		return &ports.GeoFilter{Latitude: *lat, Longitude: *lng, RadiusKm: *radiusKm}, nil
	default:
		return nil, fmt.Errorf("%w: latitude, longitude and radius must be provided together", domain.ErrValidation)
	}
}

func lengthCheck(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return fmt.Errorf("%w: %s must be between %d and %d characters", domain.ErrValidation, field, min, max)
	}
	return nil
}
