package ports

import (
	"context"
	"time"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// UserFieldUpdate is the partial profile edit. Nil means "leave untouched".
type UserFieldUpdate struct {
	FullName       *string
	Phone          *string
	ProfilePicture *string
	UpdatedAt      time.Time
}

// UserRepository is the entity store for users. Email and username uniqueness
// is enforced by the store; violations surface as ErrEmailTaken or
// ErrUsernameTaken.
type UserRepository interface {
	Insert(ctx context.Context, u *domain.User) (string, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateFields(ctx context.Context, id string, update UserFieldUpdate) error
	// IncReportsCount adjusts the derived per-user report total. Maintained as
	// a sequential best-effort write relative to the report mutation itself.
	IncReportsCount(ctx context.Context, id string, delta int64) error
	// FindSummary is the userLookup capability backing single-report
	// enrichment: a fresh {id, username, full_name, profile_picture} snapshot.
	FindSummary(ctx context.Context, id string) (*domain.UserSummary, error)
	// FindSummariesByIDs batches the lookup for a page of reports.
	FindSummariesByIDs(ctx context.Context, ids []string) (map[string]domain.UserSummary, error)
}
