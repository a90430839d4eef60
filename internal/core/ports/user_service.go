package ports

import (
	"context"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// UpdateProfileInput is the caller's partial profile edit.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// UserService covers profile reads and mutations for the authenticated user
// plus the public profile lookup.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, input UpdateProfileInput) (*domain.User, error)
	// SetProfilePicture stores the upload, points the profile at it, and
	// removes the previous picture file when one exists.
	SetProfilePicture(ctx context.Context, principal domain.Principal, upload ImageUpload) (string, error)
	DeleteProfilePicture(ctx context.Context, principal domain.Principal) error
}
