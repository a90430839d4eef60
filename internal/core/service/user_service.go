package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// UserService covers profile reads and edits, including the profile picture
// stored through the file-storage capability.
type UserService struct {
	users ports.UserRepository
	files ports.FileStorage
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, files ports.FileStorage, log zerolog.Logger) *UserService {
	return &UserService{users: users, files: files, log: log}
}

// GetProfile returns a user by id; used both for /users/me and the public
// profile lookup.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the caller's partial edit to their own profile.
func (s *UserService) UpdateProfile(ctx context.Context, principal domain.Principal, input ports.UpdateProfileInput) (*domain.User, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	update := ports.UserFieldUpdate{UpdatedAt: time.Now().UTC()}
	if input.FullName != nil {
		if err := lengthCheck("full_name", *input.FullName, 1, 100); err != nil {
			return nil, err
		}
		update.FullName = input.FullName
	}
	if input.Phone != nil {
		if len(*input.Phone) > 20 {
			return nil, fmt.Errorf("%w: phone must be at most 20 characters", domain.ErrValidation)
		}
		update.Phone = input.Phone
	}

	if err := s.users.UpdateFields(ctx, principal.ID, update); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, principal.ID)
}

// SetProfilePicture stores the upload, points the profile at the new
// reference, and removes the previous file. Old-file cleanup is best-effort.
func (s *UserService) SetProfilePicture(ctx context.Context, principal domain.Principal, upload ports.ImageUpload) (string, error) {
	if err := requirePrincipal(principal); err != nil {
		return "", err
	}
	if err := s.files.Validate(upload.Filename, upload.Size); err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return "", err
	}

	ref, err := s.files.Store(ctx, upload.Filename, upload.Content, "profiles")
	if err != nil {
		return "", err
	}

	update := ports.UserFieldUpdate{ProfilePicture: &ref, UpdatedAt: time.Now().UTC()}
	if err := s.users.UpdateFields(ctx, principal.ID, update); err != nil {
		return "", err
	}

	if user.ProfilePicture != "" {
		if _, err := s.files.Delete(user.ProfilePicture); err != nil {
			s.log.Warn().Err(err).Str("user_id", principal.ID).Msg("failed to delete previous profile picture")
		}
	}

	return ref, nil
}

// DeleteProfilePicture clears the reference and removes the file.
func (s *UserService) DeleteProfilePicture(ctx context.Context, principal domain.Principal) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return err
	}
	if user.ProfilePicture == "" {
		return nil
	}

	empty := ""
	update := ports.UserFieldUpdate{ProfilePicture: &empty, UpdatedAt: time.Now().UTC()}
	if err := s.users.UpdateFields(ctx, principal.ID, update); err != nil {
		return err
	}

	if _, err := s.files.Delete(user.ProfilePicture); err != nil {
		s.log.Warn().Err(err).Str("user_id", principal.ID).Msg("failed to delete profile picture file")
	}
	return nil
}
