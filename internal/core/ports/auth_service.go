package ports

import (
	"context"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// RegisterInput carries the new-account fields.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Phone    string
	Password string
}

// TokenPair is the issued credential set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService issues and verifies credentials. The rest of the core consumes
// it only through Verify, which turns a bearer token into a Principal.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Verify parses an access token, resolves the user, and rejects inactive
	// accounts. Failures are ErrUnauthorized.
	Verify(ctx context.Context, accessToken string) (domain.Principal, error)
}
