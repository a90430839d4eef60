package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

func newAuthFixture(users ...*domain.User) (*AuthService, *stubUserRepo) {
	repo := newStubUserRepo(users...)
	svc := NewAuthService(repo, "test-secret", time.Minute, time.Hour, zerolog.Nop())
	return svc, repo
}

func hashedUser(id, email, username, password string, active bool) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:             id,
		Email:          email,
		Username:       username,
		FullName:       "Test User",
		HashedPassword: string(hash),
		IsActive:       active,
	}
}

func validRegister() ports.RegisterInput {
	return ports.RegisterInput{
		Email:    "Ana@Example.com",
		Username: "ana",
		FullName: "Ana Torres",
		Password: "hunter2hunter2",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if !user.IsActive || user.IsVerified {
		t.Errorf("flags: active=%v verified=%v, want active unverified", user.IsActive, user.IsVerified)
	}
	if user.HashedPassword == "hunter2hunter2" || user.HashedPassword == "" {
		t.Error("password stored without hashing")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("hunter2hunter2")) != nil {
		t.Error("hash does not verify against the original password")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthFixture()

	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"missing email", func(in *ports.RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *ports.RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *ports.RegisterInput) { in.Password = "short" }},
		{"short username", func(in *ports.RegisterInput) { in.Username = "ab" }},
		{"empty full name", func(in *ports.RegisterInput) { in.FullName = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegister()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_Conflicts(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	in := validRegister()
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	in.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("duplicate username error = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	pair, err := svc.Login(context.Background(), "Ana@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("pair = %+v", pair)
	}

	principal, err := svc.Verify(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if principal.ID != "user-1" || !principal.IsActive {
		t.Fatalf("principal = %+v", principal)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	if _, err := svc.Login(context.Background(), "ghost@example.com", "whatever123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", false))

	if _, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	pair, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	fresh, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if _, err := svc.Verify(context.Background(), fresh.AccessToken); err != nil {
		t.Fatalf("Verify(refreshed access) error: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	pair, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Refresh(access token) error = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_RejectsRefreshToken(t *testing.T) {
	svc, _ := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	pair, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if _, err := svc.Verify(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify(refresh token) error = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc, _ := newAuthFixture()

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(context.Background(), raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("Verify(%q) error = %v, want ErrUnauthorized", raw, err)
		}
	}
}

func TestVerify_DeactivatedAfterIssue(t *testing.T) {
	svc, repo := newAuthFixture(hashedUser("user-1", "ana@example.com", "ana", "hunter2hunter2", true))

	pair, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	repo.mu.Lock()
	repo.users["user-1"].IsActive = false
	repo.mu.Unlock()

	if _, err := svc.Verify(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify() error = %v, want ErrUnauthorized for deactivated account", err)
	}
}
