package domain

import "errors"

// Sentinel errors shared across the core. The API layer maps each to a
// deterministic HTTP status; services wrap them with context via fmt.Errorf
// and %w so errors.Is still matches.
var (
	// ErrValidation marks malformed or out-of-range input, always rejected
	// before any store access.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized means the request carries no usable principal.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden means the principal is valid but lacks rights, e.g. a
	// non-owner attempting to update or delete a report.
	ErrForbidden = errors.New("access forbidden")

	ErrReportNotFound  = errors.New("report not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Uniqueness conflicts on user registration.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials covers bad login input and failed password checks.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIntegrityFault signals referential-integrity breakage: a live report
	// whose owner no longer resolves. Surfaced loudly, never swallowed.
	ErrIntegrityFault = errors.New("data integrity fault")
)
