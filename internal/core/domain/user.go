package domain

import (
	"fmt"
	"time"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	fullNameMaxLen = 100
	phoneMaxLen    = 20
)

// User is the root of identity. Email and username are unique across the
// collection. ReportsCount is a derived counter equal to the number of live
// reports owned by the user, maintained by atomic increments.
type User struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Email          string    `json:"email" bson:"email"`
	Username       string    `json:"username" bson:"username"`
	FullName       string    `json:"full_name" bson:"full_name"`
	Phone          string    `json:"phone,omitempty" bson:"phone,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	HashedPassword string    `json:"-" bson:"hashed_password"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	IsVerified     bool      `json:"is_verified" bson:"is_verified"`
	ReportsCount   int64     `json:"reports_count" bson:"reports_count"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Validate checks registration-time field invariants.
func (u *User) Validate() error {
	if err := lengthBetween("username", u.Username, usernameMinLen, usernameMaxLen); err != nil {
		return err
	}
	if err := lengthBetween("full_name", u.FullName, 1, fullNameMaxLen); err != nil {
		return err
	}
	if u.Phone != "" && len(u.Phone) > phoneMaxLen {
		return fmt.Errorf("%w: phone must be at most %d characters", ErrValidation, phoneMaxLen)
	}
	return nil
}

// Summary returns the author snapshot used for report enrichment.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

// Principal is the authenticated actor attached to a request by the auth
// middleware. Credential issuance and verification live outside the core.
type Principal struct {
	ID       string
	IsActive bool
}
