package domain

import (
	"fmt"
	"time"
)

// VoteType distinguishes upvotes from downvotes.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// ParseVoteType validates and converts a raw vote type string.
func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteUp, VoteDown:
		return VoteType(s), nil
	}
	return "", fmt.Errorf("%w: vote_type must be %q or %q", ErrValidation, VoteUp, VoteDown)
}

// Vote records a single user's active vote on a report. A unique index on
// (report_id, user_id) enforces at most one active vote per pair: re-casting
// the same type is a no-op, casting the opposite type switches the vote and
// adjusts both counters.
type Vote struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ReportID  string    `json:"report_id" bson:"report_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Type      VoteType  `json:"vote_type" bson:"vote_type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
