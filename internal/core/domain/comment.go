package domain

import "time"

const (
	commentMinLen = 1
	commentMaxLen = 1000
)

// Comment is attached to a report and cascades away when the report is
// deleted. Each insert bumps the report's comments_count by one.
type Comment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ReportID  string    `json:"report_id" bson:"report_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Validate checks the content bounds.
func (c *Comment) Validate() error {
	return lengthBetween("content", c.Content, commentMinLen, commentMaxLen)
}

// EnrichedComment is a comment joined with its author summary.
type EnrichedComment struct {
	Comment
	User UserSummary `json:"user"`
}
