package domain

import (
	"fmt"
	"time"
)

// ReportCategory classifies the kind of infrastructure issue.
type ReportCategory string

const (
	CategoryPothole         ReportCategory = "pothole"
	CategoryStreetLight     ReportCategory = "street_light"
	CategoryWaterIssue      ReportCategory = "water_issue"
	CategoryWasteManagement ReportCategory = "waste_management"
	CategoryRoadDamage      ReportCategory = "road_damage"
	CategoryTrafficSignal   ReportCategory = "traffic_signal"
	CategoryDrainage        ReportCategory = "drainage"
	CategoryOther           ReportCategory = "other"
)

var reportCategories = map[ReportCategory]struct{}{
	CategoryPothole:         {},
	CategoryStreetLight:     {},
	CategoryWaterIssue:      {},
	CategoryWasteManagement: {},
	CategoryRoadDamage:      {},
	CategoryTrafficSignal:   {},
	CategoryDrainage:        {},
	CategoryOther:           {},
}

// IsValid reports whether c is one of the known categories.
func (c ReportCategory) IsValid() bool {
	_, ok := reportCategories[c]
	return ok
}

// ReportStatus is the lifecycle state of a report.
//
// The lifecycle is deliberately permissive: the owner may move a report to any
// valid status at any time. resolved_at is stamped on the first transition
// into resolved and is never cleared by later transitions.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in_progress"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ReportPriority is the urgency assigned to a report.
type ReportPriority string

const (
	PriorityLow      ReportPriority = "low"
	PriorityMedium   ReportPriority = "medium"
	PriorityHigh     ReportPriority = "high"
	PriorityCritical ReportPriority = "critical"
)

// IsValid reports whether p is one of the known priorities.
func (p ReportPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Location is a GeoJSON point. Coordinates are [longitude, latitude],
// GeoJSON order, which is also what the 2dsphere index expects.
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewLocation builds a validated GeoJSON point from a longitude/latitude pair.
func NewLocation(longitude, latitude float64) (Location, error) {
	loc := Location{Type: "Point", Coordinates: []float64{longitude, latitude}}
	return loc, loc.Validate()
}

// Validate checks the GeoJSON shape and coordinate ranges.
func (l Location) Validate() error {
	if l.Type != "Point" {
		return fmt.Errorf("%w: location type must be \"Point\"", ErrValidation)
	}
	if len(l.Coordinates) != 2 {
		return fmt.Errorf("%w: coordinates must contain exactly [longitude, latitude]", ErrValidation)
	}
	lng, lat := l.Coordinates[0], l.Coordinates[1]
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	return nil
}

// Longitude returns the first coordinate. Only meaningful after Validate.
func (l Location) Longitude() float64 { return l.Coordinates[0] }

// Latitude returns the second coordinate. Only meaningful after Validate.
func (l Location) Latitude() float64 { return l.Coordinates[1] }

// Report is the core aggregate: a citizen-filed infrastructure issue.
// Counters (upvotes, downvotes, comments_count) are derived values maintained
// with atomic single-field increments, never recomputed on read.
type Report struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	UserID        string         `json:"user_id" bson:"user_id"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description" bson:"description"`
	Category      ReportCategory `json:"category" bson:"category"`
	Location      Location       `json:"location" bson:"location"`
	Address       string         `json:"address" bson:"address"`
	Priority      ReportPriority `json:"priority" bson:"priority"`
	Status        ReportStatus   `json:"status" bson:"status"`
	Images        []string       `json:"images" bson:"images"`
	Upvotes       int64          `json:"upvotes" bson:"upvotes"`
	Downvotes     int64          `json:"downvotes" bson:"downvotes"`
	CommentsCount int64          `json:"comments_count" bson:"comments_count"`
	AssignedTo    string         `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

const (
	titleMinLen       = 5
	titleMaxLen       = 200
	descriptionMinLen = 10
	descriptionMaxLen = 2000
	addressMinLen     = 5
	addressMaxLen     = 500
)

// Validate checks every field invariant that must hold at creation time.
// Violations are rejected before any store access.
func (r *Report) Validate() error {
	if err := lengthBetween("title", r.Title, titleMinLen, titleMaxLen); err != nil {
		return err
	}
	if err := lengthBetween("description", r.Description, descriptionMinLen, descriptionMaxLen); err != nil {
		return err
	}
	if err := lengthBetween("address", r.Address, addressMinLen, addressMaxLen); err != nil {
		return err
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, r.Category)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, r.Priority)
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, r.Status)
	}
	return r.Location.Validate()
}

func lengthBetween(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return fmt.Errorf("%w: %s must be between %d and %d characters", ErrValidation, field, min, max)
	}
	return nil
}

// UserSummary is the denormalized author snapshot joined onto each report at
// query time. It is always freshly looked up, never stored on the report.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// EnrichedReport is a report together with its author summary.
type EnrichedReport struct {
	Report
	User UserSummary `json:"user"`
}
