package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validReport() *Report {
	return &Report{
		UserID:      "user-1",
		Title:       "Broken streetlight on Elm",
		Description: "The light at the corner has been out for a week.",
		Category:    CategoryStreetLight,
		Location:    Location{Type: "Point", Coordinates: []float64{-99.1332, 19.4326}},
		Address:     "Elm St & 5th Ave",
		Priority:    PriorityMedium,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestReportValidate_OK(t *testing.T) {
	if err := validReport().Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestReportValidate_FieldBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Report)
	}{
		{"title too short", func(r *Report) { r.Title = "abcd" }},
		{"title too long", func(r *Report) { r.Title = strings.Repeat("x", 201) }},
		{"description too short", func(r *Report) { r.Description = "too short" }},
		{"description too long", func(r *Report) { r.Description = strings.Repeat("x", 2001) }},
		{"address too short", func(r *Report) { r.Address = "a" }},
		{"unknown category", func(r *Report) { r.Category = "sinkhole" }},
		{"unknown priority", func(r *Report) { r.Priority = "urgent" }},
		{"unknown status", func(r *Report) { r.Status = "archived" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReport()
			tc.mutate(r)
			if err := r.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestNewLocation(t *testing.T) {
	cases := []struct {
		name     string
		lng, lat float64
		wantErr  bool
	}{
		{"mexico city", -99.1332, 19.4326, false},
		{"extreme but valid", 180, -90, false},
		{"longitude too big", 180.01, 0, true},
		{"longitude too small", -181, 0, true},
		{"latitude too big", 0, 90.5, true},
		{"latitude too small", 0, -91, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := NewLocation(tc.lng, tc.lat)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("NewLocation() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLocation() unexpected error: %v", err)
			}
			if loc.Longitude() != tc.lng || loc.Latitude() != tc.lat {
				t.Fatalf("coordinates = [%v, %v], want [%v, %v]",
					loc.Longitude(), loc.Latitude(), tc.lng, tc.lat)
			}
		})
	}
}

func TestLocationValidate_Shape(t *testing.T) {
	bad := []Location{
		{Type: "Polygon", Coordinates: []float64{0, 0}},
		{Type: "Point", Coordinates: []float64{0}},
		{Type: "Point", Coordinates: []float64{0, 0, 0}},
		{Type: "Point"},
	}
	for _, loc := range bad {
		if err := loc.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%+v) error = %v, want ErrValidation", loc, err)
		}
	}
}

func TestParseVoteType(t *testing.T) {
	if vt, err := ParseVoteType("upvote"); err != nil || vt != VoteUp {
		t.Fatalf("ParseVoteType(upvote) = (%q, %v)", vt, err)
	}
	if vt, err := ParseVoteType("downvote"); err != nil || vt != VoteDown {
		t.Fatalf("ParseVoteType(downvote) = (%q, %v)", vt, err)
	}
	for _, raw := range []string{"", "up", "UPVOTE", "like"} {
		if _, err := ParseVoteType(raw); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseVoteType(%q) error = %v, want ErrValidation", raw, err)
		}
	}
}

func TestCommentValidate(t *testing.T) {
	c := &Comment{Content: "seen it too"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	c.Content = ""
	if err := c.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty content error = %v, want ErrValidation", err)
	}
	c.Content = strings.Repeat("x", 1001)
	if err := c.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversize content error = %v, want ErrValidation", err)
	}
}

func TestUserSummary(t *testing.T) {
	u := &User{
		ID:             "user-1",
		Email:          "ana@example.com",
		Username:       "ana",
		FullName:       "Ana Torres",
		ProfilePicture: "profiles/abc.png",
		HashedPassword: "secret-hash",
	}
	s := u.Summary()
	if s.ID != u.ID || s.Username != u.Username || s.FullName != u.FullName || s.ProfilePicture != u.ProfilePicture {
		t.Fatalf("Summary() = %+v", s)
	}
}
