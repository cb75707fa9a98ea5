package app

import (
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// ReviewFilter narrows the raw review set before aggregation. It is built
// by the HTTP boundary from already-validated values; rating bounds are on
// the normalized 0-5 scale.
type ReviewFilter struct {
	ListingID *int64     `json:"listingId,omitempty"`
	Channels  []string   `json:"channels,omitempty"`
	Status    *string    `json:"status,omitempty"`
	MinRating *float64   `json:"minRating,omitempty"`
	MaxRating *float64   `json:"maxRating,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Search    string     `json:"search,omitempty"`
}

// IsZero reports whether the filter would pass every review through.
func (f ReviewFilter) IsZero() bool {
	return f.ListingID == nil && len(f.Channels) == 0 && f.Status == nil &&
		f.MinRating == nil && f.MaxRating == nil &&
		f.StartDate == nil && f.EndDate == nil && f.Search == ""
}

// Apply returns the subset of reviews matching every set criterion. The
// input slice is never mutated.
func (f ReviewFilter) Apply(reviews []domain.Review) []domain.Review {
	if f.IsZero() {
		out := make([]domain.Review, len(reviews))
		copy(out, reviews)
		return out
	}
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f ReviewFilter) matches(r domain.Review) bool {
	if f.ListingID != nil && r.ListingID != *f.ListingID {
		return false
	}
	if len(f.Channels) > 0 {
		ch := r.Channel
		if ch == "" {
			ch = domain.DefaultChannel
		}
		ch = strings.ToLower(ch)
		found := false
		for _, want := range f.Channels {
			if strings.ToLower(want) == ch {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && !strings.EqualFold(r.Status, *f.Status) {
		return false
	}
	if f.StartDate != nil && r.SubmittedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.SubmittedAt.After(*f.EndDate) {
		return false
	}
	if f.MinRating != nil || f.MaxRating != nil {
		if r.Rating == nil {
			return false
		}
		normalized := *r.Rating / 2
		if f.MinRating != nil && normalized < *f.MinRating {
			return false
		}
		if f.MaxRating != nil && normalized > *f.MaxRating {
			return false
		}
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		haystack := strings.ToLower(r.PublicReview + " " + r.GuestName + " " + r.ListingName)
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
