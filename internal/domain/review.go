package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Review directions as reported by the property-management source.
const (
	TypeHostToGuest = "host-to-guest"
	TypeGuestToHost = "guest-to-host"
)

// Review moderation states.
const (
	StatusPublished = "published"
	StatusPending   = "pending"
	StatusArchived  = "archived"
)

// DefaultChannel applies when a review carries no booking channel.
const DefaultChannel = "Direct"

// GoogleChannel labels reviews lifted from the Places source.
const GoogleChannel = "Google"

// CategoryRating is one (category, sub-rating) pair on the source's
// native 0-10 scale. A nil rating means the guest skipped that category.
type CategoryRating struct {
	Category string   `json:"category"`
	Rating   *float64 `json:"rating"`
}

// Review is a raw record from the property-management source. Rating is on
// the native 0-10 scale; nil means the guest left no score.
type Review struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	Status          string           `json:"status"`
	Rating          *float64         `json:"rating"`
	PublicReview    string           `json:"publicReview"`
	PrivateFeedback *string          `json:"privateFeedback,omitempty"`
	ReviewCategory  []CategoryRating `json:"reviewCategory"`
	SubmittedAt     time.Time        `json:"submittedAt"`
	GuestName       string           `json:"guestName"`
	ListingName     string           `json:"listingName"`
	ListingID       int64            `json:"listingId"`
	Channel         string           `json:"channel,omitempty"`
}

// NormalizedReview is a Review rescaled to the canonical 0-5 range.
// NormalizedRating is nil iff the raw rating was nil; Channel is always set.
type NormalizedReview struct {
	Review
	NormalizedRating *float64  `json:"normalizedRating"`
	StayDate         time.Time `json:"stayDate"`
}

// GoogleReview is one entry from the Places details payload. Rating is on
// the native 0-5 scale.
type GoogleReview struct {
	ID                      string     `json:"id"`
	AuthorName              string     `json:"authorName"`
	Rating                  float64    `json:"rating"`
	Text                    string     `json:"text"`
	RelativeTimeDescription string     `json:"relativeTimeDescription,omitempty"`
	ProfilePhotoURL         string     `json:"profilePhotoUrl,omitempty"`
	PublishedAt             *time.Time `json:"publishedAt,omitempty"`
	Language                string     `json:"language,omitempty"`
}

// GooglePlaceMetadata describes the place a Google payload was fetched for.
type GooglePlaceMetadata struct {
	PlaceID          string    `json:"placeId"`
	PlaceName        string    `json:"placeName"`
	UserRatingsTotal int       `json:"userRatingsTotal"`
	AverageRating    *float64  `json:"averageRating"`
	LastSynced       time.Time `json:"lastSynced"`
	ListingID        *int64    `json:"listingId"`
}

// GoogleReviewPayload is the lifted Places response for one place.
type GoogleReviewPayload struct {
	Reviews  []GoogleReview      `json:"reviews"`
	Metadata GooglePlaceMetadata `json:"metadata"`
}

// StoredGoogleReview is an imported Google review held in moderation state.
type StoredGoogleReview struct {
	GoogleReview
	ListingID  int64     `json:"listingId"`
	PlaceID    string    `json:"placeId"`
	Published  bool      `json:"published"`
	ImportedAt time.Time `json:"importedAt"`
}

// ReviewID carries either a numeric primary-source id or a string Google
// review id and marshals to the matching JSON shape, so the public
// projection preserves each source's native id format.
type ReviewID struct {
	Num int64
	Str string
}

func NumericID(n int64) ReviewID { return ReviewID{Num: n} }
func StringID(s string) ReviewID { return ReviewID{Str: s} }

func (id ReviewID) MarshalJSON() ([]byte, error) {
	if id.Str != "" {
		return json.Marshal(id.Str)
	}
	return strconv.AppendInt(nil, id.Num, 10), nil
}

func (id *ReviewID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &id.Str)
	}
	return json.Unmarshal(b, &id.Num)
}

// PublicReview is one entry of the public projection: a selected
// primary-source review or a published imported Google review, both already
// on the normalized scale.
type PublicReview struct {
	ID               ReviewID         `json:"id"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	Rating           *float64         `json:"rating"`
	PublicReview     string           `json:"publicReview"`
	ReviewCategory   []CategoryRating `json:"reviewCategory"`
	SubmittedAt      time.Time        `json:"submittedAt"`
	StayDate         time.Time        `json:"stayDate"`
	GuestName        string           `json:"guestName"`
	ListingName      string           `json:"listingName"`
	ListingID        int64            `json:"listingId"`
	Channel          string           `json:"channel"`
	NormalizedRating *float64         `json:"normalizedRating"`
}
