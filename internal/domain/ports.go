package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

type ReviewRepository interface {
	// Write paths
	UpsertReviews(ctx context.Context, rs []Review) error
	ReplaceSelection(ctx context.Context, ids []int64) error
	ImportGoogleReviews(ctx context.Context, rs []StoredGoogleReview) error
	SetGooglePublished(ctx context.Context, listingID int64, reviewID string, published bool) (StoredGoogleReview, error)
	LogMiss(ctx context.Context, listingID int64, status int, reason string) error

	// Read paths
	ListReviews(ctx context.Context) ([]Review, error)
	Selection(ctx context.Context) ([]int64, error)
	ListGoogleReviews(ctx context.Context, listingID *int64) ([]StoredGoogleReview, error)
}

type HostawayClient interface {
	ListReviews(ctx context.Context, accountID string, limit int) ([]map[string]any, error)
}

type PlacesClient interface {
	PlaceDetails(ctx context.Context, placeID string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
