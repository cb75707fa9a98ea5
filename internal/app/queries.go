package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"flex_reviews/internal/domain"
)

type DashboardService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewDashboardService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{repo: r, cache: c, cacheTTL: ttl}
}

// Dashboard loads the raw review set, applies the pre-aggregation filter and
// runs the full aggregation. Built payloads are cached per (filter, page,
// pageSize); the aggregation core itself never caches.
func (s *DashboardService) Dashboard(ctx context.Context, f ReviewFilter, page, pageSize int) (domain.DashboardPayload, error) {
	key := dashboardCacheKey(f, page, pageSize)
	var out domain.DashboardPayload
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	raw, err := s.repo.ListReviews(ctx)
	if err != nil {
		return domain.DashboardPayload{}, err
	}
	payload, err := BuildDashboard(f.Apply(raw), page, pageSize)
	if err != nil {
		return domain.DashboardPayload{}, err
	}

	// size guard: odd filters over a large portfolio can produce payloads not
	// worth a cache slot
	if b, _ := json.Marshal(payload); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, payload, int(s.cacheTTL.Seconds()))
	}
	return payload, nil
}

func dashboardCacheKey(f ReviewFilter, page, pageSize int) string {
	fb, _ := json.Marshal(f)
	sum := sha1.Sum(fb)
	return fmt.Sprintf("dashboard:%s:%d:%d", hex.EncodeToString(sum[:8]), page, pageSize)
}

// GoogleReviewsService reads place reviews through the Places client,
// holding results in the shared cache so repeated dashboard loads do not
// re-hit the upstream quota.
type GoogleReviewsService struct {
	places   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewGoogleReviewsService(p domain.PlacesClient, c domain.Cache, ttl time.Duration) *GoogleReviewsService {
	return &GoogleReviewsService{places: p, cache: c, cacheTTL: ttl, now: time.Now}
}

func (s *GoogleReviewsService) ReviewsForPlace(ctx context.Context, placeID string, listingID *int64) (domain.GoogleReviewPayload, error) {
	key := "google:" + placeID
	var out domain.GoogleReviewPayload
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	details, err := s.places.PlaceDetails(ctx, placeID)
	if err != nil {
		return domain.GoogleReviewPayload{}, err
	}

	rawReviews, _ := details["reviews"].([]any)
	reviews := MapGoogleReviews(rawReviews)

	meta := domain.GooglePlaceMetadata{
		PlaceID:          placeID,
		PlaceName:        "Google Places location",
		UserRatingsTotal: len(reviews),
		AverageRating:    getFloatFlexible(details, "rating"),
		LastSynced:       s.now().UTC(),
		ListingID:        listingID,
	}
	if name := lookupStr(details, "name"); name != "" {
		meta.PlaceName = name
	}
	if total := firstInt64Flexible(details, "user_ratings_total"); total != nil {
		meta.UserRatingsTotal = int(*total)
	}

	payload := domain.GoogleReviewPayload{Reviews: reviews, Metadata: meta}
	_ = s.cache.Set(ctx, key, payload, int(s.cacheTTL.Seconds()))
	return payload, nil
}
