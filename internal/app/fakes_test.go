package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flex_reviews/internal/domain"
)

// fakeRepo is an in-memory ReviewRepository for service tests.
type fakeRepo struct {
	reviews   []domain.Review
	selection []int64
	google    []domain.StoredGoogleReview
	misses    []int

	listErr error
}

func (f *fakeRepo) UpsertReviews(_ context.Context, rs []domain.Review) error {
	byID := make(map[int64]int, len(f.reviews))
	for i, r := range f.reviews {
		byID[r.ID] = i
	}
	for _, r := range rs {
		if i, ok := byID[r.ID]; ok {
			f.reviews[i] = r
		} else {
			f.reviews = append(f.reviews, r)
		}
	}
	return nil
}

func (f *fakeRepo) ReplaceSelection(_ context.Context, ids []int64) error {
	f.selection = append([]int64(nil), ids...)
	return nil
}

func (f *fakeRepo) ImportGoogleReviews(_ context.Context, rs []domain.StoredGoogleReview) error {
	existing := make(map[string]struct{}, len(f.google))
	for _, g := range f.google {
		existing[g.PlaceID+"|"+g.ID] = struct{}{}
	}
	for _, g := range rs {
		if _, ok := existing[g.PlaceID+"|"+g.ID]; ok {
			continue
		}
		f.google = append(f.google, g)
	}
	return nil
}

func (f *fakeRepo) SetGooglePublished(_ context.Context, listingID int64, reviewID string, published bool) (domain.StoredGoogleReview, error) {
	for i, g := range f.google {
		if g.ListingID == listingID && g.ID == reviewID {
			f.google[i].Published = published
			return f.google[i], nil
		}
	}
	return domain.StoredGoogleReview{}, domain.ErrNotFound
}

func (f *fakeRepo) LogMiss(_ context.Context, _ int64, status int, _ string) error {
	f.misses = append(f.misses, status)
	return nil
}

func (f *fakeRepo) ListReviews(_ context.Context) ([]domain.Review, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Review(nil), f.reviews...), nil
}

func (f *fakeRepo) Selection(_ context.Context) ([]int64, error) {
	return append([]int64(nil), f.selection...), nil
}

func (f *fakeRepo) ListGoogleReviews(_ context.Context, listingID *int64) ([]domain.StoredGoogleReview, error) {
	out := make([]domain.StoredGoogleReview, 0, len(f.google))
	for _, g := range f.google {
		if listingID != nil && g.ListingID != *listingID {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// memCache stores marshalled values in a map, mirroring the Redis adapter's
// JSON round-trip so type fidelity bugs surface here too.
type memCache struct {
	data map[string][]byte
	sets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.sets++
	c.data[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type fakeHostaway struct {
	records []map[string]any
	err     error
	calls   int
}

func (f *fakeHostaway) ListReviews(_ context.Context, _ string, _ int) ([]map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakePlaces struct {
	details map[string]any
	err     error
	calls   int
}

func (f *fakePlaces) PlaceDetails(_ context.Context, _ string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

var errUpstream = errors.New("upstream exploded")

func storedGoogle(id string, listing int64, published bool) domain.StoredGoogleReview {
	return domain.StoredGoogleReview{
		GoogleReview: domain.GoogleReview{ID: id, AuthorName: "Guest", Rating: 4, Text: "nice"},
		ListingID:    listing,
		PlaceID:      "place-x",
		Published:    published,
		ImportedAt:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}
