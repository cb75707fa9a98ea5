package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex_reviews/internal/domain"
)

func TestModerationService_SaveSelectionDedupes(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewModerationService(repo)

	got, err := svc.SaveSelection(context.Background(), []int64{7453, 7455, 7453, 7460, 7455})
	require.NoError(t, err)
	assert.Equal(t, []int64{7453, 7455, 7460}, got)
	assert.Equal(t, []int64{7453, 7455, 7460}, repo.selection)

	// replacing with an empty set clears it
	got, err = svc.SaveSelection(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, repo.selection)
}

func TestModerationService_SelectionNeverNil(t *testing.T) {
	svc := NewModerationService(&fakeRepo{})
	got, err := svc.Selection(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestModerationService_ImportGoogleReviews(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewModerationService(repo)
	importedAt := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return importedAt }

	batch := []domain.GoogleReview{
		{ID: "g-1", AuthorName: "Maria", Rating: 5, Text: "spotless"},
		{ID: "g-2", AuthorName: "Tom", Rating: 3, Text: "ok"},
	}
	got, err := svc.ImportGoogleReviews(context.Background(), 253093, "place-x", batch)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, g := range got {
		assert.False(t, g.Published) // imports always start unpublished
		assert.Equal(t, importedAt, g.ImportedAt)
		assert.Equal(t, "place-x", g.PlaceID)
	}

	// re-importing the same batch is a no-op merge
	got, err = svc.ImportGoogleReviews(context.Background(), 253093, "place-x", batch[:1])
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ImportGoogleReviews(context.Background(), 253093, "place-x", nil)
	assert.Error(t, err)
}

func TestModerationService_SetPublished(t *testing.T) {
	repo := &fakeRepo{google: []domain.StoredGoogleReview{storedGoogle("g-1", 253093, false)}}
	svc := NewModerationService(repo)

	got, err := svc.SetPublished(context.Background(), 253093, "g-1", true)
	require.NoError(t, err)
	assert.True(t, got.Published)

	_, err = svc.SetPublished(context.Background(), 253093, "missing", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModerationService_PublicReviews(t *testing.T) {
	pending := review(2, 253093, pf(6), day(2024, time.January, 2), "")
	pending.Status = domain.StatusPending

	repo := &fakeRepo{
		reviews: []domain.Review{
			review(1, 253093, pf(9), day(2024, time.January, 1), "Airbnb"),
			pending,
			review(3, 253093, pf(8), day(2024, time.January, 3), ""), // not selected
			review(4, 112233, pf(7), day(2024, time.January, 4), ""),
		},
		selection: []int64{1, 2, 4},
		google: []domain.StoredGoogleReview{
			storedGoogle("g-1", 253093, true),
			storedGoogle("g-2", 253093, false),
		},
	}
	svc := NewModerationService(repo)

	listing := int64(253093)
	got, err := svc.PublicReviews(context.Background(), &listing)
	require.NoError(t, err)

	// selected+published primary review, then the published google import;
	// the pending, unselected and other-listing reviews are all excluded
	require.Len(t, got, 2)
	assert.Equal(t, domain.NumericID(1), got[0].ID)
	require.NotNil(t, got[0].NormalizedRating)
	assert.Equal(t, 4.5, *got[0].NormalizedRating)

	assert.Equal(t, domain.StringID("g-1"), got[1].ID)
	assert.Equal(t, domain.GoogleChannel, got[1].Channel)
	assert.Equal(t, "Listing 253093", got[1].ListingName)
}

func TestModerationService_PublicReviewsAllListings(t *testing.T) {
	repo := &fakeRepo{
		reviews:   []domain.Review{review(1, 253093, pf(9), day(2024, time.January, 1), "")},
		selection: []int64{1},
		google:    []domain.StoredGoogleReview{storedGoogle("g-1", 112233, true)},
	}
	svc := NewModerationService(repo)

	got, err := svc.PublicReviews(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSyncService_StoresMappedReviews(t *testing.T) {
	records := make([]map[string]any, 0, 2)
	for i, listing := range []int64{253093, 112233} {
		records = append(records, map[string]any{
			"id":          float64(100 + i),
			"listingId":   float64(listing),
			"listingName": fmt.Sprintf("Listing %d", listing),
			"rating":      float64(8),
			"submittedAt": "2024-01-15 10:00:00",
		})
	}
	repo := &fakeRepo{}
	cache := newMemCache()
	require.NoError(t, cache.Set(context.Background(), dashboardCacheKey(ReviewFilter{}, 1, 5), "stale", 60))

	svc := NewSyncService(&fakeHostaway{records: records}, repo, cache)
	n, err := svc.SyncHostaway(context.Background(), "acct", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, repo.reviews, 2)

	// the default dashboard cache entries are evicted after a sync
	_, ok := cache.data[dashboardCacheKey(ReviewFilter{}, 1, 5)]
	assert.False(t, ok)
}

func TestSyncService_RecordsMisses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("hostaway: %w", domain.ErrNotFound), 404},
		{"unauthorized", fmt.Errorf("hostaway: unexpected status 401"), 403},
		{"forbidden", fmt.Errorf("hostaway: forbidden"), 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewSyncService(&fakeHostaway{err: tc.err}, repo, nil)

			n, err := svc.SyncHostaway(context.Background(), "acct", 100)
			require.NoError(t, err)
			assert.Equal(t, 0, n)
			assert.Equal(t, []int{tc.wantStatus}, repo.misses)
		})
	}
}

func TestSyncService_UnexpectedErrorBubbles(t *testing.T) {
	svc := NewSyncService(&fakeHostaway{err: errUpstream}, &fakeRepo{}, nil)
	_, err := svc.SyncHostaway(context.Background(), "acct", 100)
	assert.ErrorIs(t, err, errUpstream)
}

func TestSyncService_BadRecordFailsLoudly(t *testing.T) {
	hostaway := &fakeHostaway{records: []map[string]any{
		{"id": float64(1), "listingId": float64(2), "submittedAt": "not a date"},
	}}
	repo := &fakeRepo{}
	svc := NewSyncService(hostaway, repo, nil)

	_, err := svc.SyncHostaway(context.Background(), "acct", 100)
	require.Error(t, err)
	assert.Empty(t, repo.reviews)
}

func TestSyncService_SeedReviews(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewSyncService(nil, repo, nil)

	n, err := svc.SeedReviews(context.Background(), dashboardFixture())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Len(t, repo.reviews, 7)

	n, err = svc.SeedReviews(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
