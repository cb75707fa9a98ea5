package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// ModerationService owns which reviews appear publicly: the selected-id set
// for primary-source reviews and the publish flag on imported Google
// reviews.
type ModerationService struct {
	repo domain.ReviewRepository
	now  func() time.Time
}

func NewModerationService(r domain.ReviewRepository) *ModerationService {
	return &ModerationService{repo: r, now: time.Now}
}

// SaveSelection replaces the selected-id set. Duplicates collapse to the
// first occurrence; the deduplicated set is returned as stored.
func (s *ModerationService) SaveSelection(ctx context.Context, ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if err := s.repo.ReplaceSelection(ctx, unique); err != nil {
		return nil, fmt.Errorf("replace selection: %w", err)
	}
	return unique, nil
}

func (s *ModerationService) Selection(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.Selection(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ImportGoogleReviews stores a batch for one listing, unpublished. Entries
// already imported for that listing are kept as-is; the returned slice is
// the listing's full imported set after the merge.
func (s *ModerationService) ImportGoogleReviews(ctx context.Context, listingID int64, placeID string, reviews []domain.GoogleReview) ([]domain.StoredGoogleReview, error) {
	if len(reviews) == 0 {
		return nil, errors.New("no reviews to import")
	}
	now := s.now().UTC()
	stored := make([]domain.StoredGoogleReview, 0, len(reviews))
	for _, gr := range reviews {
		stored = append(stored, domain.StoredGoogleReview{
			GoogleReview: gr,
			ListingID:    listingID,
			PlaceID:      placeID,
			Published:    false,
			ImportedAt:   now,
		})
	}
	if err := s.repo.ImportGoogleReviews(ctx, stored); err != nil {
		return nil, fmt.Errorf("import google reviews for listing %d: %w", listingID, err)
	}
	return s.repo.ListGoogleReviews(ctx, &listingID)
}

func (s *ModerationService) ListImported(ctx context.Context, listingID *int64) ([]domain.StoredGoogleReview, error) {
	rs, err := s.repo.ListGoogleReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = []domain.StoredGoogleReview{}
	}
	return rs, nil
}

func (s *ModerationService) SetPublished(ctx context.Context, listingID int64, reviewID string, published bool) (domain.StoredGoogleReview, error) {
	return s.repo.SetGooglePublished(ctx, listingID, reviewID, published)
}

// PublicReviews is the public projection: selected primary-source reviews
// that are published, normalized, followed by published imported Google
// reviews lifted into the same shape.
func (s *ModerationService) PublicReviews(ctx context.Context, listingID *int64) ([]domain.PublicReview, error) {
	selected, err := s.repo.Selection(ctx)
	if err != nil {
		return nil, err
	}
	selectedSet := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	raw, err := s.repo.ListReviews(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PublicReview, 0)
	for _, r := range raw {
		if _, ok := selectedSet[r.ID]; !ok {
			continue
		}
		if listingID != nil && r.ListingID != *listingID {
			continue
		}
		if r.Status != domain.StatusPublished {
			continue
		}
		out = append(out, LiftNormalizedReview(NormalizeReview(r)))
	}

	imported, err := s.repo.ListGoogleReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}
	names := ListingNames(raw)
	for _, rv := range imported {
		if !rv.Published {
			continue
		}
		out = append(out, LiftGoogleReview(rv, names))
	}
	return out, nil
}

// SyncService pulls reviews from the property-management API into storage
// and keeps the dashboard cache honest afterwards.
type SyncService struct {
	hostaway domain.HostawayClient
	repo     domain.ReviewRepository
	cache    domain.Cache
}

func NewSyncService(c domain.HostawayClient, r domain.ReviewRepository, cache domain.Cache) *SyncService {
	return &SyncService{hostaway: c, repo: r, cache: cache}
}

// SyncHostaway fetches the account's reviews and upserts them. 404/401/403
// from the API are recorded as misses and end the sync gracefully; anything
// else bubbles up. Returns how many reviews were stored.
func (s *SyncService) SyncHostaway(ctx context.Context, accountID string, limit int) (int, error) {
	raw, err := s.hostaway.ListReviews(ctx, accountID, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			_ = s.repo.LogMiss(ctx, 0, 404, "hostaway reviews")
			return 0, nil
		case isAuthErr(err):
			_ = s.repo.LogMiss(ctx, 0, 403, "hostaway reviews")
			return 0, nil
		default:
			return 0, err
		}
	}

	revs, err := MapHostawayReviews(raw)
	if err != nil {
		return 0, fmt.Errorf("map hostaway reviews: %w", err)
	}
	if len(revs) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertReviews(ctx, revs); err != nil {
		return 0, fmt.Errorf("upsert reviews: %w", err)
	}
	s.invalidateDashboards(ctx)
	return len(revs), nil
}

// SeedReviews stores a bundled fixture set, used when the upstream account
// has no review data (the sandbox API ships empty).
func (s *SyncService) SeedReviews(ctx context.Context, seed []domain.Review) (int, error) {
	if len(seed) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertReviews(ctx, seed); err != nil {
		return 0, fmt.Errorf("upsert seed reviews: %w", err)
	}
	s.invalidateDashboards(ctx)
	return len(seed), nil
}

// invalidateDashboards evicts the common unfiltered dashboard variants. The
// cache TTL bounds staleness for exotic filter combinations.
func (s *SyncService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for page := 1; page <= 3; page++ {
		_ = s.cache.Del(ctx, dashboardCacheKey(ReviewFilter{}, page, 5))
	}
}

func isAuthErr(err error) bool {
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "401") || strings.Contains(low, "unauthorized") ||
		strings.Contains(low, "403") || strings.Contains(low, "forbidden")
}
