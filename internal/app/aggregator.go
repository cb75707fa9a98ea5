package app

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"flex_reviews/internal/domain"
)

// ErrEmptyGroup signals an internal grouping inconsistency. Property groups
// are only ever built from existing reviews, so an empty group is a
// programming error, never a data condition.
var ErrEmptyGroup = errors.New("empty review group")

// Trend buckets use a zero-padded month key so lexicographic order equals
// chronological order.
const trendMonthLayout = "2006-01"

// Alert thresholds on the normalized 0-5 scale.
const (
	lowRatingAlertThreshold = 3.5
	flagRatingThreshold     = 3.0
)

// round2 rounds to two decimal places through decimal formatting, so the
// rounding decision is made on the value's exact decimal expansion rather
// than on the post-multiplication float.
func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}

// mean returns the rounded average of values, or nil for an empty set.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := round2(sum / float64(len(values)))
	return &m
}

// NormalizeReview rescales a raw review to the canonical 0-5 range: the
// native value is clamped into [0,10] before halving (malformed upstream
// data is capped, not rejected), nil propagates as nil, and a missing
// channel resolves to the default.
func NormalizeReview(r domain.Review) domain.NormalizedReview {
	n := domain.NormalizedReview{Review: r, StayDate: r.SubmittedAt}
	if n.Channel == "" {
		n.Channel = domain.DefaultChannel
	}
	if r.Rating != nil {
		capped := math.Min(math.Max(*r.Rating, 0), 10)
		v := round2(capped / 2)
		n.NormalizedRating = &v
	}
	return n
}

// aggregateCategories averages each category's sub-ratings (halved onto the
// normalized scale) over the reviews that supplied a value. A category that
// appears only with nil sub-ratings is reported as 0; one that never appears
// is omitted.
func aggregateCategories(reviews []domain.NormalizedReview) map[string]float64 {
	scores := make(map[string][]float64)
	for _, rv := range reviews {
		for _, c := range rv.ReviewCategory {
			if _, ok := scores[c.Category]; !ok {
				scores[c.Category] = nil
			}
			if c.Rating == nil {
				continue
			}
			scores[c.Category] = append(scores[c.Category], *c.Rating/2)
		}
	}
	out := make(map[string]float64, len(scores))
	for cat, vals := range scores {
		if m := mean(vals); m != nil {
			out[cat] = *m
		} else {
			out[cat] = 0
		}
	}
	return out
}

// buildChannelBreakdown groups reviews by resolved channel in first-seen
// order. Unrated reviews count toward the total but not the average.
func buildChannelBreakdown(reviews []domain.NormalizedReview) []domain.ChannelSummary {
	type bucket struct {
		total   int
		ratings []float64
	}
	order := make([]string, 0, 4)
	byChannel := make(map[string]*bucket)
	for _, rv := range reviews {
		ch := rv.Channel
		if ch == "" {
			ch = domain.DefaultChannel
		}
		b, ok := byChannel[ch]
		if !ok {
			b = &bucket{}
			byChannel[ch] = b
			order = append(order, ch)
		}
		b.total++
		if rv.NormalizedRating != nil {
			b.ratings = append(b.ratings, *rv.NormalizedRating)
		}
	}
	out := make([]domain.ChannelSummary, 0, len(order))
	for _, ch := range order {
		b := byChannel[ch]
		out = append(out, domain.ChannelSummary{Channel: ch, Total: b.total, AverageRating: mean(b.ratings)})
	}
	return out
}

// buildTrend buckets reviews by calendar month (UTC) and emits one point per
// distinct month, ascending.
func buildTrend(reviews []domain.NormalizedReview) []domain.TrendPoint {
	type bucket struct {
		count   int
		ratings []float64
	}
	byMonth := make(map[string]*bucket)
	for _, rv := range reviews {
		key := rv.SubmittedAt.UTC().Format(trendMonthLayout)
		b, ok := byMonth[key]
		if !ok {
			b = &bucket{}
			byMonth[key] = b
		}
		b.count++
		if rv.NormalizedRating != nil {
			b.ratings = append(b.ratings, *rv.NormalizedRating)
		}
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]domain.TrendPoint, 0, len(months))
	for _, m := range months {
		b := byMonth[m]
		out = append(out, domain.TrendPoint{Month: m, ReviewCount: b.count, AverageRating: mean(b.ratings)})
	}
	return out
}

// summarizeProperty builds one performance record from a non-empty group of
// a single listing's normalized reviews.
func summarizeProperty(reviews []domain.NormalizedReview) (domain.PropertyPerformance, error) {
	if len(reviews) == 0 {
		return domain.PropertyPerformance{}, ErrEmptyGroup
	}
	first := reviews[0]

	rated := make([]float64, 0, len(reviews))
	flagged := make([]int64, 0)
	latest := reviews[0].SubmittedAt
	for _, rv := range reviews {
		if rv.NormalizedRating != nil {
			rated = append(rated, *rv.NormalizedRating)
			if *rv.NormalizedRating < flagRatingThreshold {
				flagged = append(flagged, rv.ID)
			}
		}
		if rv.SubmittedAt.After(latest) {
			latest = rv.SubmittedAt
		}
	}
	overall := mean(rated)

	alerts := make([]string, 0, 2)
	if overall != nil && *overall < lowRatingAlertThreshold {
		alerts = append(alerts, "Overall rating trending low")
	}
	if len(flagged) > 0 {
		alerts = append(alerts, fmt.Sprintf("%d review(s) flagged for follow-up", len(flagged)))
	}

	sorted := make([]domain.NormalizedReview, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})

	latestCopy := latest
	return domain.PropertyPerformance{
		ListingID:        first.ListingID,
		ListingName:      first.ListingName,
		TotalReviews:     len(reviews),
		OverallAverage:   overall,
		CategoryAverages: aggregateCategories(reviews),
		ChannelBreakdown: buildChannelBreakdown(reviews),
		LatestReviewDate: &latestCopy,
		Reviews:          sorted,
		Alerts:           alerts,
		FlaggedReviewIDs: flagged,
	}, nil
}

// latestOrZero treats a missing date as the earliest possible value so it
// sorts last in a descending ordering.
func latestOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// BuildDashboard runs the full aggregation: normalize every raw review,
// group by listing, summarize each group, sort properties by recency and
// paginate, then compute the portfolio summary over the entire normalized
// set (never just the requested page). The transform is pure; it allocates
// fresh output and never mutates its input.
func BuildDashboard(raw []domain.Review, page, pageSize int) (domain.DashboardPayload, error) {
	normalized := make([]domain.NormalizedReview, 0, len(raw))
	for _, r := range raw {
		normalized = append(normalized, NormalizeReview(r))
	}

	groupOrder := make([]int64, 0)
	groups := make(map[int64][]domain.NormalizedReview)
	for _, rv := range normalized {
		if _, ok := groups[rv.ListingID]; !ok {
			groupOrder = append(groupOrder, rv.ListingID)
		}
		groups[rv.ListingID] = append(groups[rv.ListingID], rv)
	}

	properties := make([]domain.PropertyPerformance, 0, len(groupOrder))
	for _, id := range groupOrder {
		p, err := summarizeProperty(groups[id])
		if err != nil {
			return domain.DashboardPayload{}, fmt.Errorf("summarize listing %d: %w", id, err)
		}
		properties = append(properties, p)
	}

	sort.SliceStable(properties, func(i, j int) bool {
		return latestOrZero(properties[i].LatestReviewDate).After(latestOrZero(properties[j].LatestReviewDate))
	})

	if pageSize < 1 {
		pageSize = 1
	}
	totalProperties := len(properties)
	totalPages := (totalProperties + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage := page
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}
	start := (currentPage - 1) * pageSize
	end := start + pageSize
	if start > totalProperties {
		start = totalProperties
	}
	if end > totalProperties {
		end = totalProperties
	}
	pageSlice := make([]domain.PropertyPerformance, end-start)
	copy(pageSlice, properties[start:end])

	ratedAll := make([]float64, 0, len(normalized))
	for _, rv := range normalized {
		if rv.NormalizedRating != nil {
			ratedAll = append(ratedAll, *rv.NormalizedRating)
		}
	}

	return domain.DashboardPayload{
		Properties: pageSlice,
		Summary: domain.PortfolioSummary{
			TotalProperties:   totalProperties,
			TotalReviews:      len(normalized),
			GlobalAverage:     mean(ratedAll),
			Trending:          buildTrend(normalized),
			RecurringKeywords: extractKeywords(normalized),
		},
		Pagination: domain.Pagination{
			Page:       currentPage,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}, nil
}

// ListingNames builds the listing id -> name lookup from the primary review
// set. Computed per invocation; there is no process-wide registry.
func ListingNames(reviews []domain.Review) map[int64]string {
	names := make(map[int64]string)
	for _, r := range reviews {
		if _, ok := names[r.ListingID]; !ok {
			names[r.ListingID] = r.ListingName
		}
	}
	return names
}
