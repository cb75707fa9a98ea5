package domain

import "time"

// ChannelSummary is one booking channel's slice of a property's reviews.
// AverageRating is nil when no review on the channel carried a rating.
type ChannelSummary struct {
	Channel       string   `json:"channel"`
	Total         int      `json:"total"`
	AverageRating *float64 `json:"averageRating"`
}

// TrendPoint is one calendar month's aggregate. Month is "YYYY-MM".
type TrendPoint struct {
	Month         string   `json:"month"`
	AverageRating *float64 `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}

// KeywordInsight is one dictionary topic and how many reviews mention it.
type KeywordInsight struct {
	Keyword     string `json:"keyword"`
	Occurrences int    `json:"occurrences"`
}

// PropertyPerformance aggregates one property's normalized reviews.
// Immutable once built; rebuilt from scratch on every aggregation call.
type PropertyPerformance struct {
	ListingID        int64              `json:"listingId"`
	ListingName      string             `json:"listingName"`
	TotalReviews     int                `json:"totalReviews"`
	OverallAverage   *float64           `json:"overallAverage"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
	ChannelBreakdown []ChannelSummary   `json:"channelBreakdown"`
	LatestReviewDate *time.Time         `json:"latestReviewDate"`
	Reviews          []NormalizedReview `json:"reviews"`
	Alerts           []string           `json:"alerts"`
	FlaggedReviewIDs []int64            `json:"flaggedReviewIds"`
}

// PortfolioSummary covers the entire normalized review set, independent of
// which dashboard page was requested.
type PortfolioSummary struct {
	TotalProperties   int              `json:"totalProperties"`
	TotalReviews      int              `json:"totalReviews"`
	GlobalAverage     *float64         `json:"globalAverage"`
	Trending          []TrendPoint     `json:"trending"`
	RecurringKeywords []KeywordInsight `json:"recurringKeywords"`
}

// Pagination describes the property-level page window. Page is always
// clamped into [1, TotalPages].
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// DashboardPayload is the full aggregation output: one page of property
// records plus the portfolio-wide summary.
type DashboardPayload struct {
	Properties []PropertyPerformance `json:"properties"`
	Summary    PortfolioSummary      `json:"summary"`
	Pagination Pagination            `json:"pagination"`
}
