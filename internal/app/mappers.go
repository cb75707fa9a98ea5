package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

/********** alias registries (single source of truth) **********/

var reviewAliases = map[string][]string{
	"id":         {"id", "reviewId", "review_id"},
	"type":       {"type", "reviewType", "review_type"},
	"status":     {"status", "state"},
	"rating":     {"rating", "overallRating", "overall_rating", "score"},
	"text":       {"publicReview", "public_review", "review", "comment", "text"},
	"private":    {"privateFeedback", "private_feedback", "privateReview"},
	"submitted":  {"submittedAt", "submitted_at", "departureDate", "createdAt", "insertedOn"},
	"guest":      {"guestName", "guest_name", "reviewerName", "guest.name"},
	"listing":    {"listingName", "listing_name", "listingMapName", "listing.name"},
	"listing_id": {"listingId", "listing_id", "listingMapId", "listing.id"},
	"channel":    {"channel", "channelName", "channel_name", "source"},
}

var googleReviewAliases = map[string][]string{
	"author":   {"author_name", "authorName", "author"},
	"rating":   {"rating", "score"},
	"text":     {"text", "review", "comment"},
	"relative": {"relative_time_description", "relativeTimeDescription"},
	"photo":    {"profile_photo_url", "profilePhotoUrl"},
	"lang":     {"language", "lang"},
}

// submittedAtLayouts covers the timestamp shapes both sources emit.
var submittedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// parseSubmittedAt tries each accepted layout in order. Unparseable
// timestamps are a hard mapping error: a review silently dropped from its
// trend bucket is worse than a loud ingest failure.
func parseSubmittedAt(s string) (time.Time, error) {
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

/********** primary-source review mapper **********/

// MapHostawayReview lifts one loose API record into the typed review shape.
// Missing id or listing id rejects the record; the aggregation core must
// never receive an unvalidated shape.
func MapHostawayReview(in map[string]any) (domain.Review, error) {
	var rv domain.Review

	id := firstInt64Flexible(in, reviewAliases["id"]...)
	if id == nil {
		return domain.Review{}, fmt.Errorf("review has no id")
	}
	rv.ID = *id

	listingID := firstInt64Flexible(in, reviewAliases["listing_id"]...)
	if listingID == nil {
		return domain.Review{}, fmt.Errorf("review %d has no listing id", rv.ID)
	}
	rv.ListingID = *listingID

	submitted := firstNonEmptyAlias(in, reviewAliases, "submitted")
	if submitted == "" {
		return domain.Review{}, fmt.Errorf("review %d has no submission timestamp", rv.ID)
	}
	ts, err := parseSubmittedAt(submitted)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %d: %w", rv.ID, err)
	}
	rv.SubmittedAt = ts

	rv.Type = firstNonEmptyAlias(in, reviewAliases, "type")
	if rv.Type == "" {
		rv.Type = domain.TypeGuestToHost
	}
	rv.Status = strings.ToLower(firstNonEmptyAlias(in, reviewAliases, "status"))
	if rv.Status == "" {
		rv.Status = domain.StatusPublished
	}
	rv.Rating = getFloatFlexible(in, reviewAliases["rating"]...)
	rv.PublicReview = firstNonEmptyAlias(in, reviewAliases, "text")
	if s := firstNonEmptyAlias(in, reviewAliases, "private"); s != "" {
		rv.PrivateFeedback = &s
	}
	rv.GuestName = firstNonEmptyAlias(in, reviewAliases, "guest")
	rv.ListingName = firstNonEmptyAlias(in, reviewAliases, "listing")
	rv.Channel = firstNonEmptyAlias(in, reviewAliases, "channel")
	rv.ReviewCategory = mapCategories(in)

	return rv, nil
}

// MapHostawayReviews maps a whole batch, failing on the first bad record.
func MapHostawayReviews(in []map[string]any) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(in))
	for i, m := range in {
		rv, err := MapHostawayReview(m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rv)
	}
	return out, nil
}

func mapCategories(in map[string]any) []domain.CategoryRating {
	raw, ok := lookupAny(in, "reviewCategory").([]any)
	if !ok {
		if raw, ok = lookupAny(in, "review_category").([]any); !ok {
			return []domain.CategoryRating{}
		}
	}
	out := make([]domain.CategoryRating, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := lookupStr(m, "category")
		if name == "" {
			name = lookupStr(m, "name")
		}
		if name == "" {
			continue
		}
		out = append(out, domain.CategoryRating{
			Category: name,
			Rating:   getFloatFlexible(m, "rating", "value", "score"),
		})
	}
	return out
}

/********** places review mapper **********/

// MapGoogleReviews lifts the loose Places "reviews" array. Entries without a
// native id get a stable synthesized one (author + unix time, or a content
// hash when the time is also missing) so import dedupe stays deterministic.
func MapGoogleReviews(in []any) []domain.GoogleReview {
	out := make([]domain.GoogleReview, 0, len(in))
	for _, item := range in {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var gr domain.GoogleReview
		gr.AuthorName = firstNonEmptyAlias(m, googleReviewAliases, "author")
		if gr.AuthorName == "" {
			gr.AuthorName = "Anonymous guest"
		}
		if f := getFloatFlexible(m, googleReviewAliases["rating"]...); f != nil {
			gr.Rating = *f
		}
		gr.Text = firstNonEmptyAlias(m, googleReviewAliases, "text")
		gr.RelativeTimeDescription = firstNonEmptyAlias(m, googleReviewAliases, "relative")
		gr.ProfilePhotoURL = firstNonEmptyAlias(m, googleReviewAliases, "photo")
		gr.Language = firstNonEmptyAlias(m, googleReviewAliases, "lang")

		if ts := firstInt64Flexible(m, "time"); ts != nil {
			t := time.Unix(*ts, 0).UTC()
			gr.PublishedAt = &t
			gr.ID = fmt.Sprintf("%s-%d", authorKey(gr.AuthorName), *ts)
		} else {
			sum := sha1.Sum([]byte(gr.AuthorName + "|" + gr.Text))
			gr.ID = authorKey(gr.AuthorName) + "-" + hex.EncodeToString(sum[:8])
		}
		out = append(out, gr)
	}
	return out
}

func authorKey(name string) string {
	if name == "" || name == "Anonymous guest" {
		return "anon"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// LiftGoogleReview turns a published imported Google review into the public
// projection shape: native rating doubled back into the 0-10 domain, empty
// category list, channel fixed to Google, listing name back-filled from the
// primary-set lookup.
func LiftGoogleReview(rv domain.StoredGoogleReview, listingNames map[int64]string) domain.PublicReview {
	submitted := rv.ImportedAt
	if rv.PublishedAt != nil {
		submitted = *rv.PublishedAt
	}
	name, ok := listingNames[rv.ListingID]
	if !ok {
		name = fmt.Sprintf("Listing %d", rv.ListingID)
	}
	native := rv.Rating * 2
	normalized := rv.Rating
	return domain.PublicReview{
		ID:               domain.StringID(rv.ID),
		Type:             domain.TypeGuestToHost,
		Status:           domain.StatusPublished,
		Rating:           &native,
		PublicReview:     rv.Text,
		ReviewCategory:   []domain.CategoryRating{},
		SubmittedAt:      submitted,
		StayDate:         submitted,
		GuestName:        rv.AuthorName,
		ListingName:      name,
		ListingID:        rv.ListingID,
		Channel:          domain.GoogleChannel,
		NormalizedRating: &normalized,
	}
}

// LiftNormalizedReview adapts a selected primary-source review into the
// public projection shape.
func LiftNormalizedReview(rv domain.NormalizedReview) domain.PublicReview {
	cats := rv.ReviewCategory
	if cats == nil {
		cats = []domain.CategoryRating{}
	}
	return domain.PublicReview{
		ID:               domain.NumericID(rv.ID),
		Type:             rv.Type,
		Status:           rv.Status,
		Rating:           rv.Rating,
		PublicReview:     rv.PublicReview,
		ReviewCategory:   cats,
		SubmittedAt:      rv.SubmittedAt,
		StayDate:         rv.StayDate,
		GuestName:        rv.GuestName,
		ListingName:      rv.ListingName,
		ListingID:        rv.ListingID,
		Channel:          rv.Channel,
		NormalizedRating: rv.NormalizedRating,
	}
}
