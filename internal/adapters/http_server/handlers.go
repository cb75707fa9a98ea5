// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/google"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct {
	Dash       *app.DashboardService
	Moderation *app.ModerationService
	Google     *app.GoogleReviewsService // nil: serve the mocked fallback
	AccountID  string
	APIKey     string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/reviews/hostaway", h.hostawayDashboard)
	s.mux.Get("/api/reviews/google", h.googleReviews)
	s.mux.Get("/api/reviews/google/import", h.listImported)
	s.mux.Post("/api/reviews/google/import", h.importGoogle)
	s.mux.Patch("/api/reviews/google/import", h.setPublished)
	s.mux.Get("/api/reviews/selection", h.getSelection)
	s.mux.Post("/api/reviews/selection", h.saveSelection)
	s.mux.Get("/api/reviews/public", h.publicReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

/********** boundary parsing (typed, parse-or-reject) **********/

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDateParam(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("expected YYYY-MM-DD or RFC3339")
}

// parseFilter validates every query param before the core sees anything.
// A malformed value is a 400, never a silent coercion.
func parseFilter(q map[string][]string) (app.ReviewFilter, string) {
	var f app.ReviewFilter
	first := func(k string) string {
		if vs := q[k]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	if s := first("listingId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, "listingId must be an integer"
		}
		f.ListingID = &id
	}
	if vs := q["channel"]; len(vs) > 0 {
		f.Channels = vs
	}
	if s := first("status"); s != "" {
		st := strings.ToLower(s)
		switch st {
		case domain.StatusPublished, domain.StatusPending, domain.StatusArchived:
			f.Status = &st
		default:
			return f, "status must be one of published, pending, archived"
		}
	}
	for _, k := range []string{"minRating", "maxRating"} {
		s := first(k)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 5 {
			return f, k + " must be a number between 0 and 5"
		}
		if k == "minRating" {
			f.MinRating = &v
		} else {
			f.MaxRating = &v
		}
	}
	if s := first("startDate"); s != "" {
		t, err := parseDateParam(s)
		if err != nil {
			return f, "startDate: " + err.Error()
		}
		f.StartDate = &t
	}
	if s := first("endDate"); s != "" {
		t, err := parseDateParam(s)
		if err != nil {
			return f, "endDate: " + err.Error()
		}
		f.EndDate = &t
	}
	f.Search = first("search")
	return f, ""
}

func parsePageParams(q map[string][]string) (page, pageSize int, detail string) {
	page, pageSize = 1, 5
	first := func(k string) string {
		if vs := q[k]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	if s := first("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, 0, "page must be a positive integer"
		}
		page = n
	}
	if s := first("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			return 0, 0, "pageSize must be an integer between 1 and 100"
		}
		pageSize = n
	}
	return page, pageSize, ""
}

func parseOptionalListingID(s string) (*int64, string) {
	if s == "" {
		return nil, ""
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, "listingId must be an integer"
	}
	return &id, ""
}

/********** dashboard **********/

func (h *Handlers) hostawayDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, detail := parseFilter(q)
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", detail)
		return
	}
	page, pageSize, detail := parsePageParams(q)
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid pagination", detail)
		return
	}

	payload, err := h.Dash.Dashboard(r.Context(), filter, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("dashboard aggregation failed")
		writeProblem(w, http.StatusInternalServerError, "Aggregation failed", "could not build the review dashboard")
		return
	}

	resp := map[string]any{
		"status": "success",
		"source": map[string]any{
			"accountId":      h.AccountID,
			"apiKeyLastFour": lastFour(h.APIKey),
		},
		"appliedFilters": q,
		"data":           payload,
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}

func lastFour(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}

/********** google reviews **********/

// mockedGoogleReviews keeps the endpoint demonstrable without a Places key.
var mockedGoogleReviews = []domain.GoogleReview{
	{ID: "g-1", AuthorName: "Charlotte Rivera", Rating: 5, Text: "Loved the designer touches at the Shoreditch flat. Lobby staff were welcoming.", RelativeTimeDescription: "2 weeks ago"},
	{ID: "g-2", AuthorName: "Tommaso Ricci", Rating: 4, Text: "Great location to explore East London. Slight street noise at night.", RelativeTimeDescription: "1 month ago"},
	{ID: "g-3", AuthorName: "Dana Stone", Rating: 3, Text: "Beautiful building though booking the rooftop workspace required extra emails.", RelativeTimeDescription: "3 months ago"},
}

func (h *Handlers) googleReviews(w http.ResponseWriter, r *http.Request) {
	listingID, detail := parseOptionalListingID(r.URL.Query().Get("listingId"))
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid listingId", detail)
		return
	}
	explicit := r.URL.Query().Get("placeId")

	if h.Google == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "mocked",
			"metadata": map[string]any{
				"total":      len(mockedGoogleReviews),
				"lastSynced": time.Now().UTC(),
			},
			"reviews": mockedGoogleReviews,
			"notes":   "Set GOOGLE_PLACES_API_KEY to enable live data.",
		})
		return
	}

	placeID := google.ResolvePlaceID(listingID, explicit)
	if placeID == "" {
		writeProblem(w, http.StatusBadRequest, "No place configured",
			"pass ?placeId=YOUR_ID or define GOOGLE_PLACE_ID_<listingId>")
		return
	}

	payload, err := h.Google.ReviewsForPlace(r.Context(), placeID, listingID)
	if err != nil {
		log.Error().Err(err).Str("place_id", placeID).Msg("google reviews fetch failed")
		writeProblem(w, http.StatusBadGateway, "Upstream failure", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"metadata": payload.Metadata,
		"reviews":  payload.Reviews,
	})
}

/********** google import moderation **********/

func (h *Handlers) listImported(w http.ResponseWriter, r *http.Request) {
	listingID, detail := parseOptionalListingID(r.URL.Query().Get("listingId"))
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid listingId", detail)
		return
	}
	reviews, err := h.Moderation.ListImported(r.Context(), listingID)
	if err != nil {
		log.Error().Err(err).Msg("list imported google reviews failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not list imported reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reviews": reviews})
}

func (h *Handlers) importGoogle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListingID *int64                `json:"listingId"`
		PlaceID   string                `json:"placeId"`
		Reviews   []domain.GoogleReview `json:"reviews"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON: "+err.Error())
		return
	}
	if body.ListingID == nil || len(body.Reviews) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "provide listingId and an array of reviews to import")
		return
	}
	placeID := google.ResolvePlaceID(body.ListingID, body.PlaceID)
	if placeID == "" {
		writeProblem(w, http.StatusBadRequest, "No place configured", "unable to resolve a Google Place ID for this listing")
		return
	}

	stored, err := h.Moderation.ImportGoogleReviews(r.Context(), *body.ListingID, placeID, body.Reviews)
	if err != nil {
		log.Error().Err(err).Int64("listing_id", *body.ListingID).Msg("google import failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not import reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reviews": stored})
}

func (h *Handlers) setPublished(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListingID *int64 `json:"listingId"`
		ReviewID  string `json:"reviewId"`
		Published *bool  `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON: "+err.Error())
		return
	}
	if body.ListingID == nil || body.ReviewID == "" || body.Published == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "listingId, reviewId, and published (boolean) are required")
		return
	}

	review, err := h.Moderation.SetPublished(r.Context(), *body.ListingID, body.ReviewID, *body.Published)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		log.Error().Err(err).Str("review_id", body.ReviewID).Msg("publish state update failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not update publish state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "review": review})
}

/********** selection **********/

func (h *Handlers) getSelection(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Moderation.Selection(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("read selection failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not read selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "selectedIds": ids})
}

func (h *Handlers) saveSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SelectedIDs []int64 `json:"selectedIds"`
		ReviewIDs   []int64 `json:"reviewIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON: "+err.Error())
		return
	}
	ids := body.SelectedIDs
	if ids == nil {
		ids = body.ReviewIDs
	}
	if ids == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "please provide a selectedIds array in the request body")
		return
	}

	saved, err := h.Moderation.SaveSelection(r.Context(), ids)
	if err != nil {
		log.Error().Err(err).Msg("save selection failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not persist selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "selectedIds": saved})
}

/********** public projection **********/

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	listingID, detail := parseOptionalListingID(r.URL.Query().Get("listingId"))
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid listingId", detail)
		return
	}
	reviews, err := h.Moderation.PublicReviews(r.Context(), listingID)
	if err != nil {
		log.Error().Err(err).Msg("public projection failed")
		writeProblem(w, http.StatusInternalServerError, "Storage failure", "could not build the public review list")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"count":   len(reviews),
		"reviews": reviews,
	})
}
