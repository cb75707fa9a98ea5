// internal/adapters/google/client.go
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// detailsFields limits the Place Details response to what the review
// pipeline consumes.
const detailsFields = "name,rating,user_ratings_total,reviews"

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if base == "" {
		base = "https://maps.googleapis.com/maps/api/place"
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 15 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// PlaceDetails fetches one place's details and returns the "result" object.
// Google reports errors inside a 200 response via the status field; anything
// other than OK surfaces as an error with the upstream message attached.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (map[string]any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailsFields)
	q.Set("key", c.key)
	u := c.base + "/details/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flex-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("google_places", "/details/json", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("google_places", "/details/json", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		Status       string         `json:"status"`
		ErrorMessage string         `json:"error_message"`
		Result       map[string]any `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	switch body.Status {
	case "OK":
		return body.Result, nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return nil, fmt.Errorf("place %s: %w", placeID, domain.ErrNotFound)
	default:
		if body.ErrorMessage != "" {
			return nil, fmt.Errorf("places status %s: %s", body.Status, body.ErrorMessage)
		}
		return nil, fmt.Errorf("places status %s", body.Status)
	}
}
