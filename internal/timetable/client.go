// Package timetable fetches and caches the day's prayer timings from
// the Al-Adhan API.
package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

const (
	DefaultBaseURL = "https://api.aladhan.com/v1"

	// the app targets Senegalese cities only
	fixedCountry = "Senegal"
)

// Client is a rate-limited Al-Adhan HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a client capped at requestsPerMinute upstream calls.
func NewClient(baseURL string, requestsPerMinute int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute < 1 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// aladhanResponse is the subset of the API response we consume.
type aladhanResponse struct {
	Code int `json:"code"`
	Data struct {
		Date struct {
			Readable string `json:"readable"`
		} `json:"date"`
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// Fetch retrieves the timings for a city on the calendar day of "day".
// Non-2xx responses and malformed bodies are fetch failures; the caller
// decides whether a cached table can stand in.
func (c *Client) Fetch(ctx context.Context, city string, method int, day time.Time) (model.TimeTable, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.TimeTable{}, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("country", fixedCountry)
	params.Set("method", fmt.Sprintf("%d", method))
	params.Set("date", day.Format("02-01-2006"))
	u := c.baseURL + "/timingsByCity?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.TimeTable{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.TimeTable{}, fmt.Errorf("timings request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TimeTable{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.TimeTable{}, fmt.Errorf("aladhan returned %d", resp.StatusCode)
	}

	var parsed aladhanResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.TimeTable{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Data.Timings == nil {
		return model.TimeTable{}, fmt.Errorf("aladhan response missing timings")
	}

	return model.TimeTable{
		City:    city,
		Day:     string(prayer.DayOf(day)),
		Date:    parsed.Data.Date.Readable,
		Method:  method,
		Timings: parsed.Data.Timings,
	}, nil
}
