package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// BaseURL is the Strava v3 API root
const BaseURL = "https://www.strava.com/api/v3"

// maxPerPage is the largest page Strava serves
const maxPerPage = 100

// ErrRateLimited is wrapped by APIError when Strava answers 429
var ErrRateLimited = errors.New("strava rate limit exceeded")

// APIError is a non-200 response. Message is taken from Strava's JSON
// fault body when there is one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers test for ErrRateLimited
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var fault struct {
		Message string `json:"message"`
	}
	msg := string(body)
	if json.Unmarshal(body, &fault) == nil && fault.Message != "" {
		msg = fault.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Client reads athlete activities from Strava
type Client struct {
	http    *http.Client
	baseURL string
	limiter *RateLimiter
}

// NewClient authenticates every request with tokens from ts
func NewClient(ts oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(context.Background(), ts), BaseURL)
}

// NewClientWithHTTP uses an already authenticated HTTP client
func NewClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{http: hc, baseURL: baseURL, limiter: NewRateLimiter()}
}

// GetActivities fetches one page of activities started after 'after'.
// A zero 'after' fetches from the beginning.
func (c *Client) GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]Activity, error) {
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if !after.IsZero() {
		q.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	var activities []Activity
	if err := c.getJSON(ctx, "/athlete/activities", q, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetAllActivities pages through every activity after 'after'. Pages
// fetched before a failure are returned along with the error.
func (c *Client) GetAllActivities(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]Activity, error) {
	var all []Activity
	for page := 1; ; page++ {
		batch, err := c.GetActivities(ctx, after, page, maxPerPage)
		if err != nil {
			return all, fmt.Errorf("fetching page %d: %w", page, err)
		}
		all = append(all, batch...)

		if onProgress != nil && len(batch) > 0 {
			onProgress(len(all))
		}
		if len(batch) < maxPerPage {
			return all, nil
		}
	}
}

// RateLimitStatus reports the requests left in the short and daily windows
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.limiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.limiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
