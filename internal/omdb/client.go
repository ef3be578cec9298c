// Package omdb resolves movie references: it extracts canonical IMDb ids
// from raw message text and fetches display metadata (title, year) from the
// OMDb API.
//
// The resolver performs no caching and no retries. Each lookup is a single
// best-effort round trip with a client timeout; failures propagate to the
// caller as ErrMetadataUnavailable and must be handled before anything is
// persisted. A small client-side pacer keeps request bursts within the OMDb
// free-tier allowance.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.omdbapi.com/"

// ErrNoReference is returned when the input text contains no IMDb reference.
var ErrNoReference = errors.New("no movie reference found")

// ErrMetadataUnavailable is returned when the OMDb lookup errors, times out,
// or returns a negative/malformed result. It is transient and upstream;
// callers report it and persist nothing.
var ErrMetadataUnavailable = errors.New("movie metadata unavailable")

// Client is a minimal OMDb API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient constructs a Client with the given API key and request timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		// OMDb free tier is 1000 req/day; one per second with a small
		// burst is far below that while keeping lookups effectively
		// immediate under normal traffic.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// lookupResponse is the OMDb envelope. Response is the string "True" or
// "False"; Error is only present on the negative path.
type lookupResponse struct {
	Response string `json:"Response"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Error    string `json:"Error"`
}

// Lookup fetches (title, year) for an IMDb id.
//
// Any failure mode (transport error, non-200, malformed body, negative
// Response) maps to ErrMetadataUnavailable, wrapped with the upstream
// detail.
func (c *Client) Lookup(ctx context.Context, imdbID string) (title, year string, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	u := fmt.Sprintf("%s?apikey=%s&i=%s", c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(imdbID))
	log.Debug().Str("imdb_id", imdbID).Msg("omdb lookup")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: omdb returned status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	if lr.Response != "True" {
		msg := lr.Error
		if msg == "" {
			msg = "could not parse omdb response"
		}
		return "", "", fmt.Errorf("%w: %s", ErrMetadataUnavailable, msg)
	}
	return lr.Title, lr.Year, nil
}
