package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", 2*time.Second)
	c.baseURL = srv.URL + "/"
	return c
}

func TestLookup_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("i"); got != "tt0133093" {
			t.Errorf("wrong id queried: %s", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("wrong api key sent: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Response":"True","Title":"The Matrix","Year":"1999"}`))
	})

	title, year, err := c.Lookup(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if title != "The Matrix" || year != "1999" {
		t.Fatalf("wrong metadata: %q %q", title, year)
	}
}

func TestLookup_NegativeResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	_, _, err := c.Lookup(context.Background(), "tt0000000")
	if !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
}

func TestLookup_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, _, err := c.Lookup(context.Background(), "tt0133093"); !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
}

func TestLookup_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	})

	if _, _, err := c.Lookup(context.Background(), "tt0133093"); !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
}

func TestLookup_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Response":"True","Title":"x","Year":"y"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Lookup(ctx, "tt0133093"); !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
}
