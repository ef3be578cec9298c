package omdb

import (
	"context"
	"regexp"
)

// imdbIDPattern matches IMDb title URLs anywhere in a message, tolerating an
// optional locale path segment between domain and title path
// (e.g. imdb.com/de-de/title/tt0133093).
var imdbIDPattern = regexp.MustCompile(`(?i)imdb\.com/(?:[a-z]{2}(?:-[a-z]{2})?/)?title/(tt\d+)`)

// ExtractIMDBID returns the first canonical IMDb id found in text.
func ExtractIMDBID(text string) (string, bool) {
	m := imdbIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolution is the result of resolving a raw reference string.
type Resolution struct {
	IMDBID string
	Title  string
	Year   string
}

// MetadataLookup is the upstream contract consumed by the Resolver. The
// production implementation is *Client; tests substitute a local double.
type MetadataLookup interface {
	Lookup(ctx context.Context, imdbID string) (title, year string, err error)
}

// Resolver turns raw message text into a resolved movie identity.
type Resolver struct {
	Meta MetadataLookup
}

// Resolve extracts the canonical id from rawText and fetches its display
// metadata.
//
// Errors:
//   - ErrNoReference when no IMDb URL is present in the text.
//   - ErrMetadataUnavailable (wrapped) when the upstream lookup fails.
//
// Resolution happens fully before any persistence call, so a failure here
// never leaves partial state behind.
func (r *Resolver) Resolve(ctx context.Context, rawText string) (Resolution, error) {
	id, ok := ExtractIMDBID(rawText)
	if !ok {
		return Resolution{}, ErrNoReference
	}
	title, year, err := r.Meta.Lookup(ctx, id)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{IMDBID: id, Title: title, Year: year}, nil
}
