// Package services – MovieService
//
// This file implements the MovieService, which owns the engagement
// state machine: recording shared references (resolve → upsert → link →
// author like), applying like/unlike events, and toggling watched state with
// its fan-out data. All idempotency decisions are delegated to the store's
// schema constraints; the service only translates raw constraint errors into
// stable sentinels (ErrMovieNotFound, ErrDuplicateLink) so callers can map
// them consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kinoclub/movienight/internal/omdb"
	"github.com/kinoclub/movienight/internal/repo"
)

// ReferenceResolver is the identity-resolution contract required by
// MovieService. The production implementation is *omdb.Resolver.
type ReferenceResolver interface {
	Resolve(ctx context.Context, rawText string) (omdb.Resolution, error)
}

// MovieService implements the use-cases around tracked movies. It is
// context-aware and safe for concurrent use; every method touches only the
// row(s) it names and never assumes exclusive access to the store.
type MovieService struct {
	// DB is the GORM handle used for all engagement operations.
	DB *gorm.DB
	// Resolver turns raw reference text into a canonical movie identity.
	Resolver ReferenceResolver
}

// TrackResult reports what TrackReference did.
type TrackResult struct {
	Movie omdb.Resolution
	// NewMovie is false when the title was already known; the link and the
	// author's like are recorded either way.
	NewMovie bool
	// AuthorLiked is false when the author had already liked the movie
	// (same title shared twice by the same person).
	AuthorLiked bool
}

// TrackReference handles a posted movie reference: resolve the text, insert
// the movie if new, link the message, and record the author's implicit like.
//
// Resolution happens fully before any persistence call; a resolution failure
// (omdb.ErrNoReference, omdb.ErrMetadataUnavailable) leaves no partial
// state. A duplicate message id yields ErrDuplicateLink.
func (s *MovieService) TrackReference(ctx context.Context, messageID, authorID, content string) (*TrackResult, error) {
	res, err := s.Resolver.Resolve(ctx, content)
	if err != nil {
		return nil, err
	}

	inserted, err := repo.UpsertMovie(ctx, s.DB, res.IMDBID, res.Title, res.Year)
	if err != nil {
		return nil, err
	}
	if err := repo.LinkMessage(ctx, s.DB, messageID, res.IMDBID); err != nil {
		return nil, translateConstraint(err)
	}
	liked, err := repo.AddLike(ctx, s.DB, res.IMDBID, authorID)
	if err != nil {
		return nil, translateConstraint(err)
	}

	return &TrackResult{Movie: res, NewMovie: inserted, AuthorLiked: liked}, nil
}

// LinkAnnouncement records a suggestion announcement message as a link to
// the movie it named, so later reactions to the announcement resolve back to
// the movie.
func (s *MovieService) LinkAnnouncement(ctx context.Context, messageID, imdbID string) error {
	if err := repo.LinkMessage(ctx, s.DB, messageID, imdbID); err != nil {
		return translateConstraint(err)
	}
	return nil
}

// LikeFromMessage applies an endorsement reaction. tracked=false means the
// message never referenced a movie — expected, since users react to
// arbitrary messages — and nothing is persisted. added=false means the user
// had already liked the movie.
func (s *MovieService) LikeFromMessage(ctx context.Context, messageID, userID string) (tracked, added bool, err error) {
	imdbID, err := repo.MovieForMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	added, err = repo.AddLike(ctx, s.DB, imdbID, userID)
	if err != nil {
		return true, false, translateConstraint(err)
	}
	return true, added, nil
}

// UnlikeFromMessage withdraws an endorsement. Mirrors LikeFromMessage;
// removed=false (never liked) is a silent no-op outcome.
func (s *MovieService) UnlikeFromMessage(ctx context.Context, messageID, userID string) (tracked, removed bool, err error) {
	imdbID, err := repo.MovieForMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	removed, err = repo.RemoveLike(ctx, s.DB, imdbID, userID)
	if err != nil {
		return true, false, err
	}
	return true, removed, nil
}

// WatchedToggle reports the outcome of SetWatchedFromMessage.
type WatchedToggle struct {
	Tracked bool
	IMDBID  string
	// Changed is false when the flag was already at the target value; no
	// fan-out happens in that case.
	Changed bool
	// LinkedMessages is every message that referenced the movie, for the
	// caller to annotate. Populated only when Changed is true.
	LinkedMessages []string
}

// SetWatchedFromMessage moves the watched flag of the movie behind messageID
// to the target value.
//
// The flag flip commits first and is the source of truth; annotating the
// linked messages is the caller's best-effort follow-up and is deliberately
// not transactional with the flip.
func (s *MovieService) SetWatchedFromMessage(ctx context.Context, messageID string, watched bool) (*WatchedToggle, error) {
	imdbID, err := repo.MovieForMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &WatchedToggle{}, nil
		}
		return nil, err
	}

	changed, err := repo.SetWatched(ctx, s.DB, imdbID, watched)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// A link row exists but the movie does not: the FK should make
			// this impossible.
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	out := &WatchedToggle{Tracked: true, IMDBID: imdbID, Changed: changed}
	if changed {
		msgs, err := repo.MessagesForMovie(ctx, s.DB, imdbID)
		if err != nil {
			return nil, err
		}
		out.LinkedMessages = msgs
	}
	return out, nil
}

// translateConstraint maps raw constraint violations onto the service-level
// sentinels in a driver-agnostic way.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(msg, "foreign key constraint"):
		return ErrMovieNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "primary key") ||
		strings.Contains(msg, "duplicate key"):
		return ErrDuplicateLink
	}
	return err
}
