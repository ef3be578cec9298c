// Package repo implements the data persistence layer for the engagement
// store, backed by GORM. This file provides repository functions for the
// MessageLink model.
//
// Error semantics:
//   - A duplicate message id relies on the primary-key constraint and is
//     returned as a raw DB error. The service layer translates that into
//     ErrDuplicateLink; it is never silently overwritten.
//   - Linking to an unknown movie violates the FK and is likewise returned
//     raw for the service layer to translate into ErrMovieNotFound.
//   - MovieForMessage returns ErrNotFound when the message is not a tracked
//     reference; reactions land on arbitrary messages, so callers treat that
//     as an expected outcome, not a failure.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kinoclub/movienight/internal/domain"
)

// LinkMessage records that messageID referenced (or announced) the given
// movie. The message id is unique among links; a duplicate insert fails with
// the underlying constraint error.
func LinkMessage(ctx context.Context, db *gorm.DB, messageID, imdbID string) error {
	l := &domain.MessageLink{
		MessageID: messageID,
		IMDBID:    imdbID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(l).Error
}

// MovieForMessage is the reverse lookup used by every reaction handler.
// It returns the linked IMDb id, or ErrNotFound when the message was never
// linked to a movie.
func MovieForMessage(ctx context.Context, db *gorm.DB, messageID string) (string, error) {
	var l domain.MessageLink
	if err := db.WithContext(ctx).Where("message_id = ?", messageID).First(&l).Error; err != nil {
		return "", err
	}
	return l.IMDBID, nil
}

// MessagesForMovie returns every message id linked to the movie, oldest
// first. Used to fan a watched-state change out to all messages that
// referenced the movie so they can be annotated consistently.
func MessagesForMovie(ctx context.Context, db *gorm.DB, imdbID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.MessageLink{}).
		Where("imdb_id = ?", imdbID).
		Order("created_at asc").
		Pluck("message_id", &ids).Error
	return ids, err
}
