// Package repo implements the data persistence layer for the engagement
// store, backed by GORM. This file provides repository functions for the
// Like model.
//
// Idempotency semantics:
//   - AddLike is a conflict-ignoring insert against the (imdb_id, user_id)
//     unique index: added=false means the pair already existed. The insert
//     itself is the atomic source of truth, so concurrent identical requests
//     resolve with exactly one added=true.
//   - RemoveLike reports removed=false when no such like existed; that is an
//     expected outcome, not an error.
//   - Liking an unknown movie violates the FK and surfaces as a raw DB
//     error for the service layer to translate.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kinoclub/movienight/internal/domain"
)

// AddLike records that userID endorses the movie. added=false means the
// user had already liked it (duplicate silently absorbed by the unique
// index).
func AddLike(ctx context.Context, db *gorm.DB, imdbID, userID string) (added bool, err error) {
	l := &domain.Like{
		ID:        uuid.NewString(),
		IMDBID:    imdbID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "imdb_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RemoveLike withdraws a user's endorsement. removed=false means there was
// nothing to remove.
func RemoveLike(ctx context.Context, db *gorm.DB, imdbID, userID string) (removed bool, err error) {
	res := db.WithContext(ctx).
		Where("imdb_id = ? AND user_id = ?", imdbID, userID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountLikes returns the total number of likes for a movie.
func CountLikes(ctx context.Context, db *gorm.DB, imdbID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("imdb_id = ?", imdbID).
		Count(&n).Error
	return n, err
}
