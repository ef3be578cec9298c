// Package repo implements the data persistence layer for the engagement
// store, backed by GORM. This file provides repository functions for the
// Movie model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - When a movie is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Idempotency semantics:
//   - UpsertMovie and SetWatched never fail on re-application; they report
//     whether this call actually changed state. The determination is made by
//     the database (conflict-ignoring insert, conditional update), so
//     concurrent identical calls collapse to exactly one winner.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kinoclub/movienight/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertMovie inserts a movie row if the IMDb id is not yet known.
//
// The insert is conflict-ignoring on the primary key: a second call with the
// same id reports inserted=false and leaves the original title/year
// untouched, even if different metadata is supplied. Callers use the
// inserted flag to avoid duplicate operator notifications.
func UpsertMovie(ctx context.Context, db *gorm.DB, imdbID, title, year string) (inserted bool, err error) {
	m := &domain.Movie{
		IMDBID:    imdbID,
		Title:     title,
		Year:      year,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "imdb_id"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetMovie fetches a single movie by IMDb id, or ErrNotFound if missing.
func GetMovie(ctx context.Context, db *gorm.DB, imdbID string) (*domain.Movie, error) {
	var m domain.Movie
	if err := db.WithContext(ctx).Where("imdb_id = ?", imdbID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetWatched moves the watched flag to the target value.
//
// The update is conditional (WHERE watched = NOT target), so changed=false
// means the flag was already at the target value. The single UPDATE is the
// source of truth for the changed/not-changed determination; no
// read-then-write race exists under concurrent identical requests.
//
// Returns ErrNotFound when the movie does not exist at all, so callers can
// tell "unknown movie" apart from "already at target".
func SetWatched(ctx context.Context, db *gorm.DB, imdbID string, watched bool) (changed bool, err error) {
	res := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("imdb_id = ? AND watched = ?", imdbID, !watched).
		Update("watched", watched)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	// No transition: either the flag already had the target value or the
	// movie does not exist. Distinguish the two.
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Movie{}).Where("imdb_id = ?", imdbID).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// CountMovies returns the total number of tracked movies, optionally
// filtered by watched state (nil means no filter).
func CountMovies(ctx context.Context, db *gorm.DB, watched *bool) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Movie{})
	if watched != nil {
		q = q.Where("watched = ?", *watched)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListMoviesPage returns a page of movies ordered by creation time
// descending, optionally filtered by watched state (nil means no filter).
// Use CountMovies to obtain the total for pagination metadata.
func ListMoviesPage(ctx context.Context, db *gorm.DB, watched *bool, offset, limit int) ([]domain.Movie, error) {
	q := db.WithContext(ctx).Model(&domain.Movie{})
	if watched != nil {
		q = q.Where("watched = ?", *watched)
	}
	var out []domain.Movie
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}
