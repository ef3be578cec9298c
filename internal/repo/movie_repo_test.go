package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema and
// foreign keys enabled. The DSN is derived from the test name so parallel
// tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Single connection so the PRAGMA below applies to every statement.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestUpsertMovie_InsertThenNoop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	inserted, err := UpsertMovie(ctx, db, "tt0133093", "The Matrix", "1999")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !inserted {
		t.Fatalf("first upsert should report inserted=true")
	}

	// Second call with different metadata must not overwrite the original.
	inserted, err = UpsertMovie(ctx, db, "tt0133093", "Wrong Title", "2000")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted {
		t.Fatalf("second upsert should report inserted=false")
	}

	m, err := GetMovie(ctx, db, "tt0133093")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Title != "The Matrix" || m.Year != "1999" {
		t.Fatalf("original metadata overwritten: %+v", m)
	}
	if m.Watched {
		t.Fatalf("new movie must start unwatched")
	}
}

func TestGetMovie_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetMovie(context.Background(), db, "tt9999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetWatched_Transitions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := UpsertMovie(ctx, db, "tt0111161", "The Shawshank Redemption", "1994"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// false -> true is a transition.
	changed, err := SetWatched(ctx, db, "tt0111161", true)
	if err != nil || !changed {
		t.Fatalf("first mark: changed=%v err=%v", changed, err)
	}

	// true -> true is a no-op.
	changed, err = SetWatched(ctx, db, "tt0111161", true)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if changed {
		t.Fatalf("re-marking should report changed=false")
	}

	// true -> false moves it back.
	changed, err = SetWatched(ctx, db, "tt0111161", false)
	if err != nil || !changed {
		t.Fatalf("unmark: changed=%v err=%v", changed, err)
	}

	m, err := GetMovie(ctx, db, "tt0111161")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Watched {
		t.Fatalf("movie should be unwatched again")
	}
}

func TestSetWatched_UnknownMovie(t *testing.T) {
	db := newTestDB(t)
	if _, err := SetWatched(context.Background(), db, "tt0000001", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCountAndListMovies_WatchedFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"tt0000010", "tt0000011", "tt0000012"} {
		if _, err := UpsertMovie(ctx, db, id, fmt.Sprintf("Movie %d", i), ""); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	if _, err := SetWatched(ctx, db, "tt0000011", true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	total, err := CountMovies(ctx, db, nil)
	if err != nil || total != 3 {
		t.Fatalf("count all: total=%d err=%v", total, err)
	}

	unwatched := false
	total, err = CountMovies(ctx, db, &unwatched)
	if err != nil || total != 2 {
		t.Fatalf("count unwatched: total=%d err=%v", total, err)
	}

	page, err := ListMoviesPage(ctx, db, &unwatched, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 unwatched movies, got %d", len(page))
	}
	for _, m := range page {
		if m.Watched {
			t.Fatalf("watched movie leaked into unwatched page: %+v", m)
		}
	}
}
