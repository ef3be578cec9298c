package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kinoclub/movienight/internal/repo"
)

func TestSuggest_EmptyCohort(t *testing.T) {
	svc := &SuggestService{DB: newServiceDB(t)}
	if _, err := svc.Suggest(context.Background(), nil); !errors.Is(err, ErrEmptyCohort) {
		t.Fatalf("expected ErrEmptyCohort, got %v", err)
	}
}

func TestSuggest_NothingToSuggest(t *testing.T) {
	svc := &SuggestService{DB: newServiceDB(t)}
	res, err := svc.Suggest(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Candidates == nil || len(res.Candidates) != 0 {
		t.Fatalf("empty store should yield an empty (non-nil) candidate list: %+v", res)
	}
}

func TestSuggest_TiedTopGroup(t *testing.T) {
	db := newServiceDB(t)
	svc := &SuggestService{DB: db}
	ctx := context.Background()

	// X: liked by A, B, C -> cohort {A,B} sees 2, total 3
	// Y: liked by A, B    -> cohort sees 2, total 2
	// W: liked by A only  -> cohort sees 1
	seed := []struct {
		id, title string
		likers    []string
	}{
		{"tt0000100", "X", []string{"A", "B", "C"}},
		{"tt0000200", "Y", []string{"A", "B"}},
		{"tt0000300", "W", []string{"A"}},
	}
	for _, s := range seed {
		if _, err := repo.UpsertMovie(ctx, db, s.id, s.title, ""); err != nil {
			t.Fatalf("seed %s: %v", s.id, err)
		}
		for _, u := range s.likers {
			if _, err := repo.AddLike(ctx, db, s.id, u); err != nil {
				t.Fatalf("like: %v", err)
			}
		}
	}

	res, err := svc.Suggest(ctx, []string{"A", "B"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.MaxCohortLikes != 2 {
		t.Fatalf("expected max cohort likes 2, got %d", res.MaxCohortLikes)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("both tied movies must be candidates: %+v", res.Candidates)
	}
	// W is below the tie and must be cut.
	for _, c := range res.Candidates {
		if c.IMDBID == "tt0000300" {
			t.Fatalf("below-tie movie leaked into candidates: %+v", res.Candidates)
		}
	}
	// The fairness pick (fewer total likes) leads the list.
	if res.Candidates[0].IMDBID != "tt0000200" {
		t.Fatalf("fairness pick should lead: %+v", res.Candidates)
	}
}

func TestSuggest_WatchedExcluded(t *testing.T) {
	db := newServiceDB(t)
	svc := &SuggestService{DB: db}
	ctx := context.Background()

	if _, err := repo.UpsertMovie(ctx, db, "tt0000400", "Seen", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.AddLike(ctx, db, "tt0000400", "A"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := repo.SetWatched(ctx, db, "tt0000400", true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	res, err := svc.Suggest(ctx, []string{"A"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("watched movie must never be suggested: %+v", res.Candidates)
	}

	// Moving it back to unwatched makes it suggestible again.
	if _, err := repo.SetWatched(ctx, db, "tt0000400", false); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	res, err = svc.Suggest(ctx, []string{"A"})
	if err != nil || len(res.Candidates) != 1 {
		t.Fatalf("unwatched movie should be suggestible: %+v err=%v", res, err)
	}
}
