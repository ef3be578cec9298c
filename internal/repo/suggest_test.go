package repo

import (
	"context"
	"testing"
)

func TestSuggestionCandidates_RankingAndFairness(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// X liked by A, B, C (3 total, 2 cohort)
	// Y liked by A, B    (2 total, 2 cohort)  <- fairness: fewer total likes
	// Z liked by C only  (1 total, 0 cohort)  <- not a candidate for {A,B}
	seed := []struct {
		id, title string
		likers    []string
	}{
		{"tt0000100", "X", []string{"A", "B", "C"}},
		{"tt0000200", "Y", []string{"A", "B"}},
		{"tt0000300", "Z", []string{"C"}},
	}
	for _, s := range seed {
		if _, err := UpsertMovie(ctx, db, s.id, s.title, ""); err != nil {
			t.Fatalf("seed %s: %v", s.id, err)
		}
		for _, u := range s.likers {
			if _, err := AddLike(ctx, db, s.id, u); err != nil {
				t.Fatalf("like %s by %s: %v", s.id, u, err)
			}
		}
	}

	rows, err := SuggestionCandidates(ctx, db, []string{"A", "B"})
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(rows), rows)
	}

	// Both are tied on cohort likes (2); Y must rank first because it has
	// fewer total likes.
	if rows[0].IMDBID != "tt0000200" || rows[1].IMDBID != "tt0000100" {
		t.Fatalf("wrong ranking: %+v", rows)
	}
	if rows[0].CohortLikes != 2 || rows[0].TotalLikes != 2 {
		t.Fatalf("wrong tallies for Y: %+v", rows[0])
	}
	if rows[1].CohortLikes != 2 || rows[1].TotalLikes != 3 {
		t.Fatalf("wrong tallies for X: %+v", rows[1])
	}
}

func TestSuggestionCandidates_ExcludesWatched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := UpsertMovie(ctx, db, "tt0000400", "Seen Already", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := AddLike(ctx, db, "tt0000400", "A"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := SetWatched(ctx, db, "tt0000400", true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	rows, err := SuggestionCandidates(ctx, db, []string{"A"})
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("watched movie must not be suggested: %+v", rows)
	}
}

func TestSuggestionCandidates_EmptyCohort(t *testing.T) {
	db := newTestDB(t)
	rows, err := SuggestionCandidates(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("empty cohort: %v", err)
	}
	if rows != nil {
		t.Fatalf("empty cohort should yield no rows, got %+v", rows)
	}
}

func TestLikeTallies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := UpsertMovie(ctx, db, "tt0000500", "Tallied", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := UpsertMovie(ctx, db, "tt0000600", "Unliked", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, u := range []string{"A", "B"} {
		if _, err := AddLike(ctx, db, "tt0000500", u); err != nil {
			t.Fatalf("like: %v", err)
		}
	}

	tallies, err := LikeTallies(ctx, db, []string{"tt0000500", "tt0000600"})
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	if tallies["tt0000500"] != 2 {
		t.Fatalf("expected 2 likes for tt0000500, got %d", tallies["tt0000500"])
	}
	if tallies["tt0000600"] != 0 {
		t.Fatalf("expected 0 likes for tt0000600, got %d", tallies["tt0000600"])
	}

	empty, err := LikeTallies(ctx, db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty input should yield empty map: %v %v", empty, err)
	}
}
