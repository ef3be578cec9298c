// Package services – SuggestService
//
// This file implements the suggestion engine: a pure query over the
// engagement store that returns the best-ranked unwatched movie(s) for a
// cohort of users, with tie-break data. Ranking policy: cohort likes
// descending, then total likes ascending (the fairness rule — among equally
// cohort-favored movies, prefer the one less broadly liked overall). Every
// movie tied at the maximum cohort-like value is returned; presentation
// order among ties is left to the caller, which should randomize it.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/kinoclub/movienight/internal/repo"
)

// Candidate is one suggestible movie within the tied top group.
type Candidate struct {
	IMDBID     string `json:"imdb_id"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	TotalLikes int    `json:"total_likes"`
}

// SuggestionResult is the outcome of a suggestion query. An empty Candidates
// slice is the distinct "nothing to suggest" outcome, not an error.
type SuggestionResult struct {
	MaxCohortLikes int         `json:"max_cohort_likes"`
	Candidates     []Candidate `json:"candidates"`
}

// SuggestService implements the suggestion use-case.
type SuggestService struct {
	// DB is the GORM handle used for the aggregate query.
	DB *gorm.DB
}

// Suggest returns every unwatched movie tied at the maximum cohort-like
// count for the given users.
//
// Semantics:
//   - Only unwatched movies are considered.
//   - A candidate must be liked by at least one cohort member.
//   - Ties at the top cohort-like value are all returned; because the store
//     orders ties by ascending total likes, Candidates[0] is the fairness
//     pick were a single choice required.
//
// An empty cohort yields ErrEmptyCohort.
func (s *SuggestService) Suggest(ctx context.Context, cohortUserIDs []string) (*SuggestionResult, error) {
	if len(cohortUserIDs) == 0 {
		return nil, ErrEmptyCohort
	}

	rows, err := repo.SuggestionCandidates(ctx, s.DB, cohortUserIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &SuggestionResult{Candidates: []Candidate{}}, nil
	}

	max := rows[0].CohortLikes
	out := &SuggestionResult{MaxCohortLikes: max}
	for _, r := range rows {
		if r.CohortLikes < max {
			break
		}
		out.Candidates = append(out.Candidates, Candidate{
			IMDBID:     r.IMDBID,
			Title:      r.Title,
			Year:       r.Year,
			TotalLikes: r.TotalLikes,
		})
	}
	return out, nil
}
