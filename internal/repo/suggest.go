// Package repo implements the data persistence layer for the engagement
// store, backed by GORM. This file provides the aggregate query feeding the
// suggestion engine.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kinoclub/movienight/internal/domain"
)

// SuggestionRow is one unwatched movie with its like tallies relative to a
// cohort of users.
type SuggestionRow struct {
	IMDBID      string `gorm:"column:imdb_id"`
	Title       string `gorm:"column:title"`
	Year        string `gorm:"column:year"`
	CohortLikes int    `gorm:"column:cohort_likes"`
	TotalLikes  int    `gorm:"column:total_likes"`
}

// SuggestionCandidates returns every unwatched movie liked by at least one
// cohort member, ranked by cohort likes descending and, within ties, by
// total likes ascending.
//
// The ascending total is a deliberate fairness rule: among movies equally
// favored by the cohort, the one less broadly liked overall is preferred so
// globally popular titles do not crowd out cohort favorites.
func SuggestionCandidates(ctx context.Context, db *gorm.DB, cohortUserIDs []string) ([]SuggestionRow, error) {
	if len(cohortUserIDs) == 0 {
		return nil, nil
	}
	var rows []SuggestionRow
	err := db.WithContext(ctx).Raw(`
		SELECT m.imdb_id, m.title, m.year,
		       SUM(CASE WHEN l.user_id IN ? THEN 1 ELSE 0 END) AS cohort_likes,
		       COUNT(l.user_id) AS total_likes
		FROM movies m
		JOIN likes l ON l.imdb_id = m.imdb_id
		WHERE m.watched = ?
		GROUP BY m.imdb_id, m.title, m.year
		HAVING cohort_likes > 0
		ORDER BY cohort_likes DESC, total_likes ASC`,
		cohortUserIDs, false,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LikeTally is a per-movie like count used by the ops API movie listing.
type LikeTally struct {
	IMDBID string `gorm:"column:imdb_id"`
	Likes  int64  `gorm:"column:likes"`
}

// LikeTallies returns like counts for the given movies in one query.
func LikeTallies(ctx context.Context, db *gorm.DB, imdbIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(imdbIDs))
	if len(imdbIDs) == 0 {
		return out, nil
	}
	var rows []LikeTally
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Select("imdb_id, COUNT(*) AS likes").
		Where("imdb_id IN ?", imdbIDs).
		Group("imdb_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.IMDBID] = r.Likes
	}
	return out, nil
}
