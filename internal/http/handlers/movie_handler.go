// Movie catalog HTTP handlers.
//
// This file exposes read-only REST endpoints over the tracked movie catalog:
//   - GET /movies        (list, paginated, optional watched filter)
//   - GET /movies/{id}   (detail with like tally and linked messages)
//
// The catalog is written exclusively by the Discord event pipeline; the ops
// API is an observation surface for operators and dashboards. Handlers are
// transport-thin: they validate input, call the repo layer, and translate
// results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinoclub/movienight/internal/repo"
	"github.com/kinoclub/movienight/internal/services"
	"github.com/kinoclub/movienight/internal/utils"
)

// SuggestionService defines the suggestion preview operation consumed by the
// ops API. Implementations should be safe for concurrent use and must honor
// the provided context for cancellation and timeouts.
type SuggestionService interface {
	// Suggest ranks unwatched movies for the given cohort of user IDs.
	Suggest(ctx context.Context, cohortUserIDs []string) (*services.SuggestionResult, error)
}

// Handlers groups the ops API endpoints for movies and suggestions.
type Handlers struct {
	db         *gorm.DB
	suggestSvc SuggestionService
}

// New constructs and returns a Handlers instance bound to the given database
// handle and suggestion service.
func New(db *gorm.DB, suggestSvc SuggestionService) *Handlers {
	return &Handlers{db: db, suggestSvc: suggestSvc}
}

// imdbIDShape matches canonical IMDb title identifiers ("tt" + digits).
var imdbIDShape = regexp.MustCompile(`^tt\d+$`)

//
// DTOs
//

// MovieSummary is a catalog row enriched with its total like tally.
type MovieSummary struct {
	IMDBID  string `json:"imdb_id"`
	Title   string `json:"title"`
	Year    string `json:"year,omitempty"`
	Watched bool   `json:"watched"`
	Likes   int64  `json:"likes"`
}

// MovieDetail extends MovieSummary with the Discord message IDs that
// reference the movie, oldest first.
type MovieDetail struct {
	MovieSummary
	Messages []string `json:"messages"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMoviesResponse wraps a page of movies and pagination information.
type ListMoviesResponse struct {
	Movies     []MovieSummary `json:"movies"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// watchedFilter parses the optional ?watched=true|false query param.
// Returns (nil, true) when the param is absent and (nil, false) on garbage.
func watchedFilter(c *gin.Context) (*bool, bool) {
	raw := strings.TrimSpace(c.Query("watched"))
	if raw == "" {
		return nil, true
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		v := true
		return &v, true
	case "false", "0", "no":
		v := false
		return &v, true
	}
	return nil, false
}

//
// Handlers
//

// ListMovies returns a page of tracked movies with their like tallies.
// Supports an optional watched=true|false filter.
func (h *Handlers) ListMovies(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	watched, okFilter := watchedFilter(c)
	if !okFilter {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "watched must be true or false")
		return
	}

	total, err := repo.CountMovies(ctx, h.db, watched)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	movies, err := repo.ListMoviesPage(ctx, h.db, watched, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.IMDBID)
	}
	tallies, err := repo.LikeTallies(ctx, h.db, ids)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	items := make([]MovieSummary, 0, len(movies))
	for _, m := range movies {
		items = append(items, MovieSummary{
			IMDBID:  m.IMDBID,
			Title:   m.Title,
			Year:    m.Year,
			Watched: m.Watched,
			Likes:   tallies[m.IMDBID],
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMoviesResponse{
		Movies: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetMovie returns a single movie with its like tally and the Discord
// message IDs that reference it.
func (h *Handlers) GetMovie(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if !imdbIDShape.MatchString(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movie id must look like tt0111161")
		return
	}

	m, err := repo.GetMovie(ctx, h.db, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "movie not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	likes, err := repo.CountLikes(ctx, h.db, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	messages, err := repo.MessagesForMovie(ctx, h.db, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if messages == nil {
		messages = []string{}
	}

	ok(c, http.StatusOK, MovieDetail{
		MovieSummary: MovieSummary{
			IMDBID:  m.IMDBID,
			Title:   m.Title,
			Year:    m.Year,
			Watched: m.Watched,
			Likes:   likes,
		},
		Messages: messages,
	})
}
