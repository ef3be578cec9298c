// Suggestion preview HTTP handler.
//
// This file exposes the dry-run counterpart of the Discord suggestion flow:
//   - GET /suggestions?users=a,b,c
//
// It runs the same cohort ranking the bot uses when mentioned, without
// posting anything to Discord, so operators can inspect what a given cohort
// would be offered.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kinoclub/movienight/internal/services"
)

// SuggestResponse wraps the ranked candidates for a cohort preview.
//
// Candidates are returned in rank order (ties unshuffled); the Discord flow
// shuffles tied candidates before presenting them, the ops API does not.
type SuggestResponse struct {
	Cohort     []string             `json:"cohort"`
	Candidates []services.Candidate `json:"candidates"`
}

// PreviewSuggestions returns the tied top-ranked unwatched movies for the
// cohort given via the comma-separated users query param.
func (h *Handlers) PreviewSuggestions(c *gin.Context) {
	cohort := splitUsers(c.Query("users"))
	if len(cohort) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "users query param required (comma-separated user IDs)")
		return
	}

	res, err := h.suggestSvc.Suggest(c.Request.Context(), cohort)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCohort) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "users query param required (comma-separated user IDs)")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSuggestFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, SuggestResponse{
		Cohort:     cohort,
		Candidates: res.Candidates,
	})
}

// splitUsers splits a comma-separated user-ID list, trimming whitespace and
// dropping empty segments.
func splitUsers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
