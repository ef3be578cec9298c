// Package bot – Reactor
//
// The Reactor is a dispatch table over event kind → handler. Each handler
// composes resolver, store, and suggestion calls and emits outbound effects;
// there is no persisted reactor state of its own — states are implicit in
// the engagement data. Handler failures are contained at the handler
// boundary: they are logged, reported to the channel (paging the owner), and
// never stop the reactor from processing subsequent events.
package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kinoclub/movienight/internal/omdb"
	"github.com/kinoclub/movienight/internal/services"
)

// Reactor maps inbound chat events to engagement-store mutations and
// outbound effects.
type Reactor struct {
	Movies  *services.MovieService
	Suggest *services.SuggestService
	Gateway Gateway

	// ChannelIDs are the tracked channels; events elsewhere are ignored.
	ChannelIDs []string
	// SelfID is the bot's own user id. Events authored by the bot are
	// dropped, otherwise its fan-out reactions would re-enter the reactor.
	SelfID string
	// OwnerID is mentioned in error reports posted to the channel.
	OwnerID string
	// ReportChannelID receives error reports (normally the movie channel).
	ReportChannelID string
}

// inChannel reports whether the event's channel is tracked.
func (r *Reactor) inChannel(channelID string) bool {
	for _, id := range r.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// HandleMessage processes a message-posted event. A single message can be
// both a movie reference and a suggestion request; the two concerns are
// filtered and handled independently, as in the dispatch table.
func (r *Reactor) HandleMessage(ctx context.Context, ev MessageEvent) {
	if !r.inChannel(ev.ChannelID) || ev.AuthorID == r.SelfID {
		return
	}
	if _, ok := omdb.ExtractIMDBID(ev.Content); ok {
		r.handleReference(ctx, ev)
	}
	if r.mentionsSelf(ev) {
		r.handleSuggestionRequest(ctx, ev)
	}
}

// handleReference records a posted movie reference and acknowledges it by
// rewriting the link to the spoiler-free preview domain.
func (r *Reactor) handleReference(ctx context.Context, ev MessageEvent) {
	res, err := r.Movies.TrackReference(ctx, ev.MessageID, ev.AuthorID, ev.Content)
	if err != nil {
		eventsTotal.WithLabelValues("reference", outcomeError).Inc()
		r.report(ctx, fmt.Errorf("tracking movie reference: %w", err))
		return
	}

	if res.NewMovie {
		moviesTracked.Inc()
		log.Info().Str("imdb_id", res.Movie.IMDBID).Str("title", res.Movie.Title).Msg("movie tracked")
	} else {
		log.Info().Str("imdb_id", res.Movie.IMDBID).Str("title", res.Movie.Title).Msg("movie already tracked")
	}
	eventsTotal.WithLabelValues("reference", outcomeOK).Inc()

	// Success acknowledgement: swap imdb.com for shareimdb.com so the embed
	// does not spoil ratings. Best-effort; the reference is already stored.
	if edited := rewritePreviewDomain(ev.Content); edited != ev.Content {
		if err := r.Gateway.EditMessage(ctx, ev.ChannelID, ev.MessageID, edited); err != nil {
			log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("could not rewrite reference link")
		}
	}
}

// handleSuggestionRequest answers a mention with the fairest picks for the
// mentioned cohort.
func (r *Reactor) handleSuggestionRequest(ctx context.Context, ev MessageEvent) {
	cohort := r.cohortFrom(ev)
	if len(cohort) == 0 {
		// Mentioning only the bot is not a suggestion request.
		eventsTotal.WithLabelValues("suggest", outcomeIgnored).Inc()
		return
	}

	result, err := r.Suggest.Suggest(ctx, cohort)
	if err != nil {
		eventsTotal.WithLabelValues("suggest", outcomeError).Inc()
		r.report(ctx, fmt.Errorf("computing suggestion: %w", err))
		return
	}

	if len(result.Candidates) == 0 {
		suggestionsServed.WithLabelValues("empty").Inc()
		eventsTotal.WithLabelValues("suggest", outcomeOK).Inc()
		if _, err := r.Gateway.PostMessage(ctx, ev.ChannelID, "No movies to suggest"); err != nil {
			r.report(ctx, err)
		}
		return
	}

	// Ties are announced in random order so the same title is not always
	// surfaced first. Nothing persisted depends on this ordering.
	candidates := append([]services.Candidate(nil), result.Candidates...)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, c := range candidates {
		msgID, err := r.Gateway.PostMessage(ctx, ev.ChannelID, formatCandidate(c))
		if err != nil {
			r.report(ctx, fmt.Errorf("announcing %s: %w", c.IMDBID, err))
			continue
		}
		// The announcement already succeeded from the user's perspective;
		// a link failure here is reported but not fatal.
		if err := r.Movies.LinkAnnouncement(ctx, msgID, c.IMDBID); err != nil {
			r.report(ctx, fmt.Errorf("linking announcement for %s: %w", c.IMDBID, err))
		}
	}
	suggestionsServed.WithLabelValues("candidates").Inc()
	eventsTotal.WithLabelValues("suggest", outcomeOK).Inc()
}

// HandleReactionAdd processes a reaction-added event: 👍 records an
// endorsement, 👀 marks the movie as seen. Reactions on messages that do not
// resolve to a tracked movie are silently ignored.
func (r *Reactor) HandleReactionAdd(ctx context.Context, ev ReactionEvent) {
	if !r.inChannel(ev.ChannelID) || ev.UserID == r.SelfID {
		return
	}
	switch canonicalEmoji(ev.Emoji) {
	case LikeEmoji:
		tracked, added, err := r.Movies.LikeFromMessage(ctx, ev.MessageID, ev.UserID)
		if err != nil {
			eventsTotal.WithLabelValues("like", outcomeError).Inc()
			r.report(ctx, fmt.Errorf("recording like: %w", err))
			return
		}
		if !tracked {
			eventsTotal.WithLabelValues("like", outcomeIgnored).Inc()
			return
		}
		if added {
			log.Info().Str("user_id", ev.UserID).Str("message_id", ev.MessageID).Msg("like added")
		} else {
			log.Debug().Str("user_id", ev.UserID).Msg("duplicate like ignored")
		}
		eventsTotal.WithLabelValues("like", outcomeOK).Inc()

	case SeenEmoji:
		r.toggleWatched(ctx, ev, true)
	}
}

// HandleReactionRemove processes a reaction-removed event: 👍 withdraws an
// endorsement, 👀 moves the movie back to unwatched.
func (r *Reactor) HandleReactionRemove(ctx context.Context, ev ReactionEvent) {
	if !r.inChannel(ev.ChannelID) || ev.UserID == r.SelfID {
		return
	}
	switch canonicalEmoji(ev.Emoji) {
	case LikeEmoji:
		tracked, removed, err := r.Movies.UnlikeFromMessage(ctx, ev.MessageID, ev.UserID)
		if err != nil {
			eventsTotal.WithLabelValues("unlike", outcomeError).Inc()
			r.report(ctx, fmt.Errorf("removing like: %w", err))
			return
		}
		if !tracked {
			eventsTotal.WithLabelValues("unlike", outcomeIgnored).Inc()
			return
		}
		if removed {
			log.Info().Str("user_id", ev.UserID).Str("message_id", ev.MessageID).Msg("like removed")
		} else {
			log.Debug().Str("user_id", ev.UserID).Msg("no like to remove")
		}
		eventsTotal.WithLabelValues("unlike", outcomeOK).Inc()

	case SeenEmoji:
		r.toggleWatched(ctx, ev, false)
	}
}

// toggleWatched flips the watched flag and, on an actual transition, fans
// the 👀 annotation out to every linked message. The flip is committed
// first; annotation is best-effort per message and one failure neither rolls
// back the flag nor blocks the remaining messages.
func (r *Reactor) toggleWatched(ctx context.Context, ev ReactionEvent, watched bool) {
	event := "seen"
	if !watched {
		event = "unseen"
	}

	res, err := r.Movies.SetWatchedFromMessage(ctx, ev.MessageID, watched)
	if err != nil {
		eventsTotal.WithLabelValues(event, outcomeError).Inc()
		r.report(ctx, fmt.Errorf("toggling watched state: %w", err))
		return
	}
	if !res.Tracked {
		eventsTotal.WithLabelValues(event, outcomeIgnored).Inc()
		return
	}
	if !res.Changed {
		log.Debug().Str("imdb_id", res.IMDBID).Bool("watched", watched).Msg("watched flag unchanged")
		eventsTotal.WithLabelValues(event, outcomeOK).Inc()
		return
	}

	log.Info().Str("imdb_id", res.IMDBID).Bool("watched", watched).Msg("watched flag toggled")
	for _, msgID := range res.LinkedMessages {
		var err error
		if watched {
			err = r.Gateway.AddReaction(ctx, ev.ChannelID, msgID, SeenEmoji)
		} else {
			err = r.Gateway.RemoveOwnReaction(ctx, ev.ChannelID, msgID, SeenEmoji)
		}
		if err != nil {
			log.Warn().Err(err).Str("message_id", msgID).Msg("could not annotate linked message")
		}
	}
	eventsTotal.WithLabelValues(event, outcomeOK).Inc()
}

// mentionsSelf reports whether the bot itself is mentioned.
func (r *Reactor) mentionsSelf(ev MessageEvent) bool {
	for _, m := range ev.Mentions {
		if m.UserID == r.SelfID {
			return true
		}
	}
	return false
}

// cohortFrom extracts the suggestion cohort: every mentioned non-bot user.
func (r *Reactor) cohortFrom(ev MessageEvent) []string {
	var cohort []string
	for _, m := range ev.Mentions {
		if m.IsBot || m.UserID == r.SelfID {
			continue
		}
		cohort = append(cohort, m.UserID)
	}
	return cohort
}

// report logs a handler failure and posts it to the report channel with an
// owner mention. The reactor keeps processing events afterwards.
func (r *Reactor) report(ctx context.Context, err error) {
	log.Error().Err(err).Msg("handler failed")
	if r.ReportChannelID == "" {
		return
	}
	msg := "⚠️ Error: " + err.Error()
	if r.OwnerID != "" {
		msg += fmt.Sprintf(" <@%s>", r.OwnerID)
	}
	if _, perr := r.Gateway.PostMessage(ctx, r.ReportChannelID, msg); perr != nil {
		log.Error().Err(perr).Msg("could not post error report")
	}
}

// rewritePreviewDomain swaps imdb.com for shareimdb.com, case-insensitively,
// preserving the rest of the message.
func rewritePreviewDomain(content string) string {
	lower := strings.ToLower(content)
	const needle = "imdb.com"
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			b.WriteString(content[i:])
			return b.String()
		}
		j += i
		// Leave an already rewritten shareimdb.com alone.
		if j >= 5 && lower[j-5:j] == "share" {
			b.WriteString(content[i : j+len(needle)])
			i = j + len(needle)
			continue
		}
		b.WriteString(content[i:j])
		b.WriteString("shareimdb.com")
		i = j + len(needle)
	}
}

// formatCandidate renders one announced suggestion.
func formatCandidate(c services.Candidate) string {
	if c.Year != "" {
		return fmt.Sprintf("%s (%s)", c.Title, c.Year)
	}
	return c.Title
}
