// Package bot contains the event reactor: the dispatch layer that maps
// inbound chat events onto the resolver, the engagement store, and the
// suggestion engine, and emits outbound effects through the Gateway
// interface. The chat transport itself (Discord) lives behind Gateway so the
// core never imports a transport SDK.
package bot

import "context"

// Gateway is the outbound contract to the chat transport. Implementations
// must be safe for concurrent use; the reactor handles each inbound event on
// its own goroutine.
type Gateway interface {
	// PostMessage creates a message in a channel and returns its id.
	PostMessage(ctx context.Context, channelID, content string) (messageID string, err error)

	// EditMessage replaces the text of an existing message.
	EditMessage(ctx context.Context, channelID, messageID, content string) error

	// AddReaction attaches a single reaction emoji to a message.
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error

	// RemoveOwnReaction detaches the bot's own reaction emoji from a message.
	RemoveOwnReaction(ctx context.Context, channelID, messageID, emoji string) error
}

// Mention is one user mentioned in a message.
type Mention struct {
	UserID string
	IsBot  bool
}

// MessageEvent is an inbound message-posted event.
type MessageEvent struct {
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorBot bool
	Content   string
	Mentions  []Mention
}

// ReactionEvent is an inbound reaction-added or reaction-removed event.
type ReactionEvent struct {
	ChannelID string
	MessageID string
	UserID    string
	Emoji     string
}

// Reaction symbols understood by the reactor.
const (
	// LikeEmoji (👍) records or withdraws an endorsement.
	LikeEmoji = "\U0001F44D"
	// SeenEmoji (👀) marks or unmarks a movie as watched, and is also the
	// annotation the bot fans out to linked messages.
	SeenEmoji = "\U0001F440"
)

// canonicalEmoji folds visual variants of a reaction emoji onto its base
// form: skin-tone modifiers (U+1F3FB..U+1F3FF) and the emoji variation
// selector (U+FE0F) are dropped, so 👍🏽 and 👍 compare equal.
func canonicalEmoji(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 0x1F3FB && r <= 0x1F3FF {
			continue
		}
		if r == 0xFE0F {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
