// Package discord binds the reactor to Discord via discordgo. It is the
// only package aware of the transport SDK: inbound gateway events are
// translated to the reactor's event types, and the bot.Gateway interface is
// implemented on top of the Discord REST API.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/kinoclub/movienight/internal/bot"
)

// Adapter owns the Discord session. It implements bot.Gateway.
type Adapter struct {
	session *discordgo.Session
}

// New creates a closed Discord session with the intents the reactor needs:
// guild messages (with content) and reactions.
func New(token string) (*Adapter, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent
	return &Adapter{session: s}, nil
}

// Open connects the gateway websocket. Call Bind before Open so no early
// events are missed.
func (a *Adapter) Open() error { return a.session.Open() }

// Close terminates the gateway connection.
func (a *Adapter) Close() error { return a.session.Close() }

// SelfID returns the bot's own user id. Valid once the session is open.
func (a *Adapter) SelfID() string {
	if a.session.State != nil && a.session.State.User != nil {
		return a.session.State.User.ID
	}
	return ""
}

// Bind registers the reactor's handlers on the session. discordgo invokes
// each handler on its own goroutine, which gives the reactor the
// independent, non-blocking per-event handling it expects.
func (a *Adapter) Bind(r *bot.Reactor) {
	a.session.AddHandler(func(_ *discordgo.Session, ev *discordgo.Ready) {
		log.Info().Str("username", ev.User.Username).Msg("bot logged in")
	})

	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		r.HandleMessage(context.Background(), messageEvent(m.Message))
	})

	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageReactionAdd) {
		r.HandleReactionAdd(context.Background(), reactionEvent(m.MessageReaction))
	})

	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageReactionRemove) {
		r.HandleReactionRemove(context.Background(), reactionEvent(m.MessageReaction))
	})
}

// messageEvent translates a Discord message to the reactor's event type.
func messageEvent(m *discordgo.Message) bot.MessageEvent {
	ev := bot.MessageEvent{
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
	}
	for _, u := range m.Mentions {
		ev.Mentions = append(ev.Mentions, bot.Mention{UserID: u.ID, IsBot: u.Bot})
	}
	return ev
}

// reactionEvent translates a Discord reaction to the reactor's event type.
// Emoji.Name carries the raw unicode emoji (including skin-tone variants);
// canonicalization happens in the reactor.
func reactionEvent(m *discordgo.MessageReaction) bot.ReactionEvent {
	return bot.ReactionEvent{
		ChannelID: m.ChannelID,
		MessageID: m.MessageID,
		UserID:    m.UserID,
		Emoji:     m.Emoji.Name,
	}
}

// PostMessage implements bot.Gateway.
func (a *Adapter) PostMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := a.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// EditMessage implements bot.Gateway.
func (a *Adapter) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := a.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return err
}

// AddReaction implements bot.Gateway.
func (a *Adapter) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return a.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

// RemoveOwnReaction implements bot.Gateway.
func (a *Adapter) RemoveOwnReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return a.session.MessageReactionRemove(channelID, messageID, emoji, "@me", discordgo.WithContext(ctx))
}
