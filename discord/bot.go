package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rabbit-bot/handlers"
	"rabbit-bot/models"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const intents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentMessageContent

// Bot adapts a discordgo session to the chat and messenger interfaces the
// rest of the bot is written against.
type Bot struct {
	session  *discordgo.Session
	presence string

	mu  sync.RWMutex
	ctx context.Context
}

func New(token, presence string) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents

	b := &Bot{session: s, presence: presence, ctx: context.Background()}
	s.AddHandler(b.onReady)
	return b, nil
}

// Bind routes incoming messages and reactions to the handlers.
func (b *Bot) Bind(cmds *handlers.CommandHandler, reactions *handlers.ReactionHandler) {
	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		msg, ok := incomingMessage(m.Message, selfID(s))
		if !ok {
			return
		}
		cmds.Handle(b.context(), msg)
	})

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		ctx := b.context()
		self := selfID(s)
		if r.UserID == self {
			return
		}
		m, err := s.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
		if err != nil {
			log.Warn().Err(err).Str("component", "discord").Str("message", r.MessageID).Msg("could not fetch reacted message")
			return
		}
		rx, ok := incomingReaction(r.MessageReaction, m, self)
		if !ok {
			return
		}
		reactions.Handle(ctx, rx)
	})
}

// Open connects the gateway. ctx is handed to every event handler and should
// live until Close.
func (b *Bot) Open(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) context() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("component", "discord").Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("session ready")
	if b.presence == "" {
		return
	}
	if err := s.UpdateGameStatus(0, b.presence); err != nil {
		log.Warn().Err(err).Str("component", "discord").Msg("failed to set presence")
	}
}

// Send posts text to a channel id and returns the new message id.
func (b *Bot) Send(ctx context.Context, target, text string) (string, error) {
	m, err := b.session.ChannelMessageSend(target, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (b *Bot) React(ctx context.Context, target, messageID, emoji string) error {
	return b.session.MessageReactionAdd(target, messageID, emoji, discordgo.WithContext(ctx))
}

// ResolveChannel checks the state cache first and falls back to the REST API.
// Any failure is reported as an unresolvable channel.
func (b *Bot) ResolveChannel(ctx context.Context, channelID string) (string, bool) {
	if b.session.State != nil {
		if ch, err := b.session.State.Channel(channelID); err == nil {
			return ch.ID, true
		}
	}
	ch, err := b.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if !errors.As(err, &restErr) || restErr.Response == nil || restErr.Response.StatusCode != http.StatusNotFound {
			log.Warn().Err(err).Str("component", "discord").Str("channel", channelID).Msg("channel lookup failed")
		}
		return "", false
	}
	return ch.ID, true
}

// ResolveUser opens (or reuses) a direct-message channel with the user.
func (b *Bot) ResolveUser(ctx context.Context, userID string) (string, error) {
	ch, err := b.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func selfID(s *discordgo.Session) string {
	if s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}

func incomingMessage(m *discordgo.Message, self string) (models.IncomingMessage, bool) {
	if m == nil || m.Author == nil {
		return models.IncomingMessage{}, false
	}
	channel, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		return models.IncomingMessage{}, false
	}
	author, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return models.IncomingMessage{}, false
	}
	return models.IncomingMessage{
		ID:        m.ID,
		ChannelID: channel,
		AuthorID:  author,
		Content:   m.Content,
		FromBot:   m.Author.Bot || m.Author.ID == self,
	}, true
}

func incomingReaction(r *discordgo.MessageReaction, m *discordgo.Message, self string) (models.IncomingReaction, bool) {
	if r == nil || m == nil {
		return models.IncomingReaction{}, false
	}
	channel, err := strconv.ParseInt(r.ChannelID, 10, 64)
	if err != nil {
		return models.IncomingReaction{}, false
	}
	// Missing user ids only occur for system events; zero is fine there.
	user, _ := strconv.ParseInt(r.UserID, 10, 64)
	return models.IncomingReaction{
		ChannelID:     channel,
		MessageID:     r.MessageID,
		Emoji:         r.Emoji.Name,
		UserID:        user,
		ByBot:         self != "" && r.UserID == self,
		MessageText:   m.Content,
		AuthoredByBot: m.Author != nil && self != "" && m.Author.ID == self,
	}, true
}
