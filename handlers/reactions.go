package handlers

import (
	"context"
	"rabbit-bot/models"
	"rabbit-bot/reminders"
	"strconv"

	"github.com/rs/zerolog/log"
)

const replyReactionNotFound = "Huh? I couldn't find that reminder. 🐇"

type ReactionHandler struct {
	resolver *reminders.Resolver
	chat     Chat
}

func NewReactionHandler(r *reminders.Resolver, chat Chat) *ReactionHandler {
	return &ReactionHandler{resolver: r, chat: chat}
}

// Handle deletes the reminder a listing reaction points at and replies in the
// channel. Unrelated reactions are dropped silently.
func (h *ReactionHandler) Handle(ctx context.Context, rx models.IncomingReaction) {
	res, err := h.resolver.Resolve(ctx, rx)
	if err != nil {
		log.Error().Err(err).Str("component", "reactions").Str("message", rx.MessageID).Msg("reaction delete failed")
	}

	var reply string
	switch res {
	case reminders.Forgotten:
		reply = replyForgot
	case reminders.NotFound:
		reply = replyReactionNotFound
	default:
		return
	}

	target := strconv.FormatInt(rx.ChannelID, 10)
	if _, err := h.chat.Send(ctx, target, reply); err != nil {
		log.Error().Err(err).Str("component", "reactions").Msg("failed to send reply")
	}
}
