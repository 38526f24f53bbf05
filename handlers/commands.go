package handlers

import (
	"context"
	"errors"
	"fmt"
	"rabbit-bot/commands"
	"rabbit-bot/console"
	"rabbit-bot/models"
	"rabbit-bot/reminders"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Chat is what the handlers need from the chat platform.
type Chat interface {
	Send(ctx context.Context, target, text string) (string, error)
	React(ctx context.Context, target, messageID, emoji string) error
}

const (
	replyHello          = "Hi! 🐇"
	replyForgot         = "Forgot it! 🐇"
	replyHuh            = "Huh? I don't know that reminder. 🐇"
	replyRemindUsage    = "Usage: `%sremind <days> <message>` 🐇"
	replyForgetUsage    = "Usage: `%sforget <id>` 🐇"
	replyBadInterval    = "I need a whole number of days from 1 to 36500. Try `%sremind 7 water the plants`. 🐇"
	replyEmptyMessage   = "What should I remind you about? 🐇"
	replyStoreFailed    = "Sorry, I couldn't get to my reminder list. 🐇"
	replyNoConsole      = "The server console isn't connected. 🐇"
	replyConsoleFailed  = "Sorry, I couldn't reach the server. 🐇"
	replyReminderCreate = "Okay! I'll remind this channel %s, starting %s. Forget it with `%sforget %s`. 🐇"
)

type CommandHandler struct {
	reminders *reminders.Service
	chat      Chat
	console   console.Client
	prefix    string
}

// NewCommandHandler wires the command surface. con may be nil, in which case
// the server status commands say the console is unavailable.
func NewCommandHandler(svc *reminders.Service, chat Chat, con console.Client, prefix string) *CommandHandler {
	return &CommandHandler{reminders: svc, chat: chat, console: con, prefix: prefix}
}

// Handle dispatches a chat message if it is one of the bot's commands.
func (h *CommandHandler) Handle(ctx context.Context, msg models.IncomingMessage) {
	if msg.FromBot {
		return
	}
	inv, ok := commands.Parse(msg.Content, h.prefix)
	if !ok {
		return
	}

	target := strconv.FormatInt(msg.ChannelID, 10)
	logger := log.With().Str("component", "commands").Str("command", inv.Name).Str("channel", target).Logger()

	var reply string
	switch inv.Name {
	case "hello":
		reply = replyHello
	case "remind":
		reply = h.remind(ctx, msg, inv)
	case "forget":
		reply = h.forget(ctx, inv)
	case "remindlist":
		h.remindList(ctx, msg, target)
		return
	case "tps", "list", "time", "version":
		reply = h.status(ctx, inv.Name)
	default:
		return
	}

	if _, err := h.chat.Send(ctx, target, reply); err != nil {
		logger.Error().Err(err).Msg("failed to send reply")
	}
}

func (h *CommandHandler) remind(ctx context.Context, msg models.IncomingMessage, inv commands.Invocation) string {
	if len(inv.Args) < 2 {
		return fmt.Sprintf(replyRemindUsage, h.prefix)
	}
	days, err := reminders.ParseInterval(inv.Arg(0))
	if err != nil {
		return fmt.Sprintf(replyBadInterval, h.prefix)
	}

	r, err := h.reminders.Create(ctx, msg.ChannelID, msg.AuthorID, days, inv.Rest(1))
	switch {
	case errors.Is(err, models.ErrInvalidInterval):
		return fmt.Sprintf(replyBadInterval, h.prefix)
	case errors.Is(err, models.ErrEmptyMessage):
		return replyEmptyMessage
	case err != nil:
		log.Error().Err(err).Str("component", "commands").Msg("failed to create reminder")
		return replyStoreFailed
	}

	every := "every day"
	if r.IntervalDays > 1 {
		every = fmt.Sprintf("every %d days", r.IntervalDays)
	}
	return fmt.Sprintf(replyReminderCreate, every, r.DueAt.Format("Jan 2 15:04 UTC"), h.prefix, r.ID)
}

func (h *CommandHandler) forget(ctx context.Context, inv commands.Invocation) string {
	id := inv.Arg(0)
	if id == "" {
		return fmt.Sprintf(replyForgetUsage, h.prefix)
	}
	removed, err := h.reminders.Delete(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("component", "commands").Str("id", id).Msg("failed to delete reminder")
		return replyStoreFailed
	}
	if !removed {
		return replyHuh
	}
	return replyForgot
}

// remindList sends the channel listing and seeds one reaction per marker shown
// so users can tap to delete.
func (h *CommandHandler) remindList(ctx context.Context, msg models.IncomingMessage, target string) {
	text, count, err := h.reminders.RenderChannel(ctx, msg.ChannelID)
	if err != nil {
		log.Error().Err(err).Str("component", "commands").Msg("failed to list reminders")
		text, count = replyStoreFailed, 0
	}

	messageID, err := h.chat.Send(ctx, target, text)
	if err != nil {
		log.Error().Err(err).Str("component", "commands").Msg("failed to send reminder list")
		return
	}

	markers := min(count, len(reminders.Markers))
	for i := 0; i < markers; i++ {
		if err := h.chat.React(ctx, target, messageID, reminders.Markers[i]); err != nil {
			log.Warn().Err(err).Str("component", "commands").Str("message", messageID).Msg("failed to add marker reaction")
			return
		}
	}
}

func (h *CommandHandler) status(ctx context.Context, name string) string {
	if h.console == nil {
		return replyNoConsole
	}

	var (
		reply string
		err   error
	)
	switch name {
	case "tps":
		reply, err = console.TPS(h.console)
	case "list":
		reply, err = console.Players(h.console)
	case "time":
		reply, err = console.Time(h.console)
	case "version":
		reply, err = console.Version(ctx, h.console)
	}
	if err != nil {
		log.Error().Err(err).Str("component", "commands").Str("command", name).Msg("console command failed")
		return replyConsoleFailed
	}
	return reply
}
