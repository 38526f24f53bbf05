package models

import "time"

// IncomingMessage is a chat message received by the bot.
type IncomingMessage struct {
	ID        string
	ChannelID int64
	AuthorID  int64
	Content   string
	FromBot   bool
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTypeWelcome         = "welcome"
	WSTypeReminderCreated = "reminder_created"
	WSTypeReminderDeleted = "reminder_deleted"
	WSTypeReminderFired   = "reminder_fired"
)

type ReminderFiredPayload struct {
	Reminder  Reminder  `json:"reminder"`
	FiredAt   time.Time `json:"fired_at"`
	Target    string    `json:"target,omitempty"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
}

type ReminderDeletedPayload struct {
	ID string `json:"id"`
}
