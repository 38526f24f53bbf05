package models

// IncomingReaction is a reaction added to a message, as seen by the bot.
type IncomingReaction struct {
	ChannelID     int64
	MessageID     string
	Emoji         string
	UserID        int64
	ByBot         bool   // the reaction was added by the bot itself
	MessageText   string // content of the reacted-to message
	AuthoredByBot bool   // the reacted-to message was sent by the bot
}
