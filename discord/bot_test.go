package discord

import (
	"testing"

	"rabbit-bot/reminders"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botID = "900"

func TestIncomingMessage(t *testing.T) {
	msg, ok := incomingMessage(&discordgo.Message{
		ID:        "1",
		ChannelID: "42",
		Content:   "!hello",
		Author:    &discordgo.User{ID: "7"},
	}, botID)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChannelID)
	assert.Equal(t, int64(7), msg.AuthorID)
	assert.Equal(t, "!hello", msg.Content)
	assert.False(t, msg.FromBot)

	own, ok := incomingMessage(&discordgo.Message{ChannelID: "42", Author: &discordgo.User{ID: botID}}, botID)
	require.True(t, ok)
	assert.True(t, own.FromBot)

	other, ok := incomingMessage(&discordgo.Message{ChannelID: "42", Author: &discordgo.User{ID: "8", Bot: true}}, botID)
	require.True(t, ok)
	assert.True(t, other.FromBot)

	_, ok = incomingMessage(&discordgo.Message{ChannelID: "general", Author: &discordgo.User{ID: "7"}}, botID)
	assert.False(t, ok)
	_, ok = incomingMessage(&discordgo.Message{ChannelID: "42"}, botID)
	assert.False(t, ok)
}

func TestIncomingReaction(t *testing.T) {
	listing := &discordgo.Message{
		ID:      "55",
		Content: reminders.ListingHeader + "\n",
		Author:  &discordgo.User{ID: botID},
	}

	rx, ok := incomingReaction(&discordgo.MessageReaction{
		UserID:    "7",
		MessageID: "55",
		ChannelID: "42",
		Emoji:     discordgo.Emoji{Name: reminders.Markers[1]},
	}, listing, botID)
	require.True(t, ok)
	assert.Equal(t, int64(42), rx.ChannelID)
	assert.Equal(t, int64(7), rx.UserID)
	assert.Equal(t, reminders.Markers[1], rx.Emoji)
	assert.True(t, rx.AuthoredByBot)
	assert.False(t, rx.ByBot)
	assert.Equal(t, listing.Content, rx.MessageText)

	seeded, ok := incomingReaction(&discordgo.MessageReaction{
		UserID: botID, MessageID: "55", ChannelID: "42",
		Emoji: discordgo.Emoji{Name: reminders.Markers[0]},
	}, listing, botID)
	require.True(t, ok)
	assert.True(t, seeded.ByBot)

	foreign, ok := incomingReaction(&discordgo.MessageReaction{
		UserID: "7", MessageID: "56", ChannelID: "42",
	}, &discordgo.Message{Author: &discordgo.User{ID: "8"}}, botID)
	require.True(t, ok)
	assert.False(t, foreign.AuthoredByBot)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New("", "Minecraft")
	assert.Error(t, err)

	b, err := New("abc", "Minecraft")
	require.NoError(t, err)
	assert.Equal(t, intents, b.session.Identify.Intents)
}
