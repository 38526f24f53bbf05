package handlers_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"rabbit-bot/reminders"
	"rabbit-bot/store"

	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	target string
	text   string
	id     string
}

type reaction struct {
	target    string
	messageID string
	emoji     string
}

type fakeChat struct {
	mu        sync.Mutex
	sent      []sentMessage
	reactions []reaction
}

func (c *fakeChat) Send(ctx context.Context, target, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := fmt.Sprintf("m%d", len(c.sent)+1)
	c.sent = append(c.sent, sentMessage{target: target, text: text, id: id})
	return id, nil
}

func (c *fakeChat) React(ctx context.Context, target, messageID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reactions = append(c.reactions, reaction{target: target, messageID: messageID, emoji: emoji})
	return nil
}

func (c *fakeChat) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		out = append(out, m.text)
	}
	return out
}

func newService(t *testing.T) *reminders.Service {
	t.Helper()
	backend, err := store.NewFile(filepath.Join(t.TempDir(), "reminders.json"))
	require.NoError(t, err)
	return reminders.NewService(store.New(backend), nil)
}
