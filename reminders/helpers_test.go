package reminders_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rabbit-bot/models"
	"rabbit-bot/store"

	"github.com/stretchr/testify/require"
)

type delivery struct {
	target string
	text   string
}

type fakeMessenger struct {
	mu         sync.Mutex
	deliveries []delivery
	gone       map[string]bool  // channels that no longer resolve
	failing    map[string]error // send failures by target
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{gone: map[string]bool{}, failing: map[string]error{}}
}

func (m *fakeMessenger) Send(ctx context.Context, target, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing[target]; err != nil {
		return "", err
	}
	m.deliveries = append(m.deliveries, delivery{target: target, text: text})
	return "msg-" + target, nil
}

func (m *fakeMessenger) ResolveChannel(ctx context.Context, channelID string) (string, bool) {
	if m.gone[channelID] {
		return "", false
	}
	return channelID, true
}

func (m *fakeMessenger) ResolveUser(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("no user")
	}
	return "dm-" + userID, nil
}

func (m *fakeMessenger) sent() []delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]delivery(nil), m.deliveries...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.WSMessage
}

func (p *recordingPublisher) Publish(msg models.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// countingBackend wraps a backend and counts writes.
type countingBackend struct {
	store.Backend
	writes int
}

func (b *countingBackend) Replace(ctx context.Context, reminders []models.Reminder) error {
	b.writes++
	return b.Backend.Replace(ctx, reminders)
}

func newTestStore(t *testing.T) (*store.Store, *countingBackend) {
	t.Helper()
	file, err := store.NewFile(filepath.Join(t.TempDir(), "reminders.json"))
	require.NoError(t, err)
	backend := &countingBackend{Backend: file}
	return store.New(backend), backend
}

// blockingBackend parks the first Replace until release is closed.
type blockingBackend struct {
	store.Backend
	once     sync.Once
	entered  chan struct{}
	release  chan struct{}
	replaced chan struct{}
}

func newBlockingBackend(inner store.Backend) *blockingBackend {
	return &blockingBackend{
		Backend:  inner,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		replaced: make(chan struct{}),
	}
}

func (b *blockingBackend) Replace(ctx context.Context, reminders []models.Reminder) error {
	first := false
	b.once.Do(func() {
		first = true
		close(b.entered)
		<-b.release
	})
	err := b.Backend.Replace(ctx, reminders)
	if first {
		close(b.replaced)
	}
	return err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
