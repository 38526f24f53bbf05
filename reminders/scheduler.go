package reminders

import (
	"context"
	"errors"
	"fmt"
	"rabbit-bot/models"
	"rabbit-bot/store"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultTickInterval = 60 * time.Second

// Messenger is the part of the chat platform the scheduler delivers through.
type Messenger interface {
	Send(ctx context.Context, target, text string) (string, error)
	// ResolveChannel reports whether the channel still exists and returns its send target.
	ResolveChannel(ctx context.Context, channelID string) (string, bool)
	// ResolveUser returns a direct-message target for the user.
	ResolveUser(ctx context.Context, userID string) (string, error)
}

var errNoTarget = errors.New("channel is gone and reminder has no author")

// Scheduler fires due reminders on a fixed period.
type Scheduler struct {
	store     *store.Store
	messenger Messenger
	events    Publisher
	period    time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScheduler(s *store.Store, m Messenger, events Publisher, period time.Duration) *Scheduler {
	if events == nil {
		events = nopPublisher{}
	}
	if period <= 0 {
		period = DefaultTickInterval
	}
	return &Scheduler{store: s, messenger: m, events: events, period: period, Now: time.Now}
}

// Start runs Tick every period until Stop. A tick that overruns the period
// makes the next one skip rather than overlap.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return
	}

	logger := cronLogger{}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s.cron.Schedule(cron.Every(s.period), cron.FuncJob(func() {
		// Ticks are never interrupted mid-write; shutdown waits for them instead.
		if _, err := s.Tick(context.Background()); err != nil {
			log.Error().Err(err).Str("component", "scheduler").Msg("tick failed")
		}
	}))
	s.cron.Start()
	log.Info().Str("component", "scheduler").Dur("period", s.period).Msg("reminder scheduler started")
}

// Stop halts the timer and waits for an in-flight tick to finish, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		log.Info().Str("component", "scheduler").Msg("reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick fires every due reminder once and returns how many fired. The
// rescheduled list is persisted before delivery, so a failed write never
// leads to a second delivery on the next tick.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	now := s.Now().UTC()

	var due []models.Reminder
	err := s.store.Update(ctx, func(rs []models.Reminder) ([]models.Reminder, bool, error) {
		for i := range rs {
			if !rs[i].IsDue(now) {
				continue
			}
			fired := rs[i]
			rs[i].Advance()
			if rs[i].IsDue(now) {
				log.Debug().Str("component", "scheduler").Str("id", fired.ID).Time("next_due", rs[i].DueAt).
					Msg("reminder still overdue, fires again next tick")
			}
			due = append(due, fired)
		}
		return rs, len(due) > 0, nil
	})
	if err != nil {
		return 0, err
	}

	for _, r := range due {
		s.deliver(ctx, r, now)
	}
	return len(due), nil
}

func (s *Scheduler) deliver(ctx context.Context, r models.Reminder, now time.Time) {
	payload := models.ReminderFiredPayload{Reminder: r, FiredAt: now}
	defer func() {
		s.events.Publish(models.WSMessage{Type: models.WSTypeReminderFired, Payload: payload})
	}()

	target, err := s.resolveTarget(ctx, r)
	if err != nil {
		payload.Error = err.Error()
		log.Error().Err(err).Str("component", "scheduler").Str("id", r.ID).Msg("no delivery target")
		return
	}
	payload.Target = target

	if _, err := s.messenger.Send(ctx, target, r.Message); err != nil {
		payload.Error = err.Error()
		log.Error().Err(err).Str("component", "scheduler").Str("id", r.ID).Str("target", target).
			Msg("reminder delivery failed")
		return
	}
	payload.Delivered = true
	log.Info().Str("component", "scheduler").Str("id", r.ID).Str("target", target).Msg("reminder delivered")
}

// resolveTarget prefers the reminder's channel and falls back to a direct
// message to its author.
func (s *Scheduler) resolveTarget(ctx context.Context, r models.Reminder) (string, error) {
	if target, ok := s.messenger.ResolveChannel(ctx, r.ChannelTarget()); ok {
		return target, nil
	}
	author, ok := r.AuthorTarget()
	if !ok {
		return "", fmt.Errorf("channel %d: %w", r.Channel, errNoTarget)
	}
	target, err := s.messenger.ResolveUser(ctx, author)
	if err != nil {
		return "", fmt.Errorf("direct message to %s: %w", author, err)
	}
	return target, nil
}

// cronLogger routes the cron library's logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}
