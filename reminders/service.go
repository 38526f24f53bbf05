package reminders

import (
	"context"
	"rabbit-bot/models"
	"rabbit-bot/store"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher receives reminder events for the operator feed.
type Publisher interface {
	Publish(msg models.WSMessage)
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.WSMessage) {}

type Service struct {
	store  *store.Store
	events Publisher

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(s *store.Store, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{store: s, events: events, Now: time.Now}
}

// ParseInterval reads the day count of a remind command.
func ParseInterval(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || !models.ValidInterval(n) {
		return 0, models.ErrInvalidInterval
	}
	return n, nil
}

// Create adds a reminder that first fires intervalDays from now.
func (s *Service) Create(ctx context.Context, channel, author int64, intervalDays int, message string) (models.Reminder, error) {
	if !models.ValidInterval(intervalDays) {
		return models.Reminder{}, models.ErrInvalidInterval
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Reminder{}, models.ErrEmptyMessage
	}

	reminder := models.Reminder{
		Channel:      channel,
		Author:       &author,
		DueAt:        s.Now().UTC().AddDate(0, 0, intervalDays),
		IntervalDays: intervalDays,
		Message:      message,
	}

	err := s.store.Update(ctx, func(rs []models.Reminder) ([]models.Reminder, bool, error) {
		reminder.ID = newID(rs)
		return append(rs, reminder), true, nil
	})
	if err != nil {
		return models.Reminder{}, err
	}

	log.Info().Str("component", "reminders").Str("id", reminder.ID).Int64("channel", channel).
		Int("interval_days", intervalDays).Msg("reminder created")
	s.events.Publish(models.WSMessage{Type: models.WSTypeReminderCreated, Payload: reminder})
	return reminder, nil
}

func newID(existing []models.Reminder) string {
	for {
		id := uuid.New().String()
		taken := false
		for _, r := range existing {
			if r.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Delete removes the reminder with the given id and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	removed := false
	err := s.store.Update(ctx, func(rs []models.Reminder) ([]models.Reminder, bool, error) {
		kept := rs[:0]
		for _, r := range rs {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		return kept, removed, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		log.Info().Str("component", "reminders").Str("id", id).Msg("reminder deleted")
		s.events.Publish(models.WSMessage{
			Type:    models.WSTypeReminderDeleted,
			Payload: models.ReminderDeletedPayload{ID: id},
		})
	}
	return removed, nil
}

// ListForChannel returns the channel's reminders in store order, due or not.
func (s *Service) ListForChannel(ctx context.Context, channel int64) ([]models.Reminder, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	reminders := []models.Reminder{}
	for _, r := range all {
		if r.Channel == channel {
			reminders = append(reminders, r)
		}
	}
	return reminders, nil
}

func (s *Service) All(ctx context.Context) ([]models.Reminder, error) {
	return s.store.Load(ctx)
}

// RenderChannel loads the channel's reminders and renders the listing message.
// The count is the number of reminder tags in the rendered text.
func (s *Service) RenderChannel(ctx context.Context, channel int64) (string, int, error) {
	reminders, err := s.ListForChannel(ctx, channel)
	if err != nil {
		return "", 0, err
	}
	text := RenderChannelView(channel, reminders)
	return text, CountTags(text), nil
}
