package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"rabbit-bot/models"
	"strconv"
	"strings"
	"time"
)

// record is the on-disk shape of a reminder. It accepts the looser forms
// written by earlier versions of the bot.
type record struct {
	ID           string       `json:"id"`
	Channel      int64        `json:"channel"`
	Author       *int64       `json:"author,omitempty"`
	DueAt        string       `json:"due_at"`
	IntervalDays intervalDays `json:"interval_days"`
	Message      string       `json:"message"`
}

// intervalDays decodes from either a JSON number or a numeric string.
type intervalDays int

func (d *intervalDays) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("interval_days %s: %w", data, err)
	}
	*d = intervalDays(n)
	return nil
}

var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseDue reads any accepted layout and returns the instant in UTC. Naive
// timestamps are taken to be UTC already.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("due_at %q is not an ISO-8601 timestamp", s)
}

// formatDue refuses times whose year does not fit in four digits, since
// parseDue could not read them back.
func formatDue(t time.Time) (string, error) {
	t = t.UTC()
	if y := t.Year(); y < 0 || y > 9999 {
		return "", fmt.Errorf("due_at %s is outside years 0000-9999", t.Format(time.RFC3339))
	}
	return t.Format(time.RFC3339Nano), nil
}

// EncodeList serializes reminders in store order. It fails rather than write
// a record DecodeList would reject.
func EncodeList(reminders []models.Reminder) ([]byte, error) {
	records := make([]record, 0, len(reminders))
	for _, r := range reminders {
		due, err := formatDue(r.DueAt)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		records = append(records, record{
			ID:           r.ID,
			Channel:      r.Channel,
			Author:       r.Author,
			DueAt:        due,
			IntervalDays: intervalDays(r.IntervalDays),
			Message:      r.Message,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeList parses a stored reminder list. Any malformed record fails the
// whole list with models.ErrCorruptStore. Due times come back in UTC whatever
// zone they were written in, so a round trip keeps the instant, not the zone.
func DecodeList(data []byte) ([]models.Reminder, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Reminder{}, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrCorruptStore, err)
	}

	reminders := make([]models.Reminder, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", models.ErrCorruptStore, i)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", models.ErrCorruptStore, rec.ID)
		}
		seen[rec.ID] = true

		if rec.IntervalDays < 1 {
			return nil, fmt.Errorf("%w: record %s has interval %d", models.ErrCorruptStore, rec.ID, rec.IntervalDays)
		}
		due, err := parseDue(rec.DueAt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %s: %w", models.ErrCorruptStore, rec.ID, err)
		}

		reminders = append(reminders, models.Reminder{
			ID:           rec.ID,
			Channel:      rec.Channel,
			Author:       rec.Author,
			DueAt:        due,
			IntervalDays: int(rec.IntervalDays),
			Message:      rec.Message,
		})
	}
	return reminders, nil
}
