package models

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrStoreUnavailable = errors.New("reminder store unavailable")
	ErrCorruptStore     = errors.New("reminder store is corrupt")
	ErrInvalidInterval  = errors.New("interval must be a whole number of days from 1 to 36500")
	ErrEmptyMessage     = errors.New("reminder message is empty")
)

// MaxIntervalDays keeps due dates well inside the four-digit years the
// store format can hold.
const MaxIntervalDays = 36500

// Reminder is a recurring notification. Every reminder repeats; after it fires
// DueAt moves forward by IntervalDays. DueAt is always held in UTC.
type Reminder struct {
	ID           string    `json:"id"`
	Channel      int64     `json:"channel"`
	Author       *int64    `json:"author,omitempty"` // absent in records written by older versions
	DueAt        time.Time `json:"due_at"`
	IntervalDays int       `json:"interval_days"`
	Message      string    `json:"message"`
}

// IsDue reports whether the reminder should fire at now.
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.DueAt.After(now)
}

// Advance moves DueAt forward by exactly one interval.
func (r *Reminder) Advance() {
	r.DueAt = r.DueAt.AddDate(0, 0, max(r.IntervalDays, 1))
}

// ValidInterval reports whether days is an interval a reminder may carry.
func ValidInterval(days int) bool {
	return days >= 1 && days <= MaxIntervalDays
}

// ChannelTarget is the channel id in the form the chat platform expects.
func (r *Reminder) ChannelTarget() string {
	return strconv.FormatInt(r.Channel, 10)
}

// AuthorTarget returns the author's user id, if the record has one.
func (r *Reminder) AuthorTarget() (string, bool) {
	if r.Author == nil {
		return "", false
	}
	return strconv.FormatInt(*r.Author, 10), true
}
