package reminders

import (
	"context"
	"rabbit-bot/models"
	"strings"
)

// Deleter removes reminders by id; *Service satisfies it.
type Deleter interface {
	Delete(ctx context.Context, id string) (bool, error)
}

type Resolution int

const (
	// Ignored reactions are not meant for the bot and get no reply.
	Ignored Resolution = iota
	Forgotten
	NotFound
)

// Resolver turns a marker reaction on a listing message into a deletion.
type Resolver struct {
	deleter Deleter
}

func NewResolver(d Deleter) *Resolver {
	return &Resolver{deleter: d}
}

// Resolve never trusts more than the text in front of it: an edited or
// stale listing that no longer decodes is treated as NotFound.
func (r *Resolver) Resolve(ctx context.Context, rx models.IncomingReaction) (Resolution, error) {
	if rx.ByBot || !rx.AuthoredByBot {
		return Ignored, nil
	}
	position, ok := MarkerIndex(rx.Emoji)
	if !ok {
		return Ignored, nil
	}
	if !strings.HasPrefix(rx.MessageText, ListingHeader) {
		return Ignored, nil
	}

	id, ok := DecodeTagAt(rx.MessageText, position)
	if !ok {
		return NotFound, nil
	}
	deleted, err := r.deleter.Delete(ctx, id)
	if err != nil {
		return NotFound, err
	}
	if !deleted {
		return NotFound, nil
	}
	return Forgotten, nil
}
