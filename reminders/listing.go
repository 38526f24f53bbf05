package reminders

import (
	"fmt"
	"rabbit-bot/models"
	"regexp"
	"strings"
)

// The listing message is the only record of which reminder sits at which
// position: ids are embedded as spoilers and recovered by position when a
// reaction arrives. Changing the line format breaks older listings.
const (
	ListingHeader = "**Reminders for this channel** 🐇"
	ListingFooter = "React with a number to forget that reminder."
	EmptyListing  = "There are no reminders in this channel. 🐇"

	// OverflowPosition is the marker index shared by every position from 10 on.
	OverflowPosition = 10

	dueLayout = "2006-01-02 15:04 UTC"
)

// Markers are the keycap emoji used as position markers, 0-9 plus overflow.
var Markers = []string{
	"0\ufe0f\u20e3",
	"1\ufe0f\u20e3",
	"2\ufe0f\u20e3",
	"3\ufe0f\u20e3",
	"4\ufe0f\u20e3",
	"5\ufe0f\u20e3",
	"6\ufe0f\u20e3",
	"7\ufe0f\u20e3",
	"8\ufe0f\u20e3",
	"9\ufe0f\u20e3",
	"#\ufe0f\u20e3",
}

var tagPattern = regexp.MustCompile(`\|\|([^|\s]+)\|\|`)

// Marker returns the marker emoji for a zero-based list position.
func Marker(position int) string {
	if position >= OverflowPosition {
		return Markers[OverflowPosition]
	}
	return Markers[position]
}

// MarkerIndex maps a reaction emoji back to its marker index. Clients do not
// always send the variation selector, so it is ignored when comparing.
func MarkerIndex(emoji string) (int, bool) {
	emoji = stripVariation(emoji)
	for i, m := range Markers {
		if stripVariation(m) == emoji {
			return i, true
		}
	}
	return 0, false
}

func stripVariation(s string) string {
	return strings.ReplaceAll(s, "\ufe0f", "")
}

// RenderChannelView lists the channel's reminders in store order.
func RenderChannelView(channel int64, reminders []models.Reminder) string {
	var b strings.Builder
	position := 0
	for _, r := range reminders {
		if r.Channel != channel {
			continue
		}
		if position == 0 {
			b.WriteString(ListingHeader)
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s `%s` %s: %s ||%s||\n",
			Marker(position),
			r.DueAt.UTC().Format(dueLayout),
			everyDays(r.IntervalDays),
			escapeMessage(r.Message),
			r.ID,
		)
		position++
	}
	if position == 0 {
		return EmptyListing
	}
	b.WriteString(ListingFooter)
	return b.String()
}

// DecodeTagAt returns the id at a zero-based position in a rendered listing.
func DecodeTagAt(text string, position int) (string, bool) {
	if position < 0 {
		return "", false
	}
	matches := tagPattern.FindAllStringSubmatch(text, position+2)
	if position >= len(matches) {
		return "", false
	}
	return matches[position][1], true
}

// CountTags returns how many reminder ids a rendered listing carries.
func CountTags(text string) int {
	return len(tagPattern.FindAllStringIndex(text, -1))
}

func everyDays(n int) string {
	if n == 1 {
		return "every day"
	}
	return fmt.Sprintf("every %d days", n)
}

// escapeMessage keeps user text on one line and out of the spoiler syntax.
func escapeMessage(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
