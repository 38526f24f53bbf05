package commands

import (
	"strings"
	"unicode"
)

// Invocation is a prefixed chat command, e.g. "!remind 3 water the plants".
type Invocation struct {
	Name  string // lower-cased, without the prefix
	Input string // everything after the name, trimmed
	Args  []string
}

// Parse splits content into a command invocation. It reports false when the
// content does not start with prefix followed by a command name.
func Parse(content, prefix string) (Invocation, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Invocation{}, false
	}
	body := content[len(prefix):]
	if body == "" || unicode.IsSpace(rune(body[0])) {
		return Invocation{}, false
	}

	name, input := cutWord(body)
	return Invocation{
		Name:  strings.ToLower(name),
		Input: input,
		Args:  strings.Fields(input),
	}, true
}

// Arg returns the n-th argument (0-based), or "" if there are fewer.
func (i Invocation) Arg(n int) string {
	if n < 0 || n >= len(i.Args) {
		return ""
	}
	return i.Args[n]
}

// Rest returns the input after the first n arguments with its inner spacing
// left as typed.
func (i Invocation) Rest(n int) string {
	rest := i.Input
	for ; n > 0 && rest != ""; n-- {
		_, rest = cutWord(rest)
	}
	return rest
}

func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}
