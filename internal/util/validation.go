package util

import (
	"regexp"
	"strings"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// Truncate limits s to at most max characters (by rune, not byte, so
// multi-byte input is never cut mid-character).
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// SanitizeTopics trims, drops empties, and bounds both the number of topics
// and the length of each one.
func SanitizeTopics(topics []string, maxTopics, maxChars int) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, Truncate(t, maxChars))
		if len(out) == maxTopics {
			break
		}
	}
	return out
}
