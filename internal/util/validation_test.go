package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUUID(t *testing.T) {
	t.Run("accepts lowercase v4 UUID", func(t *testing.T) {
		assert.True(t, IsValidUUID("a2b8c7de-1f2a-4b3c-9d4e-5f6a7b8c9d0e"))
	})

	t.Run("rejects empty string", func(t *testing.T) {
		assert.False(t, IsValidUUID(""))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		assert.False(t, IsValidUUID("not-a-uuid"))
		assert.False(t, IsValidUUID("a2b8c7de1f2a4b3c9d4e5f6a7b8c9d0e"))
	})
}

func TestTruncate(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello", 10))
	})

	t.Run("long strings are cut to max", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello world", 5))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		assert.Equal(t, "日本語", Truncate("日本語テスト", 3))
	})

	t.Run("exact length is untouched", func(t *testing.T) {
		assert.Equal(t, "abc", Truncate("abc", 3))
	})
}

func TestSanitizeTopics(t *testing.T) {
	t.Run("trims and drops empties", func(t *testing.T) {
		topics := SanitizeTopics([]string{" Go ", "", "  ", "SQL"}, 5, 50)
		assert.Equal(t, []string{"Go", "SQL"}, topics)
	})

	t.Run("caps the number of topics", func(t *testing.T) {
		topics := SanitizeTopics([]string{"a", "b", "c", "d"}, 2, 50)
		assert.Equal(t, []string{"a", "b"}, topics)
	})

	t.Run("caps topic length", func(t *testing.T) {
		topics := SanitizeTopics([]string{strings.Repeat("x", 100)}, 5, 50)
		assert.Len(t, topics[0], 50)
	})

	t.Run("nil input yields empty slice", func(t *testing.T) {
		assert.Empty(t, SanitizeTopics(nil, 5, 50))
	})
}
