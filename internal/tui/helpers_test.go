package tui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel...", truncate("hello world", 6))
	assert.Equal(t, "he", truncate("hello", 2))
	assert.Equal(t, "", truncate("hello", 0))
	// Rune-aware: no mid-codepoint cuts.
	assert.Equal(t, "Херсо...", truncate("Херсонес Таврический", 8))
}

func TestRatingStars(t *testing.T) {
	assert.Equal(t, "★★★★★", ratingStars(5))
	assert.Equal(t, "★★★★☆", ratingStars(4.2))
	assert.Equal(t, "★★★★★", ratingStars(4.6))
	assert.Equal(t, "☆☆☆☆☆", ratingStars(0))
	assert.Equal(t, "★★★★★", ratingStars(9))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 dive", pluralize(1, "dive"))
	assert.Equal(t, "3 dives", pluralize(3, "dive"))
	assert.Equal(t, "0 dives", pluralize(0, "dive"))
}

func TestSiteLevelStylesDistinct(t *testing.T) {
	// Each difficulty level carries its own color.
	seen := map[string]bool{}
	for _, s := range []struct {
		level string
		fg    string
	}{
		{"beginner", fmt.Sprint(siteLevelBeginner.GetForeground())},
		{"intermediate", fmt.Sprint(siteLevelInter.GetForeground())},
		{"advanced", fmt.Sprint(siteLevelAdvanced.GetForeground())},
		{"technical", fmt.Sprint(siteLevelTech.GetForeground())},
	} {
		assert.False(t, seen[s.fg], "level %s reuses another level's color", s.level)
		seen[s.fg] = true
	}
}

func TestClampF(t *testing.T) {
	assert.Equal(t, 5.0, clampF(5, 0, 10))
	assert.Equal(t, 0.0, clampF(-1, 0, 10))
	assert.Equal(t, 10.0, clampF(42, 0, 10))
}
