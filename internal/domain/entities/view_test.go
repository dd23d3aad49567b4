package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveViewState(t *testing.T) {
	deck := Deck{Slides: []Slide{
		{LayoutKey: "Title Slide", Fields: Fields{"notes": "open strong"}},
		{LayoutKey: "Quote"},
		{LayoutKey: "Summary"},
	}}

	t.Run("first slide", func(t *testing.T) {
		vs := DeriveViewState(&deck, 0, 0, false)
		assert.Equal(t, "1 / 3", vs.Counter)
		assert.Equal(t, "0%", vs.ProgressWidth)
		assert.Equal(t, "open strong", vs.Notes)
		assert.Equal(t, "1", vs.Fragment)
	})

	t.Run("middle slide", func(t *testing.T) {
		vs := DeriveViewState(&deck, 1, 90*time.Second, true)
		assert.Equal(t, "2 / 3", vs.Counter)
		assert.Equal(t, "50%", vs.ProgressWidth)
		assert.Equal(t, "01:30", vs.TimerLabel)
		assert.True(t, vs.TimerRunning)
	})

	t.Run("last slide reaches full width", func(t *testing.T) {
		vs := DeriveViewState(&deck, 2, 0, false)
		assert.Equal(t, "100%", vs.ProgressWidth)
	})

	t.Run("single slide deck pins progress to zero", func(t *testing.T) {
		single := Deck{Slides: []Slide{{}}}
		vs := DeriveViewState(&single, 0, 0, false)
		assert.Equal(t, "0%", vs.ProgressWidth)
		assert.Equal(t, "1 / 1", vs.Counter)
	})
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		index    int
		ok       bool
	}{
		{name: "plain number", fragment: "3", index: 2, ok: true},
		{name: "with hash", fragment: "#1", index: 0, ok: true},
		{name: "zero rejected", fragment: "0", ok: false},
		{name: "negative rejected", fragment: "-2", ok: false},
		{name: "non-numeric", fragment: "intro", ok: false},
		{name: "empty", fragment: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := ParseFragment(tt.fragment)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.index, idx)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected string
	}{
		{name: "zero", elapsed: 0, expected: "00:00"},
		{name: "seconds only", elapsed: 42 * time.Second, expected: "00:42"},
		{name: "minutes spill", elapsed: 5*time.Minute + 7*time.Second, expected: "05:07"},
		{name: "over an hour", elapsed: 61 * time.Minute, expected: "61:00"},
		{name: "negative clamps", elapsed: -time.Second, expected: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatClock(tt.elapsed))
		})
	}
}
