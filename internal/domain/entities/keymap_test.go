package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionForKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		shift    bool
		expected Action
	}{
		{name: "arrow right", key: "ArrowRight", expected: ActionNext},
		{name: "page down", key: "PageDown", expected: ActionNext},
		{name: "enter", key: "Enter", expected: ActionNext},
		{name: "space advances", key: " ", expected: ActionNext},
		{name: "shift space retreats", key: " ", shift: true, expected: ActionPrev},
		{name: "arrow left", key: "ArrowLeft", expected: ActionPrev},
		{name: "backspace", key: "Backspace", expected: ActionPrev},
		{name: "home", key: "Home", expected: ActionFirst},
		{name: "end", key: "End", expected: ActionLast},
		{name: "fullscreen", key: "f", expected: ActionToggleFullscreen},
		{name: "blackout letter", key: "b", expected: ActionToggleBlackout},
		{name: "blackout dot", key: ".", expected: ActionToggleBlackout},
		{name: "timer toggle", key: "t", expected: ActionToggleTimer},
		{name: "timer reset", key: "r", expected: ActionResetTimer},
		{name: "overview", key: "o", expected: ActionToggleOverview},
		{name: "help", key: "?", expected: ActionToggleHelp},
		{name: "notes", key: "n", expected: ActionToggleNotes},
		{name: "unknown key ignored", key: "x", expected: ActionNone},
		{name: "escape ignored", key: "Escape", expected: ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ActionForKey(tt.key, tt.shift))
		})
	}
}
