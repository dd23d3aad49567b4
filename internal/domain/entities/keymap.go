package entities

// Action is a navigation or chrome command resolved from a key event.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionFirst
	ActionLast
	ActionToggleFullscreen
	ActionToggleBlackout
	ActionToggleTimer
	ActionResetTimer
	ActionToggleOverview
	ActionToggleHelp
	ActionToggleNotes
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionNext:             "next",
	ActionPrev:             "prev",
	ActionFirst:            "first",
	ActionLast:             "last",
	ActionToggleFullscreen: "fullscreen",
	ActionToggleBlackout:   "blackout",
	ActionToggleTimer:      "timer",
	ActionResetTimer:       "timer_reset",
	ActionToggleOverview:   "overview",
	ActionToggleHelp:       "help",
	ActionToggleNotes:      "notes",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ActionForKey maps a keyboard event to its action. Space with shift held
// walks backwards, matching the usual presentation convention. Unknown keys
// map to ActionNone.
func ActionForKey(key string, shift bool) Action {
	switch key {
	case "ArrowRight", "PageDown", "Enter":
		return ActionNext
	case " ", "Spacebar":
		if shift {
			return ActionPrev
		}
		return ActionNext
	case "ArrowLeft", "PageUp", "Backspace":
		return ActionPrev
	case "Home":
		return ActionFirst
	case "End":
		return ActionLast
	case "f", "F":
		return ActionToggleFullscreen
	case "b", "B", ".":
		return ActionToggleBlackout
	case "t", "T":
		return ActionToggleTimer
	case "r", "R":
		return ActionResetTimer
	case "o", "O":
		return ActionToggleOverview
	case "?":
		return ActionToggleHelp
	case "n", "N":
		return ActionToggleNotes
	}
	return ActionNone
}
