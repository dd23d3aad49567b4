package entities

import "time"

// Message tags carried in cross-document payloads so embedded documents can
// tell navigation forwards and theme pushes apart from unrelated traffic.
const (
	NavMessageTag   = "__pptNav"
	ThemeMessageTag = "__mmTheme"
)

// NavIntent is a key event forwarded from an embedded document or a client
// shell. The host maps it to a navigation action; unrecognized keys are
// ignored.
type NavIntent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shiftKey"`
	Alt   bool   `json:"altKey"`
	Ctrl  bool   `json:"ctrlKey"`
}

// UpdateEvent is a state change fanned out to connected clients.
type UpdateEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Update event types.
const (
	EventSlideChanged   = "slide_changed"
	EventTimerChanged   = "timer_changed"
	EventThemeChanged   = "theme_changed"
	EventSettingsSaved  = "settings_changed"
	EventDeckReplaced   = "deck_replaced"
	EventLibraryChanged = "library_changed"
)
