package ports

import (
	"context"
	"time"

	"deckview/internal/domain/entities"
)

// SessionSnapshot is the full presentation state handed to the shell and the
// state endpoint in one read.
type SessionSnapshot struct {
	Index    int                    `json:"index"`
	View     entities.ViewState     `json:"view"`
	Settings entities.Settings      `json:"settings"`
	Theme    entities.Theme         `json:"theme"`
	Blackout bool                   `json:"blackout"`
	Clients  int                    `json:"clients"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// SessionService defines the interface for live presentation state:
// navigation, timer, settings, and the active theme.
type SessionService interface {
	// Snapshot returns the current state in one consistent read.
	Snapshot() SessionSnapshot

	// Deck returns the loaded deck.
	Deck() *entities.Deck

	// ReplaceDeck swaps the deck and clamps the current index into range.
	ReplaceDeck(deck *entities.Deck)

	// GoTo clamps the index into range and moves there. It reports whether
	// the current slide changed.
	GoTo(index int) bool

	// Apply performs a navigation or chrome action. It reports whether any
	// observable state changed.
	Apply(action entities.Action) bool

	// HandleKey maps a forwarded key event to an action and applies it.
	HandleKey(intent entities.NavIntent) bool

	// Timer state and control. Elapsed keeps accumulating across stop and
	// start; Reset zeroes it.
	TimerState() (elapsed time.Duration, running bool)
	StartTimer()
	StopTimer()
	ResetTimer()

	// Settings access. UpdateSettings persists and broadcasts.
	Settings() entities.Settings
	UpdateSettings(s entities.Settings) error

	// Active theme access. SetActiveTheme persists the id and broadcasts
	// the derived theme payload.
	ActiveTheme() entities.Theme
	SetActiveTheme(theme entities.Theme) error
}

// LibraryService defines the interface for the template and theme library.
type LibraryService interface {
	ListTemplates() ([]entities.Template, error)
	SaveTemplate(t entities.Template) (entities.Template, error)
	DeleteTemplate(id string) error
	ExportTemplates() ([]byte, error)
	ImportTemplates(data []byte) ([]entities.Template, error)

	ListThemes() ([]entities.Theme, error)
	SaveTheme(t entities.Theme) (entities.Theme, error)
	DeleteTheme(id string) error
	ExportThemes() ([]byte, error)
	ImportThemes(data []byte) ([]entities.Theme, error)

	// GetTheme returns a stored theme by id, or ErrNotFound.
	GetTheme(id string) (entities.Theme, error)
}

// DeckService defines the interface for loading and importing decks.
type DeckService interface {
	// Load loads a deck from a local path or URL, falling back to the
	// built-in demo deck when src is empty.
	Load(ctx context.Context, src string) (*entities.Deck, error)

	// Import parses an uploaded deck document (JSON or YAML array of
	// slides). Non-array documents are rejected.
	Import(data []byte) (*entities.Deck, error)
}
