package entities

// Settings holds the process-wide presentation toggles. They persist in the
// durable settings store, are loaded once at startup, and change only
// through explicit toggle actions.
type Settings struct {
	// TrustedHTML allows the Custom layout to pass authored markup through
	// (sanitized) instead of escaping it.
	TrustedHTML bool `json:"trustedHTML"`

	NotesVisible        bool `json:"notesVisible"`
	TimerVisible        bool `json:"timerVisible"`
	SlideNumbersVisible bool `json:"slideNumbersVisible"`

	// AssetsBaseHref is the base path relative asset references resolve
	// under. Defaults to "assets".
	AssetsBaseHref string `json:"assetsBaseHref"`
}

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() Settings {
	return Settings{AssetsBaseHref: "assets"}
}
