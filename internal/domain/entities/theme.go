package entities

import (
	"errors"
	"strings"
)

// Theme is a named set of style variables applied process-wide and
// propagated into embedded documents. Variable names use the host's CSS
// custom-property spelling ("--bg", "--fg", ...) plus an optional
// "fontFamily" hint.
type Theme struct {
	ID   string            `json:"id" yaml:"id"`
	Name string            `json:"name" yaml:"name"`
	Vars map[string]string `json:"vars" yaml:"vars"`
}

// Validate ensures the theme has the fields required for persistence.
func (t *Theme) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("theme id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("theme name is required")
	}
	return nil
}

// Var returns a theme variable, or def when unset.
func (t *Theme) Var(name, def string) string {
	if v, ok := t.Vars[name]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// FontFamily returns the optional font-family hint.
func (t *Theme) FontFamily() string {
	return t.Var("fontFamily", "")
}

// Palette resolves the theme's working colors with the same defaults the
// embedded-document injection uses.
func (t *Theme) Palette() Palette {
	return Palette{
		Background: t.Var("--bg", "#ffffff"),
		Card:       t.Var("--card", "#ffffff"),
		Foreground: t.Var("--fg", "#121212"),
		Accent:     t.Var("--accent", "#0aa3b8"),
		Muted:      t.Var("--muted", "#808080"),
		Line:       t.Var("--line", "#d9dee5"),
	}
}

// Palette is a theme's resolved color set.
type Palette struct {
	Background string
	Card       string
	Foreground string
	Accent     string
	Muted      string
	Line       string
}

// ThemeBroadcast is the payload sent to every open embedded document when
// the active theme changes. All values are color strings except IsDark.
type ThemeBroadcast struct {
	Background string `json:"bg"`
	Card       string `json:"card"`
	Foreground string `json:"fg"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
	IsDark     bool   `json:"isDark"`
}

// Broadcast derives the cross-document theme payload. The dark flag is
// classified from the card color, falling back to the background, using the
// broadcast threshold (see IsDarkColor).
func (t *Theme) Broadcast() ThemeBroadcast {
	p := t.Palette()
	probe := t.Var("--card", "")
	if probe == "" {
		probe = p.Background
	}
	return ThemeBroadcast{
		Background: p.Background,
		Card:       p.Card,
		Foreground: p.Foreground,
		Accent:     p.Accent,
		Muted:      p.Muted,
		IsDark:     IsDarkColor(probe),
	}
}
