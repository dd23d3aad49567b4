package entities

import "strings"

// Slide represents a single slide record in a deck: a layout key selecting
// the renderer plus an open field bag whose shape depends on the layout.
type Slide struct {
	// LayoutKey identifies which registered renderer handles this slide.
	// It may reference a renderer that does not exist; dispatch falls back
	// to the default renderer rather than failing.
	LayoutKey string `json:"layout_key" yaml:"layout_key"`

	// Fields is the layout-dependent field bag. It is never validated
	// against a template schema at render time.
	Fields Fields `json:"fields" yaml:"fields"`
}

// Layout returns the trimmed layout key used for registry lookup.
func (s *Slide) Layout() string {
	return strings.TrimSpace(s.LayoutKey)
}

// Title returns the slide title field, or empty.
func (s *Slide) Title() string {
	return s.Fields.Str("title")
}

// Notes returns the speaker notes field, or empty.
func (s *Slide) Notes() string {
	return s.Fields.Str("notes")
}

// Fields is an untyped per-slide field bag. All accessors default-coalesce:
// missing or wrong-typed fields yield zero values, never errors, so a
// malformed deck degrades to blank regions instead of a broken render pass.
type Fields map[string]any

// Str returns the string value for key, or empty.
func (f Fields) Str(key string) string {
	if f == nil {
		return ""
	}
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// StrOr returns the string value for key, or def when absent or empty.
func (f Fields) StrOr(key, def string) string {
	if s := f.Str(key); s != "" {
		return s
	}
	return def
}

// Truthy reports whether the value for key is present and truthy in the
// loose sense deck authors expect: true, a non-empty string, or a non-zero
// number. Used for flags like fullbleed and pannable.
func (f Fields) Truthy(key string) bool {
	if f == nil {
		return false
	}
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// BoolOr returns the boolean value for key, or def when the field is absent
// or not a boolean. Video flags rely on this: autoplay defaults to true and
// only an explicit false disables it.
func (f Fields) BoolOr(key string, def bool) bool {
	if f == nil {
		return def
	}
	if b, ok := f[key].(bool); ok {
		return b
	}
	return def
}

// List returns the value for key coerced to a sequence: nil/absent becomes
// empty, a list passes through, and any scalar is wrapped in a one-element
// sequence.
func (f Fields) List(key string) []any {
	if f == nil {
		return nil
	}
	return EnsureList(f[key])
}

// Strings returns the value for key as a string sequence, skipping
// non-string elements.
func (f Fields) Strings(key string) []string {
	items := f.List(key)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the value for key as a nested field bag, or nil.
func (f Fields) Map(key string) Fields {
	if f == nil {
		return nil
	}
	switch v := f[key].(type) {
	case map[string]any:
		return Fields(v)
	case Fields:
		return v
	default:
		return nil
	}
}

// Maps returns the value for key as a sequence of nested field bags,
// skipping elements that are not mappings.
func (f Fields) Maps(key string) []Fields {
	items := f.List(key)
	out := make([]Fields, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case map[string]any:
			out = append(out, Fields(v))
		case Fields:
			out = append(out, v)
		}
	}
	return out
}

// EnsureList wraps a scalar in a single-element sequence, passes sequences
// through, and turns nil into an empty sequence.
func EnsureList(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []any:
		return vv
	default:
		return []any{v}
	}
}
