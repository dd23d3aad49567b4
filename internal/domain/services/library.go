package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

var titleCaser = cases.Title(language.English)

// LibraryService manages the durable template and theme collections.
type LibraryService struct {
	templates ports.CollectionStore
	themes    ports.CollectionStore

	broadcaster ports.Broadcaster
	clock       ports.Clock
}

// NewLibraryService creates the library over its two collections.
func NewLibraryService(templates, themes ports.CollectionStore, clock ports.Clock) *LibraryService {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &LibraryService{templates: templates, themes: themes, clock: clock}
}

// SetBroadcaster wires the client fan-out for library change events.
func (l *LibraryService) SetBroadcaster(b ports.Broadcaster) {
	l.broadcaster = b
}

func (l *LibraryService) notify(kind string) {
	if l.broadcaster == nil {
		return
	}
	l.broadcaster.Broadcast(entities.UpdateEvent{
		Type:      entities.EventLibraryChanged,
		Timestamp: l.clock.Now(),
		Data:      map[string]any{"collection": kind},
	})
}

// Seed populates the collections on first run. An empty collection takes
// the whole seed set; a non-empty one only gains seed entries whose id it
// does not already hold. Stored records always win over seed records.
func (l *LibraryService) Seed(templates []entities.Template, themes []entities.Theme) error {
	existing, err := l.templates.All()
	if err != nil {
		return fmt.Errorf("reading templates: %w", err)
	}
	for _, t := range templates {
		if _, ok := existing[t.ID]; ok {
			continue
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if err := l.templates.Put(t.ID, raw); err != nil {
			return fmt.Errorf("seeding template %s: %w", t.ID, err)
		}
	}

	existingThemes, err := l.themes.All()
	if err != nil {
		return fmt.Errorf("reading themes: %w", err)
	}
	for _, t := range themes {
		if _, ok := existingThemes[t.ID]; ok {
			continue
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if err := l.themes.Put(t.ID, raw); err != nil {
			return fmt.Errorf("seeding theme %s: %w", t.ID, err)
		}
	}
	return nil
}

// ListTemplates returns all templates sorted by name.
func (l *LibraryService) ListTemplates() ([]entities.Template, error) {
	records, err := l.templates.All()
	if err != nil {
		return nil, err
	}
	out := make([]entities.Template, 0, len(records))
	for _, raw := range records {
		var t entities.Template
		if err := json.Unmarshal(raw, &t); err != nil {
			continue // skip corrupt records rather than failing the list
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveTemplate inserts or updates a template. A missing id gets generated;
// a missing name is derived from the layout key.
func (l *LibraryService) SaveTemplate(t entities.Template) (entities.Template, error) {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if strings.TrimSpace(t.Name) == "" && t.LayoutKey != "" {
		t.Name = titleCaser.String(t.LayoutKey)
	}
	if err := t.Validate(); err != nil {
		return entities.Template{}, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return entities.Template{}, err
	}
	if err := l.templates.Put(t.ID, raw); err != nil {
		return entities.Template{}, err
	}
	l.notify("templates")
	return t, nil
}

// DeleteTemplate removes a template by id.
func (l *LibraryService) DeleteTemplate(id string) error {
	if err := l.templates.Delete(id); err != nil {
		return err
	}
	l.notify("templates")
	return nil
}

// ExportTemplates serializes the whole collection as an indented JSON
// array, the same shape imports accept.
func (l *LibraryService) ExportTemplates() ([]byte, error) {
	templates, err := l.ListTemplates()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(templates, "", "  ")
}

// ImportTemplates replaces the whole collection from a JSON array. A
// non-array document is rejected before anything is touched.
func (l *LibraryService) ImportTemplates(data []byte) ([]entities.Template, error) {
	var templates []entities.Template
	if err := decodeArray(data, &templates); err != nil {
		return nil, err
	}
	records := make(map[string][]byte, len(templates))
	for i := range templates {
		if strings.TrimSpace(templates[i].ID) == "" {
			templates[i].ID = uuid.NewString()
		}
		if err := templates[i].Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		raw, err := json.Marshal(templates[i])
		if err != nil {
			return nil, err
		}
		records[templates[i].ID] = raw
	}
	if err := l.templates.ReplaceAll(records); err != nil {
		return nil, err
	}
	l.notify("templates")
	return templates, nil
}

// ListThemes returns all themes sorted by name.
func (l *LibraryService) ListThemes() ([]entities.Theme, error) {
	records, err := l.themes.All()
	if err != nil {
		return nil, err
	}
	out := make([]entities.Theme, 0, len(records))
	for _, raw := range records {
		var t entities.Theme
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetTheme returns a stored theme by id.
func (l *LibraryService) GetTheme(id string) (entities.Theme, error) {
	raw, err := l.themes.Get(id)
	if err != nil {
		return entities.Theme{}, err
	}
	var t entities.Theme
	if err := json.Unmarshal(raw, &t); err != nil {
		return entities.Theme{}, fmt.Errorf("corrupt theme record %s: %w", id, err)
	}
	return t, nil
}

// SaveTheme inserts or updates a theme.
func (l *LibraryService) SaveTheme(t entities.Theme) (entities.Theme, error) {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return entities.Theme{}, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return entities.Theme{}, err
	}
	if err := l.themes.Put(t.ID, raw); err != nil {
		return entities.Theme{}, err
	}
	l.notify("themes")
	return t, nil
}

// DeleteTheme removes a theme by id.
func (l *LibraryService) DeleteTheme(id string) error {
	if err := l.themes.Delete(id); err != nil {
		return err
	}
	l.notify("themes")
	return nil
}

// ExportThemes serializes the whole collection as an indented JSON array.
func (l *LibraryService) ExportThemes() ([]byte, error) {
	themes, err := l.ListThemes()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(themes, "", "  ")
}

// ImportThemes replaces the whole collection from a JSON array.
func (l *LibraryService) ImportThemes(data []byte) ([]entities.Theme, error) {
	var themes []entities.Theme
	if err := decodeArray(data, &themes); err != nil {
		return nil, err
	}
	records := make(map[string][]byte, len(themes))
	for i := range themes {
		if strings.TrimSpace(themes[i].ID) == "" {
			themes[i].ID = uuid.NewString()
		}
		if err := themes[i].Validate(); err != nil {
			return nil, fmt.Errorf("theme %d: %w", i, err)
		}
		raw, err := json.Marshal(themes[i])
		if err != nil {
			return nil, err
		}
		records[themes[i].ID] = raw
	}
	if err := l.themes.ReplaceAll(records); err != nil {
		return nil, err
	}
	l.notify("themes")
	return themes, nil
}

// decodeArray parses a bare JSON array into out, rejecting any other
// document shape.
func decodeArray(data []byte, out any) error {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("import document must be a JSON array")
	}
	return json.Unmarshal(data, out)
}
