package entities

import (
	"errors"
	"strings"
)

// Template is descriptive authoring metadata for a layout: a display name
// plus field-shape hints. Templates are never enforced at render time.
type Template struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	LayoutKey    string            `json:"layout_key" yaml:"layout_key"`
	FieldsSchema map[string]string `json:"fieldsSchema" yaml:"fieldsSchema"`
}

// Validate ensures the template has the fields required for persistence.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("template id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	return nil
}
