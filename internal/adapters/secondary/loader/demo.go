package loader

import "deckview/internal/domain/entities"

// DemoDeck returns the built-in demo presentation used when no deck file is
// available.
func DemoDeck() *entities.Deck {
	return &entities.Deck{Slides: []entities.Slide{
		{
			LayoutKey: "Title Slide",
			Fields: entities.Fields{
				"title":    "Web Presenter",
				"subtitle": "JSON + Themes + Media",
				"footer":   "demo",
				"notes":    "A short remark for the speaker",
			},
		},
		{
			LayoutKey: "Title and Content",
			Fields: entities.Fields{
				"title": "Capabilities",
				"body": []any{
					"Templates (CRUD)",
					"Themes (CRUD)",
					"Offline + USB clickers",
					"Media: images/video/HTML",
				},
				"footer": "demo",
			},
		},
		{
			LayoutKey: "Image Only",
			Fields: entities.Fields{
				"title": "Drone",
				"images": []any{
					map[string]any{"src": "drone.svg", "alt": "UAV", "fit": "contain", "w": "70%"},
				},
			},
		},
	}}
}

// DemoTemplates returns the seed templates for an empty library.
func DemoTemplates() []entities.Template {
	return []entities.Template{
		{
			ID:        "tpl-title",
			Name:      "Title Slide",
			LayoutKey: "Title Slide",
			FieldsSchema: map[string]string{
				"title":    "string",
				"subtitle": "string?",
				"footer":   "string?",
				"notes":    "string?",
			},
		},
		{
			ID:        "tpl-content",
			Name:      "Title and Content",
			LayoutKey: "Title and Content",
			FieldsSchema: map[string]string{
				"title":  "string",
				"body":   "string|string[]",
				"footer": "string?",
				"notes":  "string?",
			},
		},
		{
			ID:        "tpl-image",
			Name:      "Image Only",
			LayoutKey: "Image Only",
			FieldsSchema: map[string]string{
				"title":  "string?",
				"images": "[Image]",
			},
		},
	}
}

// DemoThemes returns the seed themes for an empty library.
func DemoThemes() []entities.Theme {
	return []entities.Theme{
		{
			ID:   "dark-blue",
			Name: "Dark Blue",
			Vars: map[string]string{
				"--bg":       "#0e0f13",
				"--fg":       "#e9edf1",
				"--accent":   "#4da3ff",
				"--muted":    "#9aa4af",
				"--card":     "#141824",
				"--line":     "#2a2f3a",
				"fontFamily": "system-ui, Segoe UI, Roboto, Arial, sans-serif",
			},
		},
		{
			ID:   "light",
			Name: "Light",
			Vars: map[string]string{
				"--bg":       "#ffffff",
				"--fg":       "#121212",
				"--accent":   "#005fcc",
				"--muted":    "#5b6570",
				"--card":     "#f4f6f8",
				"--line":     "#d9dee5",
				"fontFamily": "system-ui, Segoe UI, Roboto, Arial, sans-serif",
			},
		},
	}
}
