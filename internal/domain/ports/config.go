package ports

import (
	"context"

	"deckview/internal/domain/entities"
)

// ConfigLoader reads configuration files from disk.
type ConfigLoader interface {
	// LoadGlobal loads the user-wide configuration file, creating it from
	// defaults on first run.
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads the configuration file in dir, returning nil when the
	// directory has none.
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// CreateDefaults writes the default configuration file at path.
	CreateDefaults(ctx context.Context, path string) error

	// GetGlobalPath returns the path of the user-wide configuration file.
	GetGlobalPath() string

	// GetLocalPath returns the path a local configuration file would have
	// inside dir.
	GetLocalPath(dir string) string
}

// ConfigMerger layers configurations and flag overrides.
type ConfigMerger interface {
	// Merge combines configs with later entries taking precedence; called
	// with no arguments it yields the defaults.
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags overlays CLI flag values on top of config.
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
}

// ConfigService resolves the effective configuration for a run.
type ConfigService interface {
	// LoadConfig merges defaults, the global file, the deck directory's
	// file, and flags, in ascending precedence.
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// GetDefaultConfig returns the built-in defaults.
	GetDefaultConfig() *entities.Config

	// ValidateConfig checks config for usable values.
	ValidateConfig(config *entities.Config) error
}
