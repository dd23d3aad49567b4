package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// TOMLLoader reads the global and per-directory TOML config files.
type TOMLLoader struct {
	globalPath string
	localName  string
}

// NewTOMLLoader creates a loader rooted at the user's config directory.
func NewTOMLLoader() *TOMLLoader {
	homeDir, _ := os.UserHomeDir()
	return &TOMLLoader{
		globalPath: filepath.Join(homeDir, ".config", "deckview", "config.toml"),
		localName:  "deckview.toml",
	}
}

// LoadGlobal loads the global config, writing the defaults file first on a
// fresh machine so the operator has something to edit.
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if _, err := os.Stat(l.globalPath); os.IsNotExist(err) {
		if err := l.CreateDefaults(ctx, l.globalPath); err != nil {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}
	return l.loadConfig(l.globalPath)
}

// LoadLocal loads the deck directory's config. A missing file is not an
// error; local config is optional.
func (l *TOMLLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	localPath := l.GetLocalPath(dir)
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		return nil, nil
	}
	return l.loadConfig(localPath)
}

// CreateDefaults writes the default configuration to path, creating parent
// directories as needed.
func (l *TOMLLoader) CreateDefaults(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	file, err := os.Create(path) // #nosec G304 - path is controlled (global config path)
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	encoder := toml.NewEncoder(file)
	encoder.Indent = "  "
	if err := encoder.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}
	return nil
}

// GetGlobalPath returns the path of the global config file.
func (l *TOMLLoader) GetGlobalPath() string {
	return l.globalPath
}

// GetLocalPath returns the path of the local config file for dir.
func (l *TOMLLoader) GetLocalPath(dir string) string {
	return filepath.Join(dir, l.localName)
}

func (l *TOMLLoader) loadConfig(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is from controlled sources (global/local config)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg entities.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return &cfg, nil
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
