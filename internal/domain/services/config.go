package services

import (
	"context"
	"errors"
	"fmt"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// ConfigService resolves the effective configuration from defaults, the
// global file, the deck directory's file, and CLI flags, in ascending
// precedence.
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig loads and merges the full configuration hierarchy. The global
// file is created on first run; the local file is optional.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	configs := []*entities.Config{s.GetDefaultConfig()}

	globalConfig, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if globalConfig != nil {
		configs = append(configs, globalConfig)
	}

	localConfig, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if localConfig != nil {
		configs = append(configs, localConfig)
	}

	// Flags outrank every file
	finalConfig := s.merger.ApplyFlags(s.merger.Merge(configs...), flags)

	if err := s.ValidateConfig(finalConfig); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return finalConfig, nil
}

// GetDefaultConfig returns the default configuration. Merge with no
// arguments yields the defaults; delegating avoids a circular import on the
// defaults package.
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

var _ ports.ConfigService = (*ConfigService)(nil)
