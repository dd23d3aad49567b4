package config

import (
	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	// Start with first config as base
	result := deepCopy(configs[0])

	// Merge subsequent configs
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Theme.Name = theme
	}

	if deck, ok := flags["deck"].(string); ok && deck != "" {
		result.Data.DeckPath = deck
	}

	if dataPath, ok := flags["data"].(string); ok && dataPath != "" {
		result.Data.Path = dataPath
	}

	if assetsDir, ok := flags["assets-dir"].(string); ok && assetsDir != "" {
		result.Assets.Directory = assetsDir
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Theme config
	if source.Theme.Name != "" {
		target.Theme.Name = source.Theme.Name
	}

	// Assets config
	if source.Assets.BaseHref != "" {
		target.Assets.BaseHref = source.Assets.BaseHref
	}
	if source.Assets.Directory != "" {
		target.Assets.Directory = source.Assets.Directory
	}
	if source.Assets.MaxSizeMB != 0 {
		target.Assets.MaxSizeMB = source.Assets.MaxSizeMB
	}

	// Data config
	if source.Data.Path != "" {
		target.Data.Path = source.Data.Path
	}
	if source.Data.DeckPath != "" {
		target.Data.DeckPath = source.Data.DeckPath
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	// TOML cannot distinguish false from unset, so booleans always merge
	target.Browser.AutoOpen = source.Browser.AutoOpen

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	target.Logging.Verbose = source.Logging.Verbose
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server: entities.ServerConfig{
			Host:            src.Server.Host,
			Port:            src.Server.Port,
			ReadTimeout:     src.Server.ReadTimeout,
			WriteTimeout:    src.Server.WriteTimeout,
			ShutdownTimeout: src.Server.ShutdownTimeout,
			Environment:     src.Server.Environment,
		},
		Theme: entities.ThemeConfig{
			Name: src.Theme.Name,
		},
		Assets: entities.AssetsConfig{
			BaseHref:  src.Assets.BaseHref,
			Directory: src.Assets.Directory,
			MaxSizeMB: src.Assets.MaxSizeMB,
		},
		Data: entities.DataConfig{
			Path:     src.Data.Path,
			DeckPath: src.Data.DeckPath,
		},
		Browser: entities.BrowserConfig{
			AutoOpen: src.Browser.AutoOpen,
			Browser:  src.Browser.Browser,
		},
		Logging: entities.LoggingConfig{
			Level:   src.Logging.Level,
			Verbose: src.Logging.Verbose,
		},
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
