package config

import (
	"os"
	"strconv"
	"strings"

	"deckview/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("DECKVIEW_HOST", "localhost"),
			Port:            getEnvIntOrDefault("DECKVIEW_PORT", 8765),
			ReadTimeout:     getEnvIntOrDefault("DECKVIEW_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("DECKVIEW_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("DECKVIEW_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("DECKVIEW_CORS_ORIGINS", []string{
				"http://localhost:8765",
				"http://127.0.0.1:8765",
			}),
		},
		Theme: entities.ThemeConfig{
			Name: getEnvOrDefault("DECKVIEW_THEME", ""),
		},
		Assets: entities.AssetsConfig{
			BaseHref:  getEnvOrDefault("DECKVIEW_ASSETS_BASE", "assets"),
			Directory: getEnvOrDefault("DECKVIEW_ASSETS_DIR", ""),
			MaxSizeMB: getEnvIntOrDefault("DECKVIEW_ASSETS_MAX_MB", 25),
		},
		Data: entities.DataConfig{
			Path:     getEnvOrDefault("DECKVIEW_DATA_PATH", ""),
			DeckPath: getEnvOrDefault("DECKVIEW_DECK", ""),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: getEnvBoolOrDefault("DECKVIEW_BROWSER_AUTO_OPEN", true),
			Browser:  getEnvOrDefault("DECKVIEW_BROWSER", "default"),
		},
		Logging: entities.LoggingConfig{
			Level:   getEnvOrDefault("DECKVIEW_LOG_LEVEL", "info"),
			Verbose: getEnvBoolOrDefault("DECKVIEW_LOG_VERBOSE", false),
		},
	}

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
