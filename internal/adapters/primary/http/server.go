package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"deckview/internal/adapters/secondary/embed"
	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// HTTPLogger provides structured logging for the HTTP server
type HTTPLogger struct {
	component string
	verbose   bool
	level     entities.LogLevel
}

// NewHTTPLogger creates a new HTTP logger instance
func NewHTTPLogger(component string, verbose bool) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     entities.LogLevelInfo, // Default level
	}
}

// NewHTTPLoggerWithLevel creates a new HTTP logger instance with specific level
func NewHTTPLoggerWithLevel(component string, verbose bool, level entities.LogLevel) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     level,
	}
}

// shouldLog checks if the message should be logged based on level
func (l *HTTPLogger) shouldLog(msgLevel entities.LogLevel) bool {
	levelMap := map[entities.LogLevel]int{
		entities.LogLevelDebug: 0,
		entities.LogLevelInfo:  1,
		entities.LogLevelWarn:  2,
		entities.LogLevelError: 3,
	}

	currentLevel := levelMap[l.level]
	messageLevel := levelMap[msgLevel]

	return messageLevel >= currentLevel
}

// Debug logs debug messages (only if debug level is enabled)
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelDebug) {
		log.Printf("[DEBUG] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Info logs informational messages (only if info level or higher is enabled)
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		log.Printf("[INFO] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Warn logs warning messages (only if warn level or higher is enabled)
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		log.Printf("[WARN] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Error logs error messages (always logged)
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		log.Printf("[ERROR] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// SetLevel updates the logging level
func (l *HTTPLogger) SetLevel(level entities.LogLevel) {
	l.level = level
}

// Server is the HTTP front of the presentation: it serves the shell page,
// the JSON API, uploaded assets, enhanced embedded documents, and the
// WebSocket update stream.
type Server struct {
	server   *http.Server
	connMgr  *ConnectionManager
	session  ports.SessionService
	library  ports.LibraryService
	decks    ports.DeckService
	renderer ports.SlideRenderer
	resolver ports.AssetResolver
	bridge   *embed.Bridge
	assets   *AssetStore
	config   *entities.ServerConfig
	assetCfg entities.AssetsConfig
	logger   *HTTPLogger
	mu       sync.RWMutex
	running  bool
}

// Deps carries the services the server fronts.
type Deps struct {
	Session  ports.SessionService
	Library  ports.LibraryService
	Decks    ports.DeckService
	Renderer ports.SlideRenderer
	Resolver ports.AssetResolver
	Bridge   *embed.Bridge
	Assets   *AssetStore
}

// NewServer creates a new HTTP server
// config must not be nil - use config.GetDefaultConfig().Server if needed
func NewServer(deps Deps, config *entities.ServerConfig, assetCfg entities.AssetsConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	assets := deps.Assets
	if assets == nil {
		assets = NewAssetStore()
	}
	return &Server{
		session:  deps.Session,
		library:  deps.Library,
		decks:    deps.Decks,
		renderer: deps.Renderer,
		resolver: deps.Resolver,
		bridge:   deps.Bridge,
		assets:   assets,
		connMgr:  NewConnectionManager(),
		config:   config,
		assetCfg: assetCfg,
		logger:   NewHTTPLogger("server", false), // Default logger, can be overridden
	}
}

// SetLogging configures the server logger from the logging config.
func (s *Server) SetLogging(loggingConfig *entities.LoggingConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := entities.LogLevelInfo
	verbose := false
	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		verbose = loggingConfig.Verbose
	}
	s.logger = NewHTTPLoggerWithLevel("server", verbose, level)
}

// Broadcaster returns the connection manager as the client fan-out.
func (s *Server) Broadcaster() ports.Broadcaster {
	return s.connMgr
}

// AssetFiles returns the in-memory asset store.
func (s *Server) AssetFiles() *AssetStore {
	return s.assets
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	// Start connection manager
	go s.connMgr.Run(ctx)

	router := s.setupRoutes()

	// Add CORS middleware with configurable origins from config
	corsOrigins := s.config.GetCORSOrigins()

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	})
	handler := c.Handler(router)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	// Start server in goroutine
	go func() {
		s.logger.Info("HTTP server starting on %s:%d", host, port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	// Close all WebSocket connections
	s.connMgr.CloseAll()

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event entities.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	// WebSocket endpoint
	r.HandleFunc("/ws", s.handleWebSocket)

	// Embedded-document bridge
	r.HandleFunc("/embed", s.handleEmbed).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/deck", s.handleDeckImport).Methods(http.MethodPost)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/navigate", s.handleNavigate).Methods(http.MethodPost)
	api.HandleFunc("/timer", s.handleTimer).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.handleSettingsGet).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSettingsPut).Methods(http.MethodPut, http.MethodPost)
	api.HandleFunc("/assets", s.handleAssetUpload).Methods(http.MethodPost)

	api.HandleFunc("/templates", s.handleTemplatesList).Methods(http.MethodGet)
	api.HandleFunc("/templates", s.handleTemplateSave).Methods(http.MethodPost)
	api.HandleFunc("/templates/export", s.handleTemplatesExport).Methods(http.MethodGet)
	api.HandleFunc("/templates/import", s.handleTemplatesImport).Methods(http.MethodPost)
	api.HandleFunc("/templates/{id}", s.handleTemplateDelete).Methods(http.MethodDelete)

	api.HandleFunc("/themes", s.handleThemesList).Methods(http.MethodGet)
	api.HandleFunc("/themes", s.handleThemeSave).Methods(http.MethodPost)
	api.HandleFunc("/themes/export", s.handleThemesExport).Methods(http.MethodGet)
	api.HandleFunc("/themes/import", s.handleThemesImport).Methods(http.MethodPost)
	api.HandleFunc("/themes/{id}/apply", s.handleThemeApply).Methods(http.MethodPost)
	api.HandleFunc("/themes/{id}", s.handleThemeDelete).Methods(http.MethodDelete)

	// Uploaded and on-disk assets
	r.HandleFunc("/assets/{name:.*}", s.handleAssetGet).Methods(http.MethodGet)

	// The shell page
	r.HandleFunc("/", s.handleShell).Methods(http.MethodGet)

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	handler := securityHeadersMiddleware(r)
	handler = rateLimitMiddleware(handler)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}

// serveDiskAsset serves a file from the configured assets directory,
// preventing path traversal.
func (s *Server) serveDiskAsset(w http.ResponseWriter, r *http.Request, name string) {
	root := s.assetCfg.Directory
	if root == "" {
		http.NotFound(w, r)
		return
	}

	cleanPath := filepath.Clean("/" + name)
	if strings.Contains(cleanPath, "..") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	fullPath := filepath.Join(root, cleanPath)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Ensure the absolute path is within the root directory
	if !strings.HasPrefix(absPath, absRoot) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, absPath)
}
