package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	web "deckview/internal/adapters/primary/http"
	"deckview/internal/adapters/secondary/assets"
	"deckview/internal/adapters/secondary/browser"
	"deckview/internal/adapters/secondary/config"
	"deckview/internal/adapters/secondary/embed"
	"deckview/internal/adapters/secondary/loader"
	"deckview/internal/adapters/secondary/renderer"
	"deckview/internal/adapters/secondary/store"
	"deckview/internal/adapters/secondary/watcher"
	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
	"deckview/internal/domain/services"
)

var (
	// Serve command flags
	port      int
	host      string
	noBrowser bool
	themeName string
	dataPath  string
	assetsDir string
)

// Logger provides structured logging for the serve command
type Logger struct {
	verbose bool
	level   entities.LogLevel
}

// shouldLog checks if the message should be logged based on level
func (l *Logger) shouldLog(msgLevel entities.LogLevel) bool {
	levelMap := map[entities.LogLevel]int{
		entities.LogLevelDebug: 0,
		entities.LogLevelInfo:  1,
		entities.LogLevelWarn:  2,
		entities.LogLevelError: 3,
	}

	return levelMap[msgLevel] >= levelMap[l.level]
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) && l.verbose {
		log.Printf("[INFO] "+msg, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		log.Printf("[WARN] "+msg, args...)
	}
}

// Error logs error messages (always shown if error level)
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		log.Printf("[ERROR] "+msg, args...)
	}
}

// Success logs success messages
func (l *Logger) Success(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) && l.verbose {
		log.Printf("[SUCCESS] "+msg, args...)
	}
}

// newLoggerWithLevel creates a new logger instance with specific level
func newLoggerWithLevel(verbose bool, level entities.LogLevel) *Logger {
	return &Logger{
		verbose: verbose,
		level:   level,
	}
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [deck]",
	Short: "Serve a slide deck as a live presentation",
	Long: `Start a local HTTP server that renders the deck and keeps every
connected window in sync over websockets. The deck is a JSON or YAML
array of slide records; with no argument the built-in demo deck loads.

Example:
  deckview serve deck.json
  deckview serve slides.yaml --port 8080 --no-browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Add command flags - defaults will be overridden by config loading
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically (overrides config)")
	serveCmd.Flags().StringVarP(&themeName, "theme", "t", "", "Theme id or name to activate (overrides config)")
	serveCmd.Flags().StringVar(&dataPath, "data", "", "Path to the template/theme store (overrides config)")
	serveCmd.Flags().StringVar(&assetsDir, "assets-dir", "", "Directory served under /assets/ (overrides config)")
}

// collectFlags gathers explicitly set CLI flags for the config merge, where
// they take precedence over both config files and defaults.
func collectFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("port") {
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = host
	}
	if cmd.Flags().Changed("theme") {
		flags["theme"] = themeName
	}
	if cmd.Flags().Changed("data") {
		flags["data"] = dataPath
	}
	if cmd.Flags().Changed("assets-dir") {
		flags["assets-dir"] = assetsDir
	}
	if noBrowser {
		flags["no-browser"] = true
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags["verbose"] = true
	}
	if len(args) == 1 {
		flags["deck"] = args[0]
	}
	return flags
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(cfg *entities.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Server.Port)
	}
	if strings.Contains(cfg.Server.Host, " ") || strings.Contains(cfg.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", cfg.Server.Host)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	workingDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	// Load configuration with proper precedence: CLI flags > local config > global config > defaults
	flags := collectFlags(cmd, args)
	cfgService := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())
	cfg, err := cfgService.LoadConfig(ctx, workingDir, flags)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if !cmd.Flags().Changed("verbose") {
		verbose = cfg.Logging.Verbose
	}
	logger := newLoggerWithLevel(verbose, cfg.Logging.GetLevel())

	db, err := store.Open(cfg.Data.GetPath())
	if err != nil {
		return fmt.Errorf("opening data store: %w", err)
	}
	defer func() { _ = db.Close() }()

	library := services.NewLibraryService(db.Collection("templates"), db.Collection("themes"), nil)
	if err := seedLibrary(library, workingDir); err != nil {
		return fmt.Errorf("seeding library: %w", err)
	}

	fetcher := loader.NewFetcher(workingDir)
	decks := services.NewDeckService(fetcher, loader.DecodeDeck, loader.DemoDeck)
	deck, err := decks.Load(ctx, cfg.Data.DeckPath)
	if err != nil {
		return fmt.Errorf("loading deck: %w", err)
	}
	logger.Info("Loaded deck with %d slides", len(deck.Slides))

	theme := resolveTheme(library, cfg.Theme.Name, logger)
	session := services.NewSessionService(deck, theme, db.Settings(), nil)

	// A durably stored active theme wins over the configured default, but
	// not over an explicit --theme flag.
	if _, flagged := flags["theme"]; !flagged {
		if id, ok := session.PersistedThemeID(); ok {
			if saved, err := library.GetTheme(id); err == nil {
				_ = session.SetActiveTheme(saved)
			}
		}
	}

	resolver := assets.NewResolver(cfg.Assets.GetBaseHref())
	session.SetAssetResolver(resolver)
	helpers := renderer.NewHelpers(resolver, fetcher, session.Settings, session.ActiveTheme)
	engine := renderer.NewEngine(renderer.NewRegistry(), helpers)
	if logo := discoverLogo(cfg.Assets.Directory); logo != "" {
		engine.SetLogoURL(resolver.Resolve(logo))
		logger.Info("Using deck logo: %s", logo)
	}
	bridge := embed.NewBridge(resolver, fetcher, session.ActiveTheme)

	srv := web.NewServer(web.Deps{
		Session:  session,
		Library:  library,
		Decks:    decks,
		Renderer: engine,
		Resolver: resolver,
		Bridge:   bridge,
	}, &cfg.Server, cfg.Assets)
	srv.SetLogging(&cfg.Logging)

	// Uploaded documents are embeddable without a round trip through the
	// asset route.
	bridge.AssetBytes = srv.AssetFiles().Bytes

	session.SetBroadcaster(srv.Broadcaster())
	library.SetBroadcaster(srv.Broadcaster())

	if path := localDeckPath(cfg.Data.DeckPath, workingDir); path != "" {
		poller, err := watchDeck(ctx, decks, session, path, logger)
		if err != nil {
			logger.Warn("Deck watching disabled: %v", err)
		} else {
			defer func() { _ = poller.Stop() }()
		}
	}

	return startAndManageServer(ctx, srv, cfg, logger)
}

// localDeckPath resolves the deck source to an absolute filesystem path, or
// "" when the deck is remote or built-in.
func localDeckPath(src, workingDir string) string {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return ""
	}
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(workingDir, strings.TrimPrefix(src, "/"))
}

// watchDeck replaces the live deck whenever its file changes on disk. A
// malformed intermediate write is skipped rather than replacing the deck
// with the demo fallback.
func watchDeck(ctx context.Context, decks *services.DeckService, session *services.SessionService, path string, logger *Logger) (*watcher.Poller, error) {
	poller := watcher.NewPoller(500*time.Millisecond, 250*time.Millisecond)
	events, err := poller.Watch(ctx, path)
	if err != nil {
		return nil, err
	}

	go func() {
		for evt := range events {
			if evt.Type == ports.Removed {
				logger.Warn("Deck file %s removed; keeping the loaded deck", evt.Path)
				continue
			}
			data, err := os.ReadFile(evt.Path) // #nosec G304 - the operator's own deck
			if err != nil {
				logger.Warn("Rereading deck: %v", err)
				continue
			}
			deck, err := decks.Import(data)
			if err != nil {
				logger.Warn("Deck file changed but did not parse: %v", err)
				continue
			}
			session.ReplaceDeck(deck)
			logger.Info("Deck reloaded with %d slides", len(deck.Slides))
		}
	}()

	return poller, nil
}

// seedLibrary seeds templates and themes from deck-side seed files when
// present, falling back to the built-in sets. Records already edited in the
// store survive re-seeding.
func seedLibrary(library *services.LibraryService, dir string) error {
	templates, err := loadSeed(dir, "templates", loader.DemoTemplates)
	if err != nil {
		return err
	}
	themes, err := loadSeed(dir, "themes", loader.DemoThemes)
	if err != nil {
		return err
	}
	return library.Seed(templates, themes)
}

// loadSeed reads <dir>/<name>.{json,yaml,yml} as an array of records. A
// missing file means the built-in seed; a malformed file is an error rather
// than a silent fallback.
func loadSeed[T any](dir, name string, demo func() []T) ([]T, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path) // #nosec G304 - operator-controlled seed path
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records, err := loader.DecodeArray[T](data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return records, nil
	}
	return demo(), nil
}

// resolveTheme picks the startup theme by id or name, falling back to the
// first stored theme.
func resolveTheme(library *services.LibraryService, name string, logger *Logger) entities.Theme {
	themes, err := library.ListThemes()
	if err != nil || len(themes) == 0 {
		return loader.DemoThemes()[0]
	}
	if name != "" {
		for _, t := range themes {
			if t.ID == name || strings.EqualFold(t.Name, name) {
				return t
			}
		}
		logger.Warn("Theme %q not found, using %q", name, themes[0].Name)
	}
	return themes[0]
}

// discoverLogo looks for a deck-wide logo file in the assets directory.
func discoverLogo(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range []string{"logo.svg", "logo.png", "logo.jpg", "logo.jpeg", "logo.webp"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.Mode().IsRegular() {
			return name
		}
	}
	return ""
}

// startAndManageServer starts the server and manages its lifecycle
func startAndManageServer(ctx context.Context, srv *web.Server, cfg *entities.Config, logger *Logger) error {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// Probe the port first so a clash surfaces as a clean error instead of
	// a log line from the serve goroutine.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use or cannot be bound: %w", cfg.Server.Port, err)
	}
	if err := listener.Close(); err != nil {
		return fmt.Errorf("releasing port after probing: %w", err)
	}

	if err := srv.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	logger.Success("Presentation running at: http://%s", addr)

	if cfg.Browser.AutoOpen {
		openBrowserIfConfigured(cfg, logger)
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}
	return nil
}

// openBrowserIfConfigured opens the browser if auto-open is enabled
func openBrowserIfConfigured(cfg *entities.Config, logger *Logger) {
	browserLauncher := browser.NewLauncherWithPreference(cfg.Browser.Browser)
	url := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	if err := browserLauncher.Launch(url, false); err != nil {
		logger.Warn("Failed to open browser: %v", err)
	}
}
