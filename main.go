package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/config"
	"github.com/lexandro/filetally-mcp/ignore"
	"github.com/lexandro/filetally-mcp/index"
	"github.com/lexandro/filetally-mcp/register"
	"github.com/lexandro/filetally-mcp/server"
	"github.com/lexandro/filetally-mcp/tools"
	"github.com/lexandro/filetally-mcp/tracker"
	"github.com/lexandro/filetally-mcp/watcher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"
)

// rescanInterval is the minimum spacing of watcher-triggered rescans.
const rescanInterval = time.Second

// defaultConfigFile is read from the root directory when --config is not given.
const defaultConfigFile = "filetally.yaml"

// excludePatterns is a repeatable CLI flag for custom ignore patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "register" {
		serverName := register.DeriveServerName(os.Args[0])
		if err := register.Run(serverName, os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, register.ErrUsage) {
				register.PrintUsage(os.Stderr, filepath.Base(os.Args[0]))
			}
			os.Exit(1)
		}
		return
	}

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("filetally-mcp stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// parseConfig resolves the effective configuration: defaults, then the YAML
// file, then every flag that was given explicitly.
func parseConfig(args []string, output io.Writer) (config.Config, error) {
	defaults := config.Default()

	fs := flag.NewFlagSet("filetally-mcp", flag.ContinueOnError)
	fs.SetOutput(output)

	var configPath string
	var flagValues config.Config
	var excludes excludePatterns

	fs.StringVar(&configPath, "config", "", "YAML config file (default: <root>/"+defaultConfigFile+" if present)")
	fs.StringVar(&flagValues.Root, "root", "", "Root directory to tally (default: current working directory)")
	fs.StringVar(&flagValues.Locale, "locale", defaults.Locale, "BCP 47 locale used to sort file names")
	fs.Var(&excludes, "exclude", "Extra ignore pattern (repeatable)")
	fs.Int64Var(&flagValues.MaxFileSizeBytes, "max-file-size", defaults.MaxFileSizeBytes, "Skip files larger than this many bytes (0: no limit)")
	fs.BoolVar(&flagValues.Watch, "watch", defaults.Watch, "Rescan when files under the root change")
	fs.IntVar(&flagValues.SyncIntervalSeconds, "sync-interval", defaults.SyncIntervalSeconds, "Seconds between disk consistency checks (0: disabled)")
	fs.IntVar(&flagValues.MaxResults, "max-results", defaults.MaxResults, "Default max results for file and name searches")
	fs.StringVar(&flagValues.CountersPath, "counters", "", "Counter database path (default: <root>/filetally.db)")
	fs.StringVar(&flagValues.LogLevel, "log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&flagValues.LogFile, "log-file", "", "Log file path (default: <root>/filetally.log)")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg := defaults
	if configPath != "" {
		loaded, err := config.Load(configPath, false)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		candidate := defaultConfigFile
		if flagValues.Root != "" {
			candidate = filepath.Join(flagValues.Root, defaultConfigFile)
		}
		loaded, err := config.Load(candidate, true)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if explicit["root"] {
		cfg.Root = flagValues.Root
	}
	if explicit["locale"] {
		cfg.Locale = flagValues.Locale
	}
	if explicit["max-file-size"] {
		cfg.MaxFileSizeBytes = flagValues.MaxFileSizeBytes
	}
	if explicit["watch"] {
		cfg.Watch = flagValues.Watch
	}
	if explicit["sync-interval"] {
		cfg.SyncIntervalSeconds = flagValues.SyncIntervalSeconds
	}
	if explicit["max-results"] {
		cfg.MaxResults = flagValues.MaxResults
	}
	if explicit["counters"] {
		cfg.CountersPath = flagValues.CountersPath
	}
	if explicit["log-level"] {
		cfg.LogLevel = flagValues.LogLevel
	}
	if explicit["log-file"] {
		cfg.LogFile = flagValues.LogFile
	}
	cfg.Exclude = append(cfg.Exclude, excludes...)

	return cfg.WithDefaults()
}

// run wires the components together and serves MCP on stdio until ctx ends.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting filetally-mcp",
		"root", cfg.Root,
		"locale", cfg.Locale,
		"maxFileSize", cfg.MaxFileSizeBytes,
		"watch", cfg.Watch,
		"syncInterval", cfg.SyncIntervalSeconds,
	)

	startTime := time.Now()

	// Counters
	store, err := tracker.OpenBoltStore(cfg.CountersPath)
	if err != nil {
		return fmt.Errorf("opening counters: %w", err)
	}
	defer store.Close()

	counterTracker, err := tracker.New(store, tracker.Options{Logger: logger})
	if err != nil {
		return err
	}

	// File set
	session, err := index.NewSession(classify.NewClassifier(cfg.LocaleTag()))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	ignoreMatcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          cfg.Root,
		CustomPatterns:   cfg.Exclude,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
		OwnFiles:         []string{cfg.LogFile, cfg.CountersPath, cfg.Path},
	})

	scanner := &rootScanner{
		rootDir:       cfg.Root,
		session:       session,
		ignoreMatcher: ignoreMatcher,
		logger:        logger,
	}

	// Perform initial scan
	result, err := scanner.Rescan(ctx)
	if err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	logger.Info("initial scan complete",
		"files", result.Files,
		"totalSize", result.TotalSize,
		"binary", result.Binary,
		"duration", result.Duration,
	)

	// Start file watcher
	watching := false
	if cfg.Watch {
		fileWatcher, err := watcher.NewWatcher(cfg.Root, ignoreMatcher, watcher.Options{Always: ignore.IsIgnoreFile}, logger)
		if err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			watching = true
			defer fileWatcher.Close()
			go fileWatcher.Run(ctx)
			limiter := rate.NewLimiter(rate.Every(rescanInterval), 1)
			go handleWatcherEvents(ctx, fileWatcher.Events(), scanner, limiter, logger)
		}
	}

	if cfg.SyncIntervalSeconds > 0 {
		go runPeriodicSync(ctx, cfg.SyncIntervalSeconds, scanner, logger)
	}

	doRescan := func(ctx context.Context) (int, int64, string, error) {
		ignoreMatcher.Reload()
		result, err := scanner.Rescan(ctx)
		if err != nil {
			return 0, 0, "", err
		}
		return result.Files, result.TotalSize, result.Duration.Round(time.Millisecond).String(), nil
	}

	// Create tool handlers and run MCP server on stdio
	mcpServer := server.Setup(server.Handlers{
		Classify: &tools.ClassifyHandler{Classifier: session.Classifier(), Logger: logger},
		Add:      &tools.AddHandler{Session: session, Logger: logger},
		Report:   &tools.ReportHandler{Session: session, Logger: logger},
		Files:    &tools.FilesHandler{Session: session, MaxResults: cfg.MaxResults, Logger: logger},
		Search:   &tools.SearchHandler{Session: session, MaxResults: cfg.MaxResults, Logger: logger},
		Reset:    &tools.ResetHandler{Session: session, Logger: logger},
		Rescan:   &tools.RescanHandler{DoRescan: doRescan, Logger: logger},
		Links:    &tools.LinksHandler{Tracker: counterTracker, Logger: logger},
		Counters: &tools.CountersHandler{Tracker: counterTracker, Logger: logger},
		Organize: &tools.OrganizeHandler{Session: session, RootDir: cfg.Root, DoRescan: doRescan, Logger: logger},
		Status: &tools.StatusHandler{
			Session:   session,
			Tracker:   counterTracker,
			StartTime: startTime,
			RootDir:   cfg.Root,
			Watching:  watching,
			Logger:    logger,
		},
	})

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
