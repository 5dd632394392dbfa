package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"multibot/internal/bus"
	"multibot/internal/channel"
	"multibot/internal/config"
	"multibot/internal/dispatch"
	"multibot/internal/journal"
	"multibot/internal/menu"
	"multibot/internal/metrics"
	"multibot/internal/provider"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "multibot",
		Short: "multibot: multi-provider chat bot",
		Long:  "multibot routes chat commands and menu buttons to cat, astronomy, launch, and pet inventory providers, over Telegram or the terminal.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.multibot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(gatewayCmd())
	root.AddCommand(probeCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(configPathCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start interactive chat (CLI)",
		RunE:  runChat,
	}
}

func gatewayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Start gateway (Telegram + dispatcher)",
		Long:  "Starts the Telegram channel and the dispatcher. Press Ctrl+C to stop.",
		RunE:  runGateway,
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads .env, the config file, and the env overrides, in that
// order. A missing config file falls back to defaults so `multibot chat`
// works out of the box.
func loadConfig() *config.Config {
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env file")
	}
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}
	config.ApplyEnvOverrides(cfg)
	return cfg
}

// setupLogger rebuilds the global logger per config: level from logLevel,
// destination stderr plus optional logFile.
func setupLogger(cfg *config.Config) error {
	var level slog.Level
	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(config.ExpandPath(cfg.General.LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

// runtime bundles the wired core shared by chat and gateway.
type runtime struct {
	bus        *bus.InMemoryBus
	dispatcher *dispatch.Dispatcher
	registry   *dispatch.Registry
	store      *journal.Store
}

func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	fetchTimeout := time.Duration(cfg.General.FetchTimeoutSeconds) * time.Second
	httpClient := provider.SharedHTTPClient(fetchTimeout)

	cats := provider.NewCatAPI(provider.CatAPIConfig{
		APIBase: cfg.Providers.CatAPI.APIBase,
		APIKey:  cfg.Providers.CatAPI.APIKey,
		Client:  httpClient,
		Logger:  logger,
	})
	astronomy := provider.NewNASA(provider.NASAConfig{
		APIBase: cfg.Providers.NASA.APIBase,
		APIKey:  cfg.Providers.NASA.APIKey,
		Client:  httpClient,
		Logger:  logger,
	})
	launches := provider.NewSpaceX(provider.SpaceXConfig{
		APIBase: cfg.Providers.SpaceX.APIBase,
		Client:  httpClient,
		Logger:  logger,
	})
	inventory := provider.NewPetstore(provider.PetstoreConfig{
		APIBase: cfg.Providers.Petstore.APIBase,
		Client:  httpClient,
		Logger:  logger,
	})

	labels, err := menu.Load(cfg.Menu.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("menu labels: %w", err)
	}

	// Breed bindings are built lazily, on the first breeds press. Startup
	// never touches the network.
	registry := dispatch.NewRegistry(labels, cats, logger)

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.NewStore(config.ExpandPath(cfg.Journal.DBPath), logger)
		if err != nil {
			return nil, fmt.Errorf("journal store: %w", err)
		}
		retention := time.Duration(cfg.Journal.RetentionDays) * 24 * time.Hour
		if n, err := store.Prune(ctx, retention); err != nil {
			logger.Warn("journal prune failed", "err", err)
		} else if n > 0 {
			logger.Info("journal pruned", "removed", n)
		}
	}

	messageBus := bus.New(100, logger)

	dispatcherCfg := dispatch.DispatcherConfig{
		Registry:     registry,
		Sessions:     dispatch.NewSessionManager(logger),
		Cats:         cats,
		Astronomy:    astronomy,
		Launches:     launches,
		Inventory:    inventory,
		Bus:          messageBus,
		Labels:       labels,
		Logger:       logger,
		Concurrency:  cfg.General.MaxConcurrentMessages,
		FetchTimeout: fetchTimeout,
	}
	if store != nil {
		dispatcherCfg.Journal = store
	}

	return &runtime{
		bus:        messageBus,
		dispatcher: dispatch.NewDispatcher(dispatcherCfg),
		registry:   registry,
		store:      store,
	}, nil
}

func (r *runtime) close() {
	r.bus.Close()
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logger.Warn("journal close failed", "err", err)
		}
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if err := setupLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	go rt.dispatcher.Run(ctx)

	cliCh := channel.NewCLI(channel.CLIConfig{Logger: logger})
	return cliCh.Start(ctx, rt.bus)
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if err := setupLogger(cfg); err != nil {
		return err
	}

	if cfg.Channels.Telegram.Token == "" {
		return fmt.Errorf("telegram token missing; set channels.telegram.token in %s or TOKEN in the environment", resolveConfigPath())
	}
	if !cfg.Channels.Telegram.Enabled {
		logger.Info("telegram token present, enabling the channel")
		cfg.Channels.Telegram.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}

	go rt.dispatcher.Run(ctx)

	telegramCh := channel.NewTelegram(channel.TelegramConfig{
		Token:     cfg.Channels.Telegram.Token,
		AllowFrom: cfg.Channels.Telegram.AllowFrom,
		ParseMode: cfg.Channels.Telegram.ParseMode,
		Logger:    logger,
	})
	go func() {
		if err := telegramCh.Start(ctx, rt.bus); err != nil {
			logger.Error("telegram channel error", "err", err)
			stop()
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/metrics", metrics.Collector.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "err", err)
			}
		}()
	}

	logger.Info("gateway started", "version", version)

	<-ctx.Done()
	logger.Info("shutting down gateway...")

	const shutdownTimeout = 10 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = telegramCh.Stop()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		rt.close()
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timed out, forcing exit")
		shutdownErr = fmt.Errorf("shutdown timed out")
	}

	return shutdownErr
}
