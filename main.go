package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazharichir/marketmaker/config"
	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/server"
	"github.com/lazharichir/marketmaker/server/handlers"
	"github.com/lazharichir/marketmaker/store"
	"github.com/lazharichir/marketmaker/store/sqlite"
	"github.com/lazharichir/marketmaker/telemetry"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName  = "marketmaker"
	flushTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	level, _ := cfg.SlogLevel()
	pterm.DefaultLogger.Level = ptermLevel(level)
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	snapshots, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tableOpts := []domain.TableOption{domain.WithHistoryCap(cfg.HistoryCap)}
	lobbyOpts := []domain.LobbyOption{domain.WithTableOptions(tableOpts...)}
	if cfg.Restore {
		lobbyOpts = append(lobbyOpts, domain.WithTableLoader(store.Loader(snapshots, logger, tableOpts...)))
	} else if err := snapshots.Clear(ctx); err != nil {
		// every boot starts from empty tables unless recovery was asked for
		return fmt.Errorf("clear snapshots: %w", err)
	}

	writer := store.NewAsyncWriter(snapshots, logger, store.DefaultQueueSize)
	lobby := domain.NewLobby(lobbyOpts...)

	srv := server.NewServer(server.Config{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		SendBuffer:     cfg.SendBuffer,
	}, lobby, writer, handlers.Config{
		HandDelay:    cfg.HandDelay,
		StateHistory: cfg.StateHistory,
	}, logger)

	logger.Info("starting market maker server",
		"addr", cfg.HTTPAddr,
		"store", cfg.Store,
		"restore", cfg.Restore,
		"hand_delay", cfg.HandDelay,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return writer.Run(gctx) })
	err = g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	flushTables(flushCtx, lobby, snapshots, logger)
	return err
}

// flushTables writes a last snapshot of every live table straight to the
// store, covering anything the async writer dropped
func flushTables(ctx context.Context, lobby *domain.Lobby, snapshots store.Store, logger *slog.Logger) {
	for _, table := range lobby.GetTables() {
		table.Lock()
		snap, err := store.TakeSnapshot(table, time.Now())
		table.Unlock()
		if err != nil {
			logger.Error("snapshot table", "table", table.ID, "error", err)
			continue
		}
		if err := snapshots.Persist(ctx, snap); err != nil {
			logger.Error("flush snapshot", "table", table.ID, "error", err)
		}
	}
}

// openStore builds the configured snapshot backend
func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("file store: %w", err)
		}
		return fs, func() {}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

func ptermLevel(level slog.Level) pterm.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case level <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case level <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}
