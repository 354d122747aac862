// Command desktop runs the notary backend for the local desktop shell:
// REST API plus a WebSocket change feed on localhost.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notaryapp/backend/internal/appointments"
	"github.com/notaryapp/backend/internal/audit"
	"github.com/notaryapp/backend/internal/config"
	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/directory"
	"github.com/notaryapp/backend/internal/favorites"
	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/retry"
	"github.com/notaryapp/backend/internal/seed"
	"github.com/notaryapp/backend/internal/session"
	syncpkg "github.com/notaryapp/backend/internal/sync"
	"github.com/notaryapp/backend/internal/sync/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("failed to load configuration", err)
		os.Exit(1)
	}
	logging.Init(os.Stdout, cfg.LogLevel)

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logging.Error("failed to open database", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.MigrateUp(database.DB); err != nil {
		logging.Error("failed to run migrations", err)
		os.Exit(1)
	}

	repo := db.NewRepository(database.DB)
	defer repo.Close()

	if err := seed.NewSeeder(repo).SeedIfEmpty(); err != nil {
		logging.Error("failed to seed initial data", err)
		os.Exit(1)
	}

	bus := notify.NewBus()
	recorder := audit.NewRecorder(repo)
	sess := session.New(repo, recorder, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.Sync.SourcePath != "" {
		retryCfg := retry.DefaultConfig()
		if cfg.Sync.MaxRetries > 0 {
			retryCfg.MaxRetries = cfg.Sync.MaxRetries
		}
		engine := syncpkg.NewEngine(repo, syncpkg.NewFileSource(cfg.Sync.SourcePath), bus, retryCfg)
		sched = scheduler.NewScheduler(engine, cfg.Sync.Interval)
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		logging.Info("directory sync disabled: no source configured")
	}

	hub := NewWSHub()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go hub.Forward(events)

	server := &Server{
		session:      sess,
		directory:    directory.NewService(repo, recorder, bus),
		favorites:    favorites.NewManager(repo, bus),
		appointments: appointments.NewManager(repo, recorder, bus),
		audit:        recorder,
		scheduler:    sched,
		hub:          hub,
	}

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	// No read/write timeouts here: the /ws endpoint holds long-lived
	// connections and manages its own deadlines.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("notary backend listening", logging.Fields{"addr": addr})
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("shutting down", logging.Fields{"signal": sig.String()})
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logging.Error("server failed", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", err)
	}
}
