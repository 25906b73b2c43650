// Command bazaard runs the bazaar price and ledger daemon.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/TheWindows/bazaar/internal/api"
	"github.com/TheWindows/bazaar/internal/catalog"
	"github.com/TheWindows/bazaar/internal/config"
	"github.com/TheWindows/bazaar/internal/market"
	"github.com/TheWindows/bazaar/internal/shop"
	"github.com/TheWindows/bazaar/internal/store"
)

func main() {
	configPath := flag.String("config", "bazaard.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bazaard: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	// Storage failure here is fatal: the bazaar has no degraded mode.
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Catalog → price table ─────────────────────────────────────────
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	if err := db.Reconcile(cat.Items); err != nil {
		slog.Error("failed to reconcile prices", "error", err)
		os.Exit(1)
	}
	slog.Info("price table reconciled",
		"categories", len(cat.Categories),
		"items", len(cat.Items),
		"skipped", len(cat.Skipped),
	)

	// ── Fluctuation engine ────────────────────────────────────────────
	engine := market.New(db, market.Policy{
		Enabled:        cfg.AutoUpdate.Enabled,
		MaxFluctuation: cfg.AutoUpdate.MaxFluctuation,
	}, nil)

	var sched *market.Scheduler
	if cfg.AutoUpdate.Enabled {
		sched = market.NewScheduler(engine, cfg.AutoUpdate.Interval)
		go sched.Run()
	} else {
		slog.Info("price auto-update disabled")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("admin_key not set — admin POST endpoints will be disabled")
	}

	wallet := shop.NewMemoryWallet()
	server := &api.Server{
		DB:          db,
		Shop:        shop.NewService(db, wallet),
		Market:      engine,
		Sessions:    shop.NewSessions(0),
		Addr:        cfg.ListenAddr,
		AdminKey:    cfg.AdminKey,
		CatalogPath: cfg.CatalogPath,
	}
	server.SetCatalog(cat)
	server.Start()

	fmt.Printf("Bazaar is open: %d items across %d categories.\n", len(cat.Items), len(cat.Categories))
	fmt.Printf("API: http://%s/api/v1/prices\n", cfg.ListenAddr)
	fmt.Println("Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if sched != nil {
		sched.Stop()
	}

	fmt.Println("Bazaar closed.")
}
