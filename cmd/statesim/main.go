// Command statesim runs the US political process simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/statehouse/internal/api"
	"github.com/talgya/statehouse/internal/engine"
	"github.com/talgya/statehouse/internal/persistence"
	"github.com/talgya/statehouse/internal/scenario"
)

type config struct {
	Seed         int64         `env:"STATESIM_SEED" envDefault:"0"`
	DBPath       string        `env:"STATESIM_DB" envDefault:"data/statehouse.db"`
	Port         int           `env:"STATESIM_PORT" envDefault:"8080"`
	AdminKey     string        `env:"STATESIM_ADMIN_KEY"`
	ScenarioPath string        `env:"STATESIM_SCENARIO"`
	StepEvery    time.Duration `env:"STATESIM_STEP_EVERY" envDefault:"0"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("bad environment", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Create Simulation ─────────────────────────────────────
	sim, err := loadOrCreate(db, cfg)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	slog.Info("simulation ready",
		"turn", sim.Turn, "year", sim.Year, "month", sim.Month,
		"seed", sim.Seed, "states", len(sim.States), "parties", len(sim.Parties))

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("STATESIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	srv := &api.Server{
		Sim:      sim,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	srv.Start()

	fmt.Printf("\nStatehouse: %d states, %d parties, %04d-%02d.\n",
		len(sim.States), len(sim.Parties), sim.Year, sim.Month)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.StepEvery > 0 {
		slog.Info("auto-advance enabled", "interval", cfg.StepEvery)
		ticker := time.NewTicker(cfg.StepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := srv.StepAndSave(); err != nil {
					slog.Error("turn failed", "error", err)
				}
			case sig := <-sigCh:
				slog.Info("received signal, shutting down", "signal", sig)
				shutdown(srv)
				return
			}
		}
	}

	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	shutdown(srv)
}

// loadOrCreate restores the latest snapshot, or builds a fresh scenario
// when the database is empty.
func loadOrCreate(db *persistence.DB, cfg config) (*engine.Simulation, error) {
	doc, err := db.LoadLatest()
	if err != nil {
		return nil, fmt.Errorf("read latest snapshot: %w", err)
	}
	if doc != nil {
		sim, err := engine.Load(doc)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		slog.Info("restored from snapshot", "turn", sim.Turn)
		return sim, nil
	}

	sc := scenario.Default()
	if cfg.ScenarioPath != "" {
		sc, err = scenario.Load(cfg.ScenarioPath)
		if err != nil {
			return nil, fmt.Errorf("load scenario %s: %w", cfg.ScenarioPath, err)
		}
		slog.Info("scenario loaded", "path", cfg.ScenarioPath)
	}
	if cfg.Seed != 0 {
		sc.Seed = cfg.Seed
	}

	sim, err := engine.New(sc)
	if err != nil {
		return nil, err
	}
	if err := db.SaveSnapshot(sim.Export()); err != nil {
		slog.Error("initial save failed", "error", err)
	}
	return sim, nil
}

func shutdown(srv *api.Server) {
	slog.Info("final save...")
	if err := srv.Persist(); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. State saved.")
}
