// Package main implements the portal, the telemetry relay between the
// game client and the cluster.
//
// The game periodically POSTs player, monster, item, and game-state
// snapshots; the portal keeps the latest state in memory, republishes
// selected fields as Prometheus metrics, and mirrors monsters into the
// cluster as custom resources so they can be observed and managed as
// first-class cluster objects.
//
// HTTP surface:
//
//	/monsters/*   - monster ingest, lifecycle, and read endpoints
//	/monsties/*   - pod-name feed from the cluster controller
//	/player/*     - latest player snapshot
//	/gamestate/*  - latest game-state snapshot
//	/items/*      - latest item list
//	/metrics      - Prometheus exposition
//	/health       - liveness probe
//
// Configuration comes from an optional TOML file (--config) with
// PORTAL_* environment overrides; see internal/config.
//
// Example usage:
//
//	PORTAL_LISTEN=:5000 PORTAL_NAMESPACE=dungeon-master-system ./portal serve
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/dreamware/portal/internal/config"
	"github.com/dreamware/portal/internal/events"
	"github.com/dreamware/portal/internal/gamestate"
	"github.com/dreamware/portal/internal/metrics"
	"github.com/dreamware/portal/internal/monster"
	"github.com/dreamware/portal/internal/orchestrator"
	"github.com/dreamware/portal/internal/reconciler"
	"github.com/dreamware/portal/internal/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Telemetry relay between the game client and the cluster",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath)
		},
	}
	serve.Flags().StringVar(&cfgPath, "config", "", "path to a TOML config file")
	root.AddCommand(serve)
	return root
}

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// The collections are memory-resident with a single owner; refuse to
	// start a second instance against the same lock file.
	if cfg.LockFile != "" {
		fileLock := flock.New(cfg.LockFile)
		locked, err := fileLock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", cfg.LockFile, err)
		}
		if !locked {
			return fmt.Errorf("portal already running (lock %s held)", cfg.LockFile)
		}
		defer func() { _ = fileLock.Unlock() }()
	}

	var orch reconciler.Orchestrator
	if cfg.Orchestrator {
		orch, err = orchestrator.New()
		if err != nil {
			return fmt.Errorf("connect orchestrator: %w", err)
		}
	} else {
		log.Printf("orchestrator disabled, running with local state only")
		orch = noopOrchestrator{}
	}

	m := metrics.New()
	store := state.NewStore()
	hub := events.NewHub()
	srv := newServer(
		reconciler.New(store, orch, m, hub, cfg.Namespace),
		store,
		state.NewPodFeed(),
		gamestate.NewStore(),
		m,
		hub,
	)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.routes(cfg.MetricsPath),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("portal listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Println("portal stopped")
	return nil
}

// noopOrchestrator satisfies the reconciler without a cluster; used when
// the mirror is disabled in config.
type noopOrchestrator struct{}

func (noopOrchestrator) Exists(context.Context, string, string) (bool, error) { return false, nil }
func (noopOrchestrator) Create(context.Context, string, monster.Record) error { return nil }
func (noopOrchestrator) Update(context.Context, string, monster.Record) error { return nil }
func (noopOrchestrator) Delete(context.Context, string, string) error         { return nil }
func (noopOrchestrator) DeleteAll(context.Context, string) error              { return nil }
