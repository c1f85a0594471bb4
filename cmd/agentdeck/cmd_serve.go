package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/live"
	"github.com/agentdeck/agentdeck/internal/parser"
	"github.com/agentdeck/agentdeck/internal/parser/claude"
	"github.com/agentdeck/agentdeck/internal/parser/codex"
	"github.com/agentdeck/agentdeck/internal/realtime"
	"github.com/agentdeck/agentdeck/internal/watcher"
	"github.com/agentdeck/agentdeck/internal/web"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the remote-access bridge",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	setupLogging(cfg.LogLevel)

	registry := parser.NewRegistry()
	registry.Register(claude.New())
	registry.Register(codex.New(codex.Config{
		Model:         cfg.Codex.Model,
		ContextWindow: cfg.Codex.ContextWindow,
	}))

	broadcaster := realtime.NewBroadcaster()
	liveReg := live.NewRegistry()

	// The process manager that owns the real sessions attaches its
	// callbacks when it embeds these packages; running standalone the
	// handler degrades to negative replies by design of the contract.
	server := web.NewServer(cfg, broadcaster, liveReg, web.Callbacks{}, slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(); err != nil {
		return err
	}
	slog.Info("bridge started", "agents", registry.IDs(), "url", server.URL())

	g, gctx := errgroup.WithContext(ctx)
	if cfg.CommandsDir != "" {
		cmdWatcher := watcher.New(cfg.CommandsDir, broadcaster, slog.Default())
		g.Go(func() error { return cmdWatcher.Run(gctx) })
	}

	<-gctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	return g.Wait()
}
