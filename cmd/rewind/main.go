// Package main is the entry point for the rewind CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dshills/rewind/internal/config"
	"github.com/dshills/rewind/internal/logging"
	"github.com/dshills/rewind/internal/metrics"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}

// globals holds the flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var g globals

	rootCmd := &cobra.Command{
		Use:           "rewind",
		Short:         "Undo/redo history over JSON documents",
		Long:          "Edit a JSON document with set, delete and Lua commands, and step back and forth through every change.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newReplCmd(&g), newDemoCmd(&g), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rewind %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}
}

// env is the runtime shared by the subcommands.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
}

// setup loads configuration and builds the logger. The --log-level flag
// overrides the configured level.
func setup(g *globals) (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(os.Stderr, logging.Options{
		Level:      level,
		Prefix:     cfg.Log.Prefix,
		Timestamps: true,
	})

	return &env{cfg: cfg, logger: logger, metrics: metrics.New()}, nil
}

// serveMetrics exposes the metrics endpoint until ctx is done. It does
// nothing when no address is configured.
func (e *env) serveMetrics(ctx context.Context) {
	if e.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	srv := &http.Server{
		Addr:              e.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		e.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
