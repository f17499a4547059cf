package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dshills/rewind/internal/config"
	"github.com/dshills/rewind/internal/logging"
	"github.com/dshills/rewind/internal/patch/jsondoc"
	"github.com/dshills/rewind/internal/repl"
	"github.com/dshills/rewind/internal/script"
	"github.com/dshills/rewind/internal/session"
	"github.com/spf13/cobra"
)

func newReplCmd(g *globals) *cobra.Command {
	var docPath string
	var noPrompt bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit a JSON document interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(g)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			e.serveMetrics(ctx)

			doc := jsondoc.MustParse("{}")
			if docPath != "" {
				data, err := os.ReadFile(docPath)
				if err != nil {
					return fmt.Errorf("reading document: %w", err)
				}
				if doc, err = jsondoc.Parse(data); err != nil {
					return fmt.Errorf("%s: %w", docPath, err)
				}
			}

			sess := session.New[jsondoc.Document, jsondoc.Mutation, jsondoc.Op](jsondoc.Engine{}, doc,
				session.WithName("repl"),
				session.WithMaxEntries(e.cfg.History.MaxEntries),
				session.WithLogger(e.logger),
				session.WithMetrics(e.metrics),
			)
			runner := script.NewRunner(
				script.WithTimeout(e.cfg.Script.Timeout.Std()),
				script.WithOutput(cmd.OutOrStdout()),
			)

			if g.configPath != "" {
				w, err := config.NewWatcher(g.configPath, func(cfg *config.Config, err error) {
					if err != nil {
						e.logger.Warn("config reload failed", "err", err)
						return
					}
					if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
						e.logger.SetLevel(level)
					}
					sess.SetMaxEntries(cfg.History.MaxEntries)
					e.logger.Info("config reloaded", "max_entries", cfg.History.MaxEntries)
				})
				if err != nil {
					e.logger.Warn("config watch disabled", "err", err)
				} else {
					defer w.Close()
				}
			}

			shell := repl.New(sess, runner, cmd.OutOrStdout(), repl.WithPrompt(!noPrompt))
			if err := shell.Run(ctx, cmd.InOrStdin()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "JSON document to start from (default {})")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Do not print a prompt (for piped input)")
	return cmd
}
