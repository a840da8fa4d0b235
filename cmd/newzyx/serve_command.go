package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"newzyx/internal/daemon"
	"newzyx/internal/logging"
	"newzyx/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and RSS feed server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if trimmed := strings.TrimSpace(bind); trimmed != "" {
				cfg.API.Bind = trimmed
			}

			runCtx := cmd.Context()
			logger := ctx.log()
			resolver, cat, _ := ctx.services()

			for _, result := range preflight.RunAll(runCtx, cfg, resolver, time.Now()) {
				if result.Passed {
					continue
				}
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.Bool("optional", result.Optional),
					logging.Impact("related endpoints may fail"),
				)
			}

			ctrl := ctx.newController(cfg)
			defer ctrl.Close()

			d, err := daemon.New(cfg, daemon.Services{
				Catalog:  cat,
				Content:  resolver,
				Playback: ctrl,
			}, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer d.Close()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", d.Addr())

			<-runCtx.Done()
			logger.Info("newzyx server shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind")
	return cmd
}
