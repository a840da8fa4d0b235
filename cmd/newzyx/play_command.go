package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"newzyx/internal/api"
	"newzyx/internal/catalog"
	"newzyx/internal/playback"
	"newzyx/internal/render"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var start float64
	cmd := &cobra.Command{
		Use:   "play [id|latest]",
		Short: "Play an episode's podcast through ffplay",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			id := api.LatestID
			if len(args) == 1 {
				id = args[0]
			}

			runCtx := cmd.Context()
			_, _, svc := ctx.services()
			ep, err := svc.Resolve(runCtx, id)
			if err != nil {
				return err
			}

			ctrl := ctx.newController(cfg)
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			err = runPlayback(runCtx, ctrl, ep, start, out, isTerminal(out))
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "Stopped.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "Start position in seconds")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runPlayback loads ep, starts it once ready, and returns when playback
// completes, fails, or ctx ends. live redraws a progress line in place.
func runPlayback(ctx context.Context, ctrl *playback.Controller, ep catalog.Episode, start float64, out io.Writer, live bool) error {
	updates := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(playback.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	title := render.LongDisplayDate(ep.ID)
	fmt.Fprintf(out, "Loading %s\n", title)
	ctrl.Load(ep)

	started := false
	for {
		state := ctrl.Snapshot()
		switch {
		case state.Status == playback.StatusError:
			return errors.New(state.LastError)
		case state.Status == playback.StatusPaused && !started:
			started = true
			if !live {
				fmt.Fprintf(out, "Playing %s (%s)\n", title, render.Progress(start, state.Duration))
			}
			if start > 0 {
				ctrl.Seek(start)
			}
			ctrl.Play()
			continue
		case started && !state.IsPlaying:
			if live {
				fmt.Fprintln(out)
			}
			if state.LastError != "" {
				return errors.New(state.LastError)
			}
			fmt.Fprintln(out, "Finished.")
			return nil
		case live && state.IsPlaying:
			fmt.Fprintf(out, "\r▶ %s  %s ", title, render.Progress(state.Position, state.Duration))
		}

		select {
		case <-ctx.Done():
			if live {
				fmt.Fprintln(out)
			}
			return ctx.Err()
		case <-updates:
		}
	}
}
