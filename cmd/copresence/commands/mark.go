package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"copresence/internal/app"
	"copresence/internal/domain"
	"copresence/internal/services/session"
)

var (
	window       time.Duration
	refreshEvery time.Duration
	refreshAfter time.Duration
)

// applySessionFlags copies the session flags the user set into cfg.
func applySessionFlags(cmd *cobra.Command, cfg *app.Config) {
	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("refresh-every") {
		cfg.RefreshEvery = refreshEvery
	}
}

// refreshSession re-advertises. A session that has already ended is not an
// error; its final status is on the way.
func refreshSession(ctx context.Context, svc domain.SessionService) error {
	if err := svc.Refresh(ctx); err != nil && !errors.Is(err, session.ErrNotAdvertising) {
		return err
	}
	return nil
}

// markCmd runs one attendance session and waits for it to end.
func markCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Advertise your roll number for one attendance window",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ended := make(chan domain.StatusReport, 1)
			sink := domain.StatusSinkFunc(func(r domain.StatusReport) {
				fmt.Fprintf(out, "Status: %s\n", r)
				if r.Status != domain.StatusMarked {
					select {
					case ended <- r:
					default:
					}
				}
			})

			svc, err := wire.Session(sink)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runCtx, stopRun := context.WithCancel(ctx)
			defer stopRun()
			g, runCtx := errgroup.WithContext(runCtx)
			g.Go(func() error { return svc.Run(runCtx) })

			if err := svc.Start(ctx); err != nil {
				stopRun()
				_ = g.Wait()
				return err
			}

			var refresh <-chan time.Time
			if refreshAfter > 0 {
				refresh = time.After(refreshAfter)
			}
			for {
				select {
				case <-refresh:
					refresh = nil
					for _, o := range svc.Observations(wire.Config.MaxPeers) {
						fmt.Fprintf(out, "  peer %3s  %4d dBm\n", o.PeerID, o.RSSI)
					}
					if err := refreshSession(ctx, svc); err != nil {
						return err
					}
				case r := <-ended:
					stopRun()
					if err := g.Wait(); err != nil {
						return err
					}
					return r.Err
				case <-ctx.Done():
					// Run ends the session and reports it.
					stopRun()
					return g.Wait()
				}
			}
		},
	}
	cmd.Flags().DurationVar(&window, "window", 0, "how long to advertise (default from COPRESENCE_WINDOW, 30s)")
	cmd.Flags().DurationVar(&refreshEvery, "refresh-every", 0, "re-advertise with the latest neighbours this often")
	cmd.Flags().DurationVar(&refreshAfter, "refresh-after", 0, "re-advertise once with the latest neighbours after this long")
	return cmd
}
