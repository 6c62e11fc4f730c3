package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"copresence/internal/domain"
)

func anchorCmd() *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Scan as the classroom anchor and record who is present",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.Anchor()
			if err != nil {
				return err
			}
			report, err := svc.Scan(cmd.Context(), duration)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "how long to scan")
	return cmd
}

func printReport(w io.Writer, r domain.ScanReport) {
	fmt.Fprintf(w, "Report %s\n  %s .. %s (%s)\n", r.ID,
		r.StartedAt.Local().Format(time.DateTime), r.EndedAt.Local().Format(time.TimeOnly),
		r.EndedAt.Sub(r.StartedAt).Round(time.Second))
	fmt.Fprintf(w, "  %d present\n", len(r.Sightings))
	for _, s := range r.Sightings {
		fmt.Fprintf(w, "  peer %3s  %6.2f m  heard by %d\n", s.PeerID, s.Distance, s.Neighbours)
	}
	if len(r.Distances) > 0 {
		fmt.Fprintln(w, "  distances:")
		for _, d := range r.Distances {
			fmt.Fprintf(w, "    %3s - %-3s %6.2f m\n", d.A, d.B, d.Meters)
		}
	}
}
