package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"copresence/internal/domain"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List recorded scan reports, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := wire.Ledger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				r, ok, err := ledger.LoadReport(cmd.Context(), domain.ReportID(args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no report %q", args[0])
				}
				printReport(out, r)
				return nil
			}

			reports, err := ledger.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintln(out, "No reports recorded.")
				return nil
			}
			for _, r := range reports {
				fmt.Fprintf(out, "%s  %s  %d present\n",
					r.StartedAt.Local().Format("2006-01-02 15:04"), r.ID, len(r.Sightings))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of reports to list (0 for all)")
	return cmd
}
