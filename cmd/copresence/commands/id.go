package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"copresence/internal/domain"
)

func idCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Manage the roll number this device broadcasts",
	}
	cmd.AddCommand(idSetCmd(), idShowCmd())
	return cmd
}

func idSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <roll-number>",
		Short: "Store the roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.SetRollNumber(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Roll number saved. Broadcasting as peer %s.\n", id)
			return nil
		},
	}
}

func idShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored roll number",
		RunE: func(cmd *cobra.Command, args []string) error {
			roll, ok, err := wire.Identity.RollNumber()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: run 'copresence id set <roll-number>'", domain.ErrMissingIdentity)
			}
			out := cmd.OutOrStdout()
			id, err := wire.Identity.PeerID()
			if err != nil {
				fmt.Fprintf(out, "Roll number: %s (cannot broadcast: %v)\n", roll, err)
				return nil
			}
			fmt.Fprintf(out, "Roll number: %s\nPeer id: %s\n", roll, id)
			return nil
		},
	}
}
