package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepLocksCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-locks",
		Short: "Delete expired slot locks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.services()
			if err != nil {
				return err
			}
			n, err := svc.Locks.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired locks\n", n)
			return nil
		},
	}
}
