package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// ErrDoubleBookings makes the command exit non-zero so schedulers can alert on it.
type ErrDoubleBookings int

func (e ErrDoubleBookings) Error() string {
	return fmt.Sprintf("%d double bookings found", int(e))
}

func newConsistencyCmd(rt *runtime) *cobra.Command {
	var trainerID string
	c := &cobra.Command{
		Use:   "consistency",
		Short: "Report overlapping confirmed reservations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.services()
			if err != nil {
				return err
			}
			found, err := svc.Bookings.FindDoubleBookings(cmd.Context(), trainerID)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no double bookings")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TRAINER\tFIRST\tSECOND\tFIRST SLOT\tSECOND SLOT")
			for _, d := range found {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.TrainerID, d.First.ID, d.Second.ID,
					span(d.First.StartTime, d.First.EndTime),
					span(d.Second.StartTime, d.Second.EndTime),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return ErrDoubleBookings(len(found))
		},
	}
	c.Flags().StringVar(&trainerID, "trainer", "", "limit the check to one trainer id")
	return c
}

func span(start, end time.Time) string {
	return start.UTC().Format("2006-01-02 15:04") + "-" + end.UTC().Format("15:04")
}
