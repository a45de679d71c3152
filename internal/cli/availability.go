package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	httputil "k9harmony/pkg/http"

	"github.com/spf13/cobra"
)

func newAvailabilityCmd(rt *runtime) *cobra.Command {
	var (
		trainerCode string
		yearMonth   string
		multiAnimal bool
	)
	c := &cobra.Command{
		Use:   "availability",
		Short: "Print the bookable slots of a trainer for one month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, month, err := httputil.ParseYearMonth(yearMonth)
			if err != nil {
				return err
			}
			svc, err := rt.services()
			if err != nil {
				return err
			}
			days, err := svc.Availability.ComputeAvailability(cmd.Context(), trainerCode, year, time.Month(month), multiAnimal, "")
			if err != nil {
				return err
			}

			dates := make([]string, 0, len(days))
			for d := range days {
				dates = append(dates, d)
			}
			sort.Strings(dates)
			for _, d := range dates {
				if len(days[d]) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d, strings.Join(days[d], " "))
			}
			return nil
		},
	}
	c.Flags().StringVar(&trainerCode, "trainer", "", "trainer code")
	c.Flags().StringVar(&yearMonth, "month", "", "month as YYYY-MM")
	c.Flags().BoolVar(&multiAnimal, "multi-animal", false, "use the multi-animal lesson length")
	_ = c.MarkFlagRequired("trainer")
	_ = c.MarkFlagRequired("month")
	return c
}
