package cli

import (
	"fmt"
	"time"

	"k9harmony/pkg/client"

	"github.com/spf13/cobra"
)

func newWaitReadyCmd(rt *runtime) *cobra.Command {
	var (
		url     string
		maxWait time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait-ready",
		Short: "Block until the booking API answers /health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				url = rt.config().APIBaseURL
			}
			c := client.NewHttpClient(url, 2*time.Second)
			if err := c.WaitForHealthy(cmd.Context(), maxWait); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", url)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "booking API base URL (default API_BASE_URL)")
	cmd.Flags().DurationVar(&maxWait, "timeout", 30*time.Second, "how long to wait")
	return cmd
}
