package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var (
		wait     bool
		retries  int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check server health.

With --wait the check is retried a fixed number of times, which gives a
sleeping free-tier host time to start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts := 1
			if wait {
				attempts = retries
			}

			var result HealthResult
			var err error
			for i := 0; i < attempts; i++ {
				if i > 0 {
					if cfg.Verbose {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "server not ready (%v), retrying in %s\n", err, interval)
					}
					time.Sleep(interval)
				}
				if err = client.Get("/health", &result); err == nil {
					outputFor(cmd).Print(result)
					return nil
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Retry until the server answers")
	cmd.Flags().IntVar(&retries, "retries", 10, "Attempts when --wait is set")
	cmd.Flags().DurationVar(&interval, "interval", 3*time.Second, "Delay between attempts")

	return cmd
}
