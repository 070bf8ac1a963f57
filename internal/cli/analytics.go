package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/wire"
)

// AnalyticsCmd returns the analytics command
func AnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show event statistics",
		Long:  "Show event totals, counts per status and average workflow durations.",
		Args:  cobra.NoArgs,
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			a, err := wire.EventService().GetAnalytics(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load analytics: %w", err)
			}
			wire.RendererWithOutput(cmd.OutOrStdout()).Analytics(a)
			return nil
		}),
	}
}
