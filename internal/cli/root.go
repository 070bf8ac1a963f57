package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/version"
)

// RootCmd returns the dayof command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dayof",
		Short:   "dayof - run the day of an event from the terminal",
		Version: version.String(),
		Long: `dayof guides a vendor through the day of an event: check in at the venue,
verify the start passcode with the customer, upload setup photos and close
out with the closing passcode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(LoginCmd())
	rootCmd.AddCommand(RegisterCmd())
	rootCmd.AddCommand(LogoutCmd())
	rootCmd.AddCommand(WhoAmICmd())

	rootCmd.AddCommand(EventCmd())
	rootCmd.AddCommand(AnalyticsCmd())

	// Day-of workflow
	rootCmd.AddCommand(CheckInCmd())
	rootCmd.AddCommand(OTPCmd())
	rootCmd.AddCommand(PhotosCmd())
	rootCmd.AddCommand(WatchCmd())

	// Developer tools
	rootCmd.AddCommand(SandboxCmd())

	return rootCmd
}
