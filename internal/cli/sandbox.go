package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/wire"
)

// SandboxCmd returns the sandbox command
func SandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local stand-in for the Event and Auth Services",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sandbox API",
		Long: `Serve an in-memory Event and Auth Service for rehearsals and demos.

Issued passcodes are printed to the log instead of being sent to customers.
Point the client at it with DAYOF_API_URL=http://localhost:5000/api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = wire.Settings().Sandbox.Addr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sandbox listening on %s\n", addr)
			return wire.SandboxServer().ListenAndServe(cmd.Context(), addr)
		},
	}
	serve.Flags().String("addr", "", "Listen address (default from DAYOF_SANDBOX_ADDR)")
	cmd.AddCommand(serve)

	return cmd
}
