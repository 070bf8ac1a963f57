package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/wire"
)

// LoginCmd returns the login command
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a vendor",
		Long: `Sign in to the Event Service and store the token locally.

Examples:
  dayof login --email grace@example.com
  dayof login --email grace@example.com --password 'Str0ng!pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			if password == "" {
				var err error
				password, err = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			vendor, err := wire.AuthService().Login(cmd.Context(), primary.LoginRequest{Email: email, Password: password})
			if err != nil {
				return reported(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", vendorLabel(vendor))
			return nil
		},
	}
	cmd.Flags().String("email", "", "Vendor email (required)")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// RegisterCmd returns the register command
func RegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a vendor account",
		Long: `Create a vendor account and sign in.

Passwords need 8+ characters with an uppercase letter, a lowercase letter,
a number and a special character.

Example:
  dayof register --name "Grace Hopper" --email grace@example.com --phone "+1 555-0100"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			password, _ := cmd.Flags().GetString("password")

			if password == "" {
				var err error
				password, err = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			vendor, err := wire.AuthService().Register(cmd.Context(), primary.RegisterRequest{
				Name:     name,
				Email:    email,
				Phone:    phone,
				Password: password,
			})
			if err != nil {
				return reported(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", vendorLabel(vendor))
			return nil
		},
	}
	cmd.Flags().String("name", "", "Vendor name (required)")
	cmd.Flags().String("email", "", "Vendor email (required)")
	cmd.Flags().String("phone", "", "Vendor phone (required)")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

// LogoutCmd returns the logout command
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.AuthService().Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			return nil
		},
	}
}

// WhoAmICmd returns the whoami command
func WhoAmICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in vendor",
		Long: `Show the signed-in vendor, refreshed from the Auth Service.

If the refresh fails for any reason the stored token is forgotten. With --offline the stored identity
is shown without a network call.`,
		Args: cobra.NoArgs,
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			offline, _ := cmd.Flags().GetBool("offline")

			var (
				vendor *primary.Vendor
				err    error
			)
			if offline {
				vendor, err = wire.AuthService().Current(cmd.Context())
			} else {
				vendor, err = wire.AuthService().WhoAmI(cmd.Context())
			}
			if errors.Is(err, apperrors.ErrSessionInvalid) {
				return errors.New("your session is no longer valid: run 'dayof login' again")
			}
			if err != nil && !offline {
				return fmt.Errorf("failed to refresh vendor, signed out: %w", err)
			}
			if err != nil {
				return fmt.Errorf("failed to load vendor: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vendor: %s\n", vendorLabel(vendor))
			fmt.Fprintf(out, "ID:     %s\n", vendor.ID)
			if vendor.ExpiresAt != nil {
				fmt.Fprintf(out, "Token expires: %s\n", vendor.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		}),
	}
	cmd.Flags().Bool("offline", false, "Show the stored identity without contacting the service")
	return cmd
}

func vendorLabel(v *primary.Vendor) string {
	switch {
	case v.Name != "" && v.Email != "":
		return fmt.Sprintf("%s <%s>", v.Name, v.Email)
	case v.Name != "":
		return v.Name
	case v.Email != "":
		return v.Email
	}
	return v.ID
}
