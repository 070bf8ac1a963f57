package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/core/workflow"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/wire"
)

// openSession starts a workflow session on the resolved event.
func openSession(ctx context.Context, args []string, idx int) (primary.WorkflowSession, error) {
	id, err := resolveEventID(args, idx)
	if err != nil {
		return nil, err
	}
	sess, err := wire.WorkflowService().Open(ctx, id)
	if err != nil {
		return nil, reported(err)
	}
	return sess, nil
}

// CheckInCmd returns the checkin command
func CheckInCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin [event-id]",
		Short: "Check in at the venue with an arrival photo",
		Long: `Check in at the venue.

The arrival photo is uploaded together with your current position. The
position comes from --lat/--lng, or DAYOF_LATITUDE/DAYOF_LONGITUDE.

Example:
  dayof checkin --photo arrival.jpg --lat 40.7061 --lng -74.0027`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, _ := cmd.Flags().GetString("photo")
			// The position has to be set before the services are wired.
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return fmt.Errorf("--lat and --lng must be given together")
				}
				lat, _ := cmd.Flags().GetFloat64("lat")
				lng, _ := cmd.Flags().GetFloat64("lng")
				wire.SetPosition(lat, lng)
			}
			if err := requireLogin(cmd.Context()); err != nil {
				return err
			}

			sess, err := openSession(cmd.Context(), args, 0)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.CheckIn(cmd.Context(), photo); err != nil {
				return reported(err)
			}
			wire.RendererWithOutput(cmd.OutOrStdout()).Board(sess.Board())
			return nil
		},
	}
	cmd.Flags().String("photo", "", "Arrival photo (required)")
	cmd.Flags().Float64("lat", 0, "Latitude of the current position")
	cmd.Flags().Float64("lng", 0, "Longitude of the current position")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

// OTPCmd returns the otp command
func OTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Send and verify customer passcodes",
		Long: `Send and verify the start and closing passcodes.

The passcode is sent to the customer, who reads it back to you. A code is
valid for a limited time; sending again issues a new one.`,
	}

	cmd.AddCommand(otpSendCmd())
	cmd.AddCommand(otpVerifyCmd())

	return cmd
}

func otpSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <start|closing> [event-id]",
		Short: "Send a passcode to the customer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			kind, err := otp.ParseKind(args[0])
			if err != nil {
				return err
			}

			sess, err := openSession(cmd.Context(), args, 1)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.SendOTP(cmd.Context(), kind); err != nil {
				return reported(err)
			}
			for _, o := range sess.Board().OTPs {
				if o.Kind == kind && o.State == otp.StatePending {
					fmt.Fprintf(cmd.OutOrStdout(), "Code expires in %s\n", otp.FormatRemaining(o.Remaining))
				}
			}
			return nil
		}),
	}
}

func otpVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <start|closing> <code> [event-id]",
		Short: "Verify the passcode read back by the customer",
		Args:  cobra.RangeArgs(2, 3),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			kind, err := otp.ParseKind(args[0])
			if err != nil {
				return err
			}

			sess, err := openSession(cmd.Context(), args, 2)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.VerifyOTP(cmd.Context(), kind, args[1]); err != nil {
				return reported(err)
			}
			wire.RendererWithOutput(cmd.OutOrStdout()).Board(sess.Board())
			return nil
		}),
	}
}

// PhotosCmd returns the photos command
func PhotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Upload setup photos",
	}
	cmd.AddCommand(photosUploadCmd())
	return cmd
}

func photosUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <pre|post> <photo>...",
		Short: "Upload a batch of setup photos",
		Long: `Upload a batch of pre-setup or post-setup photos.

Examples:
  dayof photos upload pre tables.jpg stage.jpg
  dayof photos upload post final.jpg --notes "Cake moved to the terrace"`,
		Args: cobra.MinimumNArgs(2),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			phase, err := workflow.ParsePhase(args[0])
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")
			eventID, _ := cmd.Flags().GetString("event")

			var idArgs []string
			if eventID != "" {
				idArgs = []string{eventID}
			}
			sess, err := openSession(cmd.Context(), idArgs, 0)
			if err != nil {
				return err
			}
			defer sess.Close()

			err = sess.UploadSetupPhotos(cmd.Context(), primary.SetupPhotosRequest{
				Phase: phase,
				Paths: args[1:],
				Notes: notes,
			})
			if err != nil {
				return reported(err)
			}
			wire.RendererWithOutput(cmd.OutOrStdout()).Board(sess.Board())
			return nil
		}),
	}
	cmd.Flags().String("notes", "", "Notes for this batch")
	cmd.Flags().String("event", "", "Event ID (defaults to the focused event)")
	return cmd
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [event-id]",
		Short: "Show the workflow board and follow passcode countdowns",
		Long: `Show the workflow board and print each passcode countdown until it is
verified or expires. Press Ctrl-C to stop.

With --refresh the event is re-fetched periodically, so a passcode verified
from another device ends the countdown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("refresh")
			ctx := cmd.Context()

			sess, err := openSession(ctx, args, 0)
			if err != nil {
				return err
			}
			defer sess.Close()

			renderer := wire.RendererWithOutput(cmd.OutOrStdout())
			board := sess.Board()
			renderer.Board(board)
			if len(pendingKinds(board)) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No passcode countdown running.")
				return nil
			}

			var refresh <-chan time.Time
			if interval > 0 {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				refresh = ticker.C
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case t, ok := <-sess.Ticks():
					if !ok {
						return nil
					}
					renderer.Tick(t)
				case <-refresh:
					if err := sess.Refresh(ctx); err != nil {
						return reported(err)
					}
				}
				if len(pendingKinds(sess.Board())) == 0 {
					renderer.Board(sess.Board())
					return nil
				}
			}
		}),
	}
	cmd.Flags().Duration("refresh", 0, "Re-fetch the event at this interval (e.g. 15s)")
	return cmd
}

// pendingKinds lists the passcodes whose countdown is still running.
func pendingKinds(b primary.Board) []otp.Kind {
	var kinds []otp.Kind
	for _, o := range b.OTPs {
		if o.State == otp.StatePending {
			kinds = append(kinds, o.Kind)
		}
	}
	return kinds
}
