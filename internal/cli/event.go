package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/config"
	"github.com/example/dayof/internal/core/workflow"
	"github.com/example/dayof/internal/ports/primary"
	"github.com/example/dayof/internal/wire"
)

// EventCmd returns the event command
func EventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
		Long:  "List, create, inspect and delete the events you are booked for.",
	}

	cmd.AddCommand(eventListCmd())
	cmd.AddCommand(eventCreateCmd())
	cmd.AddCommand(eventShowCmd())
	cmd.AddCommand(eventDeleteCmd())
	cmd.AddCommand(eventFocusCmd())

	return cmd
}

func eventListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your events",
		Long: `List your events with their workflow progress.

When the Event Service cannot be reached the last fetched list is shown.`,
		Args: cobra.NoArgs,
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			resp, err := wire.EventService().ListEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}
			wire.RendererWithOutput(cmd.OutOrStdout()).List(resp)
			return nil
		}),
	}
}

func eventCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Long: `Create an event.

Example:
  dayof event create --name "Harbor Wedding" --date 2026-07-04 --location "Pier 17" \
    --customer "Ada Lovelace" --customer-email ada@example.com --customer-phone "+1 555-0100"`,
		Args: cobra.NoArgs,
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			req := primary.CreateEventRequest{}
			req.EventName, _ = cmd.Flags().GetString("name")
			req.EventDate, _ = cmd.Flags().GetString("date")
			req.Location, _ = cmd.Flags().GetString("location")
			req.CustomerName, _ = cmd.Flags().GetString("customer")
			req.CustomerEmail, _ = cmd.Flags().GetString("customer-email")
			req.CustomerPhone, _ = cmd.Flags().GetString("customer-phone")
			focus, _ := cmd.Flags().GetBool("focus")

			created, err := wire.EventService().CreateEvent(cmd.Context(), req)
			if err != nil {
				return reported(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event ID: %s\n", created.ID)

			if focus {
				if err := setFocus(created.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Focused on %s\n", created.ID)
			}
			return nil
		}),
	}
	cmd.Flags().String("name", "", "Event name")
	cmd.Flags().String("date", "", "Event date (YYYY-MM-DD)")
	cmd.Flags().String("location", "", "Event location")
	cmd.Flags().String("customer", "", "Customer name")
	cmd.Flags().String("customer-email", "", "Customer email")
	cmd.Flags().String("customer-phone", "", "Customer phone")
	cmd.Flags().Bool("focus", false, "Focus the new event")
	return cmd
}

func eventShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [event-id]",
		Short: "Show an event and its workflow",
		Long: `Show an event.

With --step the workflow board is shown with the cursor on that step
(checkin, start, setup or close). Locked steps cannot be selected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := resolveEventID(args, 0)
			if err != nil {
				return err
			}
			stepName, _ := cmd.Flags().GetString("step")
			board, _ := cmd.Flags().GetBool("board")
			renderer := wire.RendererWithOutput(cmd.OutOrStdout())

			if stepName == "" && !board {
				summary, err := wire.EventService().GetEvent(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to get event: %w", err)
				}
				renderer.Show(summary)
				return nil
			}

			sess, err := wire.WorkflowService().Open(cmd.Context(), id)
			if err != nil {
				return reported(err)
			}
			defer sess.Close()

			if stepName != "" {
				step, err := workflow.ParseStep(stepName)
				if err != nil {
					return err
				}
				if err := sess.Select(step); err != nil {
					return err
				}
			}
			renderer.Board(sess.Board())
			return nil
		}),
	}
	cmd.Flags().String("step", "", "Select a workflow step (checkin, start, setup, close)")
	cmd.Flags().Bool("board", false, "Show the workflow board")
	return cmd
}

func eventDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [event-id]",
		Short: "Delete an event",
		Args:  cobra.MaximumNArgs(1),
		RunE: loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := resolveEventID(args, 0)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				answer, err := readLine(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete event %s? [y/N] ", id))
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := wire.EventService().DeleteEvent(cmd.Context(), id); err != nil {
				return reported(err)
			}
			clearFocusIf(id)
			return nil
		}),
	}
	cmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	return cmd
}

func eventFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus [event-id]",
		Short: "Set the event the workflow commands act on",
		Long: `Set the focused event for this directory.

The focus is stored in .dayof/config.json and used whenever a workflow
command is run without an event id.

Examples:
  dayof event focus 665f1c2e9b1d
  dayof event focus --show
  dayof event focus --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, _ := cmd.Flags().GetBool("show")
			clearFocus, _ := cmd.Flags().GetBool("clear")
			out := cmd.OutOrStdout()

			switch {
			case show:
				id := currentFocus()
				if id == "" {
					fmt.Fprintln(out, "No event focused")
					return nil
				}
				fmt.Fprintf(out, "Focused on %s\n", id)
				return nil
			case clearFocus:
				if err := setFocus(""); err != nil {
					return err
				}
				fmt.Fprintln(out, "Focus cleared")
				return nil
			case len(args) == 0:
				return fmt.Errorf("event id required (or use --show / --clear)")
			}

			id, err := resolveEventID(args, 0)
			if err != nil {
				return err
			}
			if err := setFocus(id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Focused on %s\n", id)
			return nil
		},
	}
	cmd.Flags().Bool("show", false, "Show the focused event")
	cmd.Flags().Bool("clear", false, "Clear the focus")
	return cmd
}

// currentFocus returns the focused event id of the working directory, if any.
func currentFocus() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return ""
	}
	return cfg.FocusEventID
}

func setFocus(id string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		cfg = &config.Config{}
	}
	cfg.FocusEventID = id
	if err := config.SaveConfig(cwd, cfg); err != nil {
		return fmt.Errorf("failed to save focus: %w", err)
	}
	return nil
}

// clearFocusIf drops the focus when it points at a deleted event.
func clearFocusIf(id string) {
	if currentFocus() == id {
		_ = setFocus("")
	}
}
