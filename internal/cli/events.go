package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/medivault/internal/record"
	"github.com/roach88/medivault/internal/store"
)

// EventOptions holds flags shared by events add and events update.
type EventOptions struct {
	*RootOptions
	Title       string
	Date        string
	Type        string
	Description string
	Location    string
	Status      string
}

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage appointments, medications and reminders",
	}

	cmd.AddCommand(newEventsListCommand(rootOpts))
	cmd.AddCommand(newEventsUpcomingCommand(rootOpts))
	cmd.AddCommand(newEventsAddCommand(rootOpts))
	cmd.AddCommand(newEventsUpdateCommand(rootOpts))
	cmd.AddCommand(newEventsStatusCommand(rootOpts))
	cmd.AddCommand(newEventsDeleteCommand(rootOpts))

	return cmd
}

func newEventsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all events by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			events, err := st.GetEvents(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list events", err)
			}
			return rootOpts.formatter(cmd).Render(events, func(w io.Writer) error {
				return writeEvents(w, events)
			})
		},
	}
}

func newEventsUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List pending events from now on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			events, err := st.GetUpcomingEvents(ctx, rootOpts.now(), limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list upcoming events", err)
			}
			return rootOpts.formatter(cmd).Render(events, func(w io.Writer) error {
				return writeEvents(w, events)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of events (0 for all)")

	return cmd
}

func newEventsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Long: `Add an event by hand.

Dates accept RFC 3339 or the shorter "2006-01-02 15:04" and "2006-01-02"
forms, read as UTC.

Example:
  medivault events add --title "Dentist" --date "2026-04-02 09:30" --type appointment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsAdd(opts, cmd)
		},
	}

	addEventFlags(cmd, opts)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func addEventFlags(cmd *cobra.Command, opts *EventOptions) {
	cmd.Flags().StringVar(&opts.Title, "title", "", "event title")
	cmd.Flags().StringVar(&opts.Date, "date", "", "event date")
	cmd.Flags().StringVar(&opts.Type, "type", "", "appointment|medication|reminder")
	cmd.Flags().StringVar(&opts.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&opts.Location, "location", "", "where the event takes place")
	cmd.Flags().StringVar(&opts.Status, "status", "", "pending|completed|cancelled")
}

func runEventsAdd(opts *EventOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	date, err := record.ParseDate(opts.Date)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --date", err)
	}
	e := record.Event{
		ID:          opts.idGenerator().NewID(),
		Title:       opts.Title,
		Date:        date,
		Type:        record.EventType(opts.Type),
		Description: opts.Description,
		Location:    opts.Location,
		Status:      record.EventStatus(opts.Status),
	}
	if e.Status == "" {
		e.Status = record.StatusPending
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.Log)

	if err := st.AddEvent(ctx, e); err != nil {
		return WrapExitError(ExitCommandError, "failed to add event", err)
	}
	opts.Log.Info().Str("event_id", e.ID).Msg("event added")

	return opts.formatter(cmd).Render(e, func(w io.Writer) error {
		return writeEvent(w, e)
	})
}

func newEventsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing event",
		Long: `Change fields of an existing event. Only the flags given are changed.

Example:
  medivault events update 0193a... --date "2026-04-03 10:00" --location "Clinic B"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsUpdate(opts, args[0], cmd)
		},
	}

	addEventFlags(cmd, opts)

	return cmd
}

func runEventsUpdate(opts *EventOptions, id string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.Log)

	e, err := st.GetEvent(ctx, id)
	if err != nil {
		return notFoundOr(err, "event", id)
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		e.Title = opts.Title
	}
	if flags.Changed("date") {
		date, err := record.ParseDate(opts.Date)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --date", err)
		}
		e.Date = date
	}
	if flags.Changed("type") {
		e.Type = record.EventType(opts.Type)
	}
	if flags.Changed("description") {
		e.Description = opts.Description
	}
	if flags.Changed("location") {
		e.Location = opts.Location
	}
	if flags.Changed("status") {
		e.Status = record.EventStatus(opts.Status)
	}

	updated, err := st.UpdateEvent(ctx, e)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to update event", err)
	}
	if !updated {
		return notFound("event", id)
	}

	return opts.formatter(cmd).Render(e, func(w io.Writer) error {
		return writeEvent(w, e)
	})
}

func newEventsStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <pending|completed|cancelled>",
		Short:     "Set the status of an event",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(record.StatusPending), string(record.StatusCompleted), string(record.StatusCancelled)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, status := args[0], record.EventStatus(args[1])

			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			updated, err := st.UpdateEventStatus(ctx, id, status)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to update status", err)
			}
			if !updated {
				return notFound("event", id)
			}

			e, err := st.GetEvent(ctx, id)
			if err != nil {
				return notFoundOr(err, "event", id)
			}
			return rootOpts.formatter(cmd).Render(e, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Event %s is now %s\n", e.ID, e.Status)
				return err
			})
		},
	}
}

// DeleteResult is the output of the delete commands.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func newEventsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Long:  "Delete an event. Deleting an id that does not exist is not an error.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			if err := st.DeleteEvent(ctx, args[0]); err != nil {
				return WrapExitError(ExitCommandError, "failed to delete event", err)
			}
			result := DeleteResult{ID: args[0], Deleted: true}
			return rootOpts.formatter(cmd).Render(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted event %s\n", result.ID)
				return err
			})
		},
	}
}

func notFound(kind, id string) error {
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s %s not found", kind, id),
		&store.Error{Code: store.CodeNotFound, Op: "get " + kind, ID: id})
}

// notFoundOr reports a missing record as not found and anything else as a
// read failure.
func notFoundOr(err error, kind, id string) error {
	if store.IsNotFound(err) {
		return notFound(kind, id)
	}
	return WrapExitError(ExitCommandError, "failed to read "+kind, err)
}
