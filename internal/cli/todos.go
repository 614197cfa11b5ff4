package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-sync/internal/app"
	"github.com/Makepad-fr/tada-sync/internal/store/jsonstore"
	"github.com/Makepad-fr/tada-sync/internal/tui"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

// ListOptions holds flags for the ls command.
type ListOptions struct {
	*RootOptions
	Format string
	Group  bool
}

func newListCommand(root *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List todos",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isValidFormat(opts.Format) {
				return usagef("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			s, err := root.cmdSession(cmd)
			if err != nil {
				return err
			}
			if err := s.Load(cmd.Context()); err != nil {
				return err
			}
			return writeTodos(cmd.OutOrStdout(), s.Store(), opts.Format, opts.Group)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.Flags().BoolVar(&opts.Group, "group", false, "group text output by pending/done")
	return cmd
}

func newAddCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new todo (title can be multiple words, or empty)",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <title...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.cmdSession(cmd)
			if err != nil {
				return err
			}
			s.Store().SetPendingInput(strings.Join(args, " "))
			if err := s.Create(cmd.Context()); err != nil {
				return err
			}
			t := s.Store().Todos()[0]
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added #%d %s", t.ID, t.Title))
			return nil
		},
	}
}

func newDoneCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle Done/Not Done for a todo",
		Args:  idArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			s, err := loaded(cmd, root)
			if err != nil {
				return err
			}
			if err := s.Toggle(cmd.Context(), id); err != nil {
				return err
			}
			t, _ := s.Store().Find(id)
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("#%d %s", id, tui.ToggleLabel(t.Completed)))
			return nil
		},
	}
}

func newRenameCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Change the title of a todo",
		Args:  idArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			s, err := loaded(cmd, root)
			if err != nil {
				return err
			}
			if _, ok := s.Store().Find(id); !ok {
				return fmt.Errorf("rename %d: %w", id, app.ErrNotFound)
			}
			s.Store().BeginEdit(id)
			s.Store().SetEditText(strings.Join(args[1:], " "))
			if err := s.SaveEdit(cmd.Context()); err != nil {
				return err
			}
			t, _ := s.Store().Find(id)
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("renamed #%d %s", id, t.Title))
			return nil
		},
	}
}

func newRemoveCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a todo",
		Args:  idArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			s, err := root.cmdSession(cmd)
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), id); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newExportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the fetched list to a JSON file (usable as a serve --seed)",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("usage: todo export <file>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loaded(cmd, root)
			if err != nil {
				return err
			}
			if err := jsonstore.Save(args[0], s.Store().Todos()); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("exported %d todos", s.Store().Len()))
			return nil
		},
	}
}

// loaded returns a session whose store holds the remote list.
func loaded(cmd *cobra.Command, root *RootOptions) (*app.Session, error) {
	s, err := root.cmdSession(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s takes no arguments", cmd.Name())
	}
	return nil
}

// idArgs wants a numeric id followed by at least extra more args.
func idArgs(extra int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 1+extra || (extra == 0 && len(args) != 1) {
			return usagef("usage: todo %s", cmd.Use)
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return usagef("%s: not a number: %s", cmd.Name(), args[0])
		}
		return nil
	}
}
