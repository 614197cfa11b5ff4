package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-sync/internal/auth"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

func newAuthCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bearer token sent with requests",
		Args:  noArgs,
		RunE: func(*cobra.Command, []string) error {
			return usagef("usage: todo auth <login|logout|status>")
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [token]",
			Short: "Save a token (read from stdin when not given)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var token string
				if len(args) == 1 {
					token = args[0]
				} else {
					fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && strings.TrimSpace(line) == "" {
						return fmt.Errorf("read token: %w", err)
					}
					token = line
				}
				if err := auth.Set(token); err != nil {
					return fmt.Errorf("save token: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "logged in")
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the saved token",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ti, _ := auth.Get()
				if ti != nil && ti.Source == auth.SourceEnv {
					ui.OK(cmd.OutOrStdout(), "token is provided by TADA_TOKEN env var (nothing to delete)")
					return nil
				}
				if err := auth.Delete(); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "logged out")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out := cmd.OutOrStdout()
				ti, err := auth.Get()
				if err != nil {
					return err
				}
				if ti == nil {
					fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
					fmt.Fprintln(out, "Run: todo auth login")
					return nil
				}
				fmt.Fprintf(out, "source: %s\n", ti.Source)
				if !ti.CreatedAt.IsZero() {
					fmt.Fprintf(out, "saved: %s\n", ti.CreatedAt.Format("2006-01-02 15:04:05 MST"))
				}
				fmt.Fprintln(out, "env override: TADA_TOKEN")
				return nil
			},
		},
	)
	return cmd
}
