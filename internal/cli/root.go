// Package cli wires the cobra command tree. Every subcommand runs the
// same sync operations as the TUI, once, and exits.
package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-sync/internal/app"
	"github.com/Makepad-fr/tada-sync/internal/auth"
	"github.com/Makepad-fr/tada-sync/internal/config"
	"github.com/Makepad-fr/tada-sync/internal/logging"
	"github.com/Makepad-fr/tada-sync/internal/remote"
	"github.com/Makepad-fr/tada-sync/internal/tui"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

// UsageError marks bad invocations; main exits 2 for these.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usagef(format string, a ...any) error {
	return &UsageError{Err: fmt.Errorf(format, a...)}
}

// ExitCode maps an Execute error to a process exit code
// (0 ok, 1 error, 2 usage).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile   string
	BaseURL      string
	UserID       int
	Timeout      string
	StrictSchema bool
	Theme        string
	LogLevel     string
	LogFormat    string
	LogFile      string

	cfg     *config.Config
	closers []io.Closer
}

// NewRootCommand creates the root command. Without a subcommand it
// opens the interactive list.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "todo - a tiny remote todo list",
		Long: `A terminal todo list backed by a jsonplaceholder-style REST API.

Run without arguments for the interactive list. Every change is sent to
the server first and shown once the server acknowledged it.`,
		Args:          rootArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := opts.tuiLogger()
			if err != nil {
				return err
			}
			s, err := opts.session(logger)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), s)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	f := cmd.PersistentFlags()
	f.StringVar(&opts.ConfigFile, "config", "", "config file (TOML)")
	f.StringVar(&opts.BaseURL, "base-url", "", "service root, e.g. "+config.DefaultBaseURL)
	f.IntVar(&opts.UserID, "user-id", 0, "userId sent with new todos")
	f.StringVar(&opts.Timeout, "timeout", "", "per-request timeout, e.g. 5s")
	f.BoolVar(&opts.StrictSchema, "strict-schema", false, "validate responses against the todo JSON schema")
	f.StringVar(&opts.Theme, "theme", "", "classic|neon|mono")
	f.StringVar(&opts.LogLevel, "log-level", "", "debug|info|warn|error")
	f.StringVar(&opts.LogFormat, "log-format", "", "text|json|logfmt")
	f.StringVar(&opts.LogFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(
		newListCommand(opts),
		newAddCommand(opts),
		newDoneCommand(opts),
		newRenameCommand(opts),
		newRemoveCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
		newAuthCommand(opts),
	)
	closeAfterRun(cmd, opts)
	return cmd
}

// closeAfterRun releases files opened during a run, including runs that
// fail. cobra skips post-run hooks after an error.
func closeAfterRun(c *cobra.Command, o *RootOptions) {
	if run := c.RunE; run != nil {
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer o.close()
			return run(cmd, args)
		}
	}
	for _, sub := range c.Commands() {
		closeAfterRun(sub, o)
	}
}

// rootArgs reports stray arguments as an unknown subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())
	if s := cmd.SuggestionsFor(args[0]); len(s) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(s, "\n\t")
	}
	return usagef("%s", msg)
}

// resolve loads config and lets explicitly set flags win.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = o.BaseURL
	}
	if flags.Changed("user-id") {
		cfg.UserID = o.UserID
	}
	if flags.Changed("timeout") {
		if err := cfg.Timeout.UnmarshalText([]byte(o.Timeout)); err != nil {
			return usagef("--timeout: %v", err)
		}
	}
	if flags.Changed("strict-schema") {
		cfg.StrictSchema = o.StrictSchema
	}
	if flags.Changed("theme") {
		cfg.Theme = o.Theme
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.LogFormat
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return usagef("config: %v", err)
	}
	ui.SetTheme(cfg.Theme)
	o.cfg = cfg
	return nil
}

// logger writes to the configured file, or to w.
func (o *RootOptions) logger(w io.Writer) (*log.Logger, error) {
	if o.cfg.LogFile != "" {
		f, err := logging.OpenFile(o.cfg.LogFile)
		if err != nil {
			return nil, err
		}
		o.closers = append(o.closers, f)
		w = f
	}
	return logging.New(w, logging.Options{
		Level:           o.cfg.LogLevel,
		Format:          o.cfg.LogFormat,
		ReportTimestamp: o.cfg.LogFile != "",
		Prefix:          "tada",
	}), nil
}

// tuiLogger never writes to the terminal: the alt screen owns it.
func (o *RootOptions) tuiLogger() (*log.Logger, error) {
	if o.cfg.LogFile == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		o.cfg.LogFile = filepath.Join(dir, "tada.log")
	}
	return o.logger(io.Discard)
}

func (o *RootOptions) client(logger *log.Logger) (*remote.Client, error) {
	token, err := auth.Token()
	if err != nil {
		return nil, err
	}
	return remote.New(remote.Options{
		BaseURL:      o.cfg.BaseURL,
		Token:        token,
		Timeout:      o.cfg.Timeout.Duration,
		StrictSchema: o.cfg.StrictSchema,
		Logger:       logger,
	})
}

func (o *RootOptions) session(logger *log.Logger) (*app.Session, error) {
	c, err := o.client(logger)
	if err != nil {
		return nil, err
	}
	return app.NewSession(c, app.Options{UserID: o.cfg.UserID, Logger: logger}), nil
}

// cmdSession is session() with logs on the command's stderr.
func (o *RootOptions) cmdSession(cmd *cobra.Command) (*app.Session, error) {
	logger, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return o.session(logger)
}

func (o *RootOptions) close() {
	for _, c := range o.closers {
		_ = c.Close()
	}
	o.closers = nil
}

// Execute runs the command tree and reports errors the tada way.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err != nil {
		ui.Fail(cmd.ErrOrStderr(), err.Error())
		if ExitCode(err) == 2 {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Current().Muted.Render("Run `todo --help` for usage."))
		}
	}
	return ExitCode(err)
}
