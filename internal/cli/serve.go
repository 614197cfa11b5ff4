package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-sync/internal/placeholder"
	"github.com/Makepad-fr/tada-sync/internal/store/jsonstore"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string
	Seed  string
	Token string
}

func newServeCommand(root *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local /todos server compatible with jsonplaceholder",
		Long: `Run a local /todos server compatible with jsonplaceholder.

Unlike the public service, writes are kept in memory for the life of the
process. Point the client at it with --base-url http://<addr>.

Example:
  todo serve --addr 127.0.0.1:3000 --seed todos.json
  todo --base-url http://127.0.0.1:3000 ls`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			seed, err := jsonstore.Load(opts.Seed)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			ps := placeholder.New(seed, placeholder.Options{Token: opts.Token, Logger: logger})

			ln, err := net.Listen("tcp", opts.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			logger.Info("serving", "addr", "http://"+ln.Addr().String(), "todos", len(seed))
			return serve(cmd.Context(), ln, ps.Handler())
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:3000", "listen address")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "JSON file with initial todos (see export)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "require this bearer token")
	return cmd
}

// serve runs h on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
