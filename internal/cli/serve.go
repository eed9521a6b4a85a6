package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runoshun/taskboard/internal/app"
	"github.com/runoshun/taskboard/internal/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container, version string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board HTTP API",
		Long: `Serve the board JSON API used by the dashboard.

The store schema is created if it does not exist yet. The listen address
defaults to [server] address in config.toml (":8000").`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := c.StoreInitializer.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize store: %w", err)
			}

			if addr == "" {
				addr = c.AppConfig.Server.Address
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return serve(ctx, ln, web.NewServer(c, version).Handler(), c)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides [server] address)")
	return cmd
}

// serve runs the server on ln until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, ln net.Listener, h http.Handler, c *app.Container) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	c.SlogLog.Info("serving", "addr", ln.Addr().String(), "data_dir", c.Config.DataDir)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.SlogLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
