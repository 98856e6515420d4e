// ABOUTME: HTTP API and terminal UI subcommands
// ABOUTME: Both run until interrupted and share the store built by the root command
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/tui"
	"github.com/harperreed/dealdesk/web"
	"github.com/spf13/cobra"
)

func newServeCommand(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.HTTPAddr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			gin.SetMode(gin.ReleaseMode)
			server := web.NewServer(app.Store, app.Logger,
				web.WithRecentLimit(app.Config.RecentLimit),
				web.WithVersion(Version),
			)

			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", addr)
			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config http_addr)")
	return cmd
}

func newTUICommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse contacts, the pipeline board, and the activity feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if err := tui.Run(ctx, app.Store, app.Logger); err != nil {
				return fmt.Errorf("TUI failed: %w", err)
			}
			return nil
		},
	}
}

// signalContext is cancelled on SIGINT or SIGTERM so long-running commands
// still reach the root post-run and save the snapshot.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
