package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"listing-map/render"
	"listing-map/server"
	"listing-map/services"
	"listing-map/source/fixture"
)

// ServeCmd returns the serve subcommand
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long:  "Load the selected boards, keep them fresh on context changes and serve markers, selection, route and print over HTTP.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	cmd.Flags().Bool("no-pdf", false, "Disable PDF printing")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.ListenAddr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	var pdf server.PDFRenderer
	if noPDF, _ := cmd.Flags().GetBool("no-pdf"); !noPDF {
		pdf = render.NewPDFRenderer(a.cfg.ChromeBin, a.cfg.MaxRetries, a.logger)
	}

	go a.dashboard.Run(ctx)

	// Edits to a fixture file count as a context change.
	if fx, ok := a.source.(*fixture.Source); ok {
		go func() {
			if err := fx.Watch(ctx, func() { a.listener.Set(a.listener.Current()) }); err != nil {
				a.logger.Warn("[serve] Fixture watch stopped: %v", err)
			}
		}()
	}

	a.logger.Info("=== Listing map starting ===")
	srv := server.New(addr, a.dashboard, a.listener, pdf, services.ParseRouteTarget(a.cfg.RouteTarget), a.logger)
	return srv.ListenAndServe(ctx)
}
