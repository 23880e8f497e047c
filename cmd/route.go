package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"listing-map/services"
)

// RouteCmd returns the route subcommand
func RouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Print a directions URL through the given items",
		Long:  "Build a directions URL through the given items in order. The last item is the destination.",
		Args:  cobra.NoArgs,
		RunE:  runRoute,
	}

	cmd.Flags().StringSlice("item", nil, "Item id to route through (repeatable, in order)")
	cmd.Flags().String("target", "", "Maps application: google or apple (overrides ROUTE_TARGET)")

	return cmd
}

func runRoute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadAndSelect(ctx, a, cmd); err != nil {
		return err
	}

	target := a.cfg.RouteTarget
	if t, _ := cmd.Flags().GetString("target"); t != "" {
		target = t
	}
	url, err := a.dashboard.Route(services.ParseRouteTarget(target))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

// loadAndSelect runs the pipeline and selects every --item in order.
func loadAndSelect(ctx context.Context, a *app, cmd *cobra.Command) error {
	if err := a.dashboard.Reload(ctx); err != nil {
		return err
	}
	ids, _ := cmd.Flags().GetStringSlice("item")
	for _, id := range ids {
		if err := a.dashboard.Select(id, true); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	return nil
}
