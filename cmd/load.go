package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"listing-map/services"
)

// LoadCmd returns the load subcommand
func LoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the selected boards once and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runLoad,
	}
}

func runLoad(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dashboard.Reload(ctx); err != nil {
		return err
	}

	insights := services.NewInsightService(a.logger)
	insights.Print(os.Stdout, insights.Generate(a.dashboard.Items()))
	a.logger.Info("Geocoding used %d network lookups", a.geocoder.NetworkCalls())
	return nil
}
