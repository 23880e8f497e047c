package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"listing-map/storage"
)

// ExportCmd returns the export subcommand
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loaded items to CSV",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().StringP("out", "o", "", "CSV file (overrides CSV_OUTPUT_PATH)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dashboard.Reload(ctx); err != nil {
		return err
	}

	out := a.cfg.CSVOutputPath
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		out = v
	}

	var w storage.ListingWriter
	w, err = storage.NewCSVWriter(out)
	if err != nil {
		return err
	}
	defer w.Close()

	items := a.dashboard.Visible()
	if err := w.Write(items); err != nil {
		return err
	}
	a.logger.Info("Exported %d items to %s", len(items), out)
	return nil
}
