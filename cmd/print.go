package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"listing-map/render"
	"listing-map/services"
)

// PrintCmd returns the print subcommand
func PrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Write a printable report of the given items",
		Long:  "Write a report of the given items. A .pdf output is rendered through headless Chrome; anything else gets HTML.",
		Args:  cobra.NoArgs,
		RunE:  runPrint,
	}

	cmd.Flags().StringSlice("item", nil, "Item id to include (repeatable)")
	cmd.Flags().StringP("out", "o", "./output/selected-properties.html", "Output file (.html or .pdf)")

	return cmd
}

func runPrint(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadAndSelect(ctx, a, cmd); err != nil {
		return err
	}

	doc, err := a.dashboard.Print(services.NewPrinter(), time.Now())
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if strings.EqualFold(filepath.Ext(out), ".pdf") {
		doc, err = render.NewPDFRenderer(a.cfg.ChromeBin, a.cfg.MaxRetries, a.logger).Render(ctx, doc)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("print: create output dir: %w", err)
	}
	if err := os.WriteFile(out, doc, 0644); err != nil {
		return fmt.Errorf("print: write %q: %w", out, err)
	}
	a.logger.Info("Report written to %s", out)
	return nil
}
