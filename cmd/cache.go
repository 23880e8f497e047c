package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// CacheCmd returns the cache parent command
func CacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the geocode cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <address>",
		Short: "Drop the cached geocode for an address",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCachePurge,
	})

	return cmd
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cache == nil {
		return errors.New("no geocode cache configured (CACHE_BACKEND)")
	}

	address := strings.Join(args, " ")
	if err := a.geocoder.Invalidate(ctx, address); err != nil {
		return err
	}
	a.logger.Info("Purged cached geocode for %q", address)
	return nil
}
