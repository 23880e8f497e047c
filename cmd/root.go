package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"listing-map/config"
	"listing-map/geocoder"
	"listing-map/services"
	"listing-map/source"
	"listing-map/source/fixture"
	"listing-map/source/monday"
	"listing-map/storage"
	"listing-map/utils"
)

var rootCmd = &cobra.Command{
	Use:   "listing-map",
	Short: "Listing map - property listings on a map",
	Long: `Listing map loads property listings from a board, geocodes their addresses
and serves them as map markers with route and print actions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("board", "", "Current board id (overrides MONDAY_BOARD_ID)")
	rootCmd.PersistentFlags().StringSlice("boards", nil, `Board selection: "current", "all" or board ids`)

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(LoadCmd())
	rootCmd.AddCommand(RouteCmd())
	rootCmd.AddCommand(PrintCmd())
	rootCmd.AddCommand(ExportCmd())
	rootCmd.AddCommand(CacheCmd())
}

func Execute() error {
	return rootCmd.Execute()
}

// app is everything a subcommand needs, built from config and flags.
type app struct {
	cfg       *config.Config
	logger    *utils.Logger
	source    source.DataSource
	cache     storage.GeocodeCache
	geocoder  *services.GeocodeService
	listener  *services.ContextListener
	dashboard *services.Dashboard
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg := config.Load()

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	if board, _ := cmd.Flags().GetString("board"); board != "" {
		cfg.MondayBoardID = board
	}
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	src, err := newSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	cache, err := newCache(ctx, cfg)
	if err != nil {
		logger.Warn("[app] Geocode cache %q unavailable, continuing without: %v", cfg.CacheBackend, err)
		cache = nil
	}

	geo := services.NewGeocodeService(geocoder.NewMapbox(cfg.MapboxAPIURL, cfg.MapboxToken), services.GeocoderOptions{
		Cache:       cache,
		MaxAge:      cfg.CacheMaxAge(),
		RouteTarget: services.ParseRouteTarget(cfg.RouteTarget),
		Concurrency: cfg.MaxConcurrency,
		RateLimitMs: cfg.RateLimitMs,
	}, logger)

	listener := services.NewContextListener(cfg.MondayBoardID)
	dash := services.NewDashboard(src, geo, listener, logger)

	if boards, _ := cmd.Flags().GetStringSlice("boards"); len(boards) > 0 {
		dash.UseBoards(boards)
	}

	logger.Debug("[app] Source %s | cache %s | concurrency %d | route %s",
		cfg.DataSource, cfg.CacheBackend, cfg.MaxConcurrency, cfg.RouteTarget)

	return &app{
		cfg:       cfg,
		logger:    logger,
		source:    src,
		cache:     cache,
		geocoder:  geo,
		listener:  listener,
		dashboard: dash,
	}, nil
}

// Close releases the cache and flushes the logger.
func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("[app] Closing cache: %v", err)
		}
	}
	a.logger.Sync()
}

func newSource(cfg *config.Config, logger *utils.Logger) (source.DataSource, error) {
	switch strings.ToLower(cfg.DataSource) {
	case "fixture":
		return fixture.New(cfg.FixturePath, logger), nil
	case "monday", "":
		if cfg.MondayAPIToken == "" {
			return nil, errors.New("MONDAY_API_TOKEN is required for the monday data source")
		}
		return monday.New(cfg.MondayAPIURL, cfg.MondayAPIToken, cfg.MaxRetries, logger), nil
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q (want monday or fixture)", cfg.DataSource)
	}
}

func newCache(ctx context.Context, cfg *config.Config) (storage.GeocodeCache, error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "none", "off":
		return nil, nil
	case "memory", "":
		return storage.NewMemoryCache(), nil
	case "sqlite":
		c, err := storage.NewSQLiteCache(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "postgres":
		c, err := storage.NewPostgresCache(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}
