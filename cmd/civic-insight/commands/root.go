package commands

import (
	"context"
	"os/signal"
	"syscall"

	"civic-insight/internal/api"
	"civic-insight/internal/config"
	"civic-insight/internal/logging"
	"civic-insight/internal/rpc"
	"civic-insight/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	recordStore store.RecordStore
	storeClose  func()
)

var rootCmd = &cobra.Command{
	Use:   "civic-insight",
	Short: "Civic-Insight is an analytics and signal-detection server for municipal grievance data",
	Long: `A read-only analytics server that aggregates municipal grievance records and
detects early signals (rising subtopics, ward risk, chronic issues) over a
shared filter contract. Serves tools over stdio by default; see "http" for the
dashboard API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		recordStore, storeClose, err = openStore(cmd.Context(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open record store")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Civic-Insight starting")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storeClose != nil {
			storeClose()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("Tool server starting stdio loop")
		server := rpc.NewServer(cfg, recordStore)
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Tool server failed")
		}
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the analytics API over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := api.NewServer(cfg, recordStore)
		if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	},
}

// openStore picks Postgres when a DSN is configured, otherwise an in-memory
// store hydrated from the dataset directory.
func openStore(ctx context.Context, cfg *config.AppConfig) (store.RecordStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	mem := store.NewMemoryStore()
	if cfg.DatasetDir != "" {
		if err := mem.LoadDir(cfg.DatasetDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.DatasetDir).Msg("Failed to load dataset directory, starting empty")
		}
		if sources, err := mem.Sources(ctx); err == nil {
			for _, src := range sources {
				log.Info().Str("source", src).Int("records", mem.Count(src)).Msg("Dataset loaded")
			}
		}
	}
	return mem, func() {}, nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(httpCmd)
}
