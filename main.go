package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	api "github.com/rpupo63/portfolio-site-backend/api"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

var (
	rootCmd = &cobra.Command{
		Use:               "portfolio",
		Short:             "Portfolio site backend: public project API and admin back office",
		PersistentPreRunE: loadEnv,
		RunE:              runServe,
		SilenceUsage:      true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or alter the database tables",
		RunE:  runMigrate,
	}
	generateModelsCmd = &cobra.Command{
		Use:   "generate-models",
		Short: "Generate typed query helpers with gorm/gen",
		RunE:  runGenerateModels,
	}
	sweepMediaCmd = &cobra.Command{
		Use:   "sweep-media",
		Short: "Delete stored uploads that no project or gallery row references",
		RunE:  runSweepMedia,
	}

	// Flags
	seedCategories bool
	columnReport   bool
	verboseSQL     bool
	modelsOutPath  string
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339

	migrateCmd.Flags().BoolVar(&seedCategories, "seed", false, "Insert the default categories when the table is empty")
	migrateCmd.Flags().BoolVar(&columnReport, "report", false, "Print columns that differ between models and the live schema")
	migrateCmd.Flags().BoolVarP(&verboseSQL, "verbose", "v", false, "Echo migration SQL")
	generateModelsCmd.Flags().StringVar(&modelsOutPath, "out", "./query", "Output directory for generated code")

	rootCmd.AddCommand(serveCmd, migrateCmd, generateModelsCmd, sweepMediaCmd)
}

func loadEnv(cmd *cobra.Command, args []string) error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("error loading .env file")
	}
	if config.GetBool(config.New(), "LOG_PRETTY", false) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info().Msg("Initializing app...")
	c := config.New()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	currentDB := database.New(db)

	deps, err := newDependencies(cmd.Context(), c, currentDB)
	if err != nil {
		return err
	}

	var scheduler *services.SweepScheduler
	if spec := config.GetString(c, "MEDIA_SWEEP_CRON", ""); spec != "" {
		sweeper := services.NewMediaSweeper(currentDB, deps.Store, sweepGrace(c))
		if scheduler, err = services.NewSweepScheduler(sweeper, spec); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// buffered so the listener can still report after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, deps)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	c := config.New()
	db, err := openDatabase(c)
	if err != nil {
		return err
	}

	if err := models.Migrate(db, verboseSQL); err != nil {
		return err
	}
	log.Info().Msg("schema migrated")

	if seedCategories {
		n, err := models.SeedCategories(db)
		if err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
		log.Info().Int("inserted", n).Msg("categories seeded")
	}

	if columnReport {
		drift, err := models.ColumnDrift(db)
		if err != nil {
			return fmt.Errorf("column report: %w", err)
		}
		models.PrintColumnDrift(drift)
	}
	return nil
}

func runGenerateModels(cmd *cobra.Command, args []string) error {
	c := config.New()
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	log.Info().Str("out", modelsOutPath).Msg("Generating models and query helpers...")
	return models.GenerateModels(db, modelsOutPath)
}

func runSweepMedia(cmd *cobra.Command, args []string) error {
	c := config.New()
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	currentDB := database.New(db)

	store, err := openMediaStore(cmd.Context(), c)
	if err != nil {
		return err
	}

	report, err := services.NewMediaSweeper(currentDB, store, sweepGrace(c)).Sweep(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweeping media: %w", err)
	}
	log.Info().
		Int("scanned", report.Scanned).
		Int("kept", report.Kept).
		Int("recent", report.Recent).
		Int("failed", report.Failed).
		Strs("deleted", report.Deleted).
		Msg("media sweep finished")
	return nil
}

func newDependencies(ctx context.Context, c map[string]string, db database.Database) (api.Dependencies, error) {
	store, err := openMediaStore(ctx, c)
	if err != nil {
		return api.Dependencies{}, err
	}

	stagingDir := config.GetString(c, "MEDIA_STAGING_DIR", os.TempDir())
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return api.Dependencies{}, fmt.Errorf("creating staging directory: %w", err)
	}

	limits := services.UploadLimits{
		Cover:   config.GetInt64(c, "UPLOAD_MAX_COVER_BYTES", 0),
		Preview: config.GetInt64(c, "UPLOAD_MAX_PREVIEW_BYTES", 0),
		Gallery: config.GetInt64(c, "UPLOAD_MAX_GALLERY_BYTES", 0),
		Hero:    config.GetInt64(c, "UPLOAD_MAX_HERO_BYTES", 0),
	}

	return api.Dependencies{
		Database:     db,
		Projects:     services.NewProjectService(db, store, stagingDir, services.WithUploadLimits(limits)),
		Admin:        services.NewAdminService(db),
		Store:        store,
		MaxFormBytes: config.GetInt64(c, "MAX_FORM_BYTES", api.DefaultMaxFormBytes),
	}, nil
}

func sweepGrace(c map[string]string) time.Duration {
	return time.Duration(config.GetInt(c, "MEDIA_SWEEP_GRACE_MINUTES", 60)) * time.Minute
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
