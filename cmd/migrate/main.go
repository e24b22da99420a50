package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"milo_career/config"
	"milo_career/db"
	"milo_career/logger"
	"milo_career/repository"
)

const app = "milo-migrate"

var (
	// Used for flags.
	sqlitePath  string
	databaseURL string
	batchSize   int
	maxProfiles int

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "Copy Yale alumni profiles from the local SQLite database into Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context())
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "path to the source SQLite database (default: data.sqlite_path from config)")
	rootCmd.Flags().StringVar(&databaseURL, "database-url", "", "target Postgres URL (default: DATABASE_URL)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 1000, "profiles per upsert batch")
	rootCmd.Flags().IntVar(&maxProfiles, "max-profiles", 0, "maximum profiles to read from SQLite, 0 means data.max_profiles")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func migrate(ctx context.Context) error {
	cfg := config.Load()
	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if sqlitePath == "" {
		sqlitePath = cfg.Data.SQLitePath
	}
	if databaseURL == "" {
		databaseURL = cfg.DB.PostgresURL
	}
	if databaseURL == "" {
		return errors.New("target database is not configured, pass --database-url or set DATABASE_URL")
	}
	if maxProfiles <= 0 {
		maxProfiles = cfg.Data.MaxProfiles
	}

	src, err := db.OpenSQLite(ctx, sqlitePath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", sqlitePath, err)
	}
	defer src.Close()

	profiles, err := repository.NewSQLiteProfileSource(src, maxProfiles).LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load profiles from sqlite: %w", err)
	}
	logger.Info("profiles read from sqlite", "path", sqlitePath, "count", len(profiles))

	pool, err := db.OpenPostgres(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	writer := repository.NewPostgresProfileWriter(pool)
	if err := writer.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	written, err := writer.Upsert(ctx, profiles, batchSize)
	if err != nil {
		return fmt.Errorf("upsert profiles (%d written): %w", written, err)
	}

	logger.Info("migration completed", "profiles", written)
	fmt.Printf("migrated %d profiles into yale_profiles\n", written)
	return nil
}
