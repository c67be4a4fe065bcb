package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m3rciful/todobot/core/app"
	coredatabase "github.com/m3rciful/todobot/core/database"
	"github.com/m3rciful/todobot/core/logger"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or revert database migrations",
	Long:      `Apply all pending migrations (up) or revert the last --steps migrations (down).`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(coredatabase.Up), string(coredatabase.Down)},
	RunE:      runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "migrations to revert with down (default 1)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := app.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage != app.StoragePostgres {
		return fmt.Errorf("migrate: storage %q has no schema", cfg.Storage)
	}
	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Shutdown() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coredatabase.Migrate(ctx, cfg.Database, coredatabase.Direction(args[0]), migrateSteps)
}
