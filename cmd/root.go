// Package cmd holds the gawainctl operator commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/database"
	"github.com/sergawain/gawain/gawain/logger"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gawainctl",
	Short:         "Operator tooling for the Gawain crafting board",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (*gawain.Config, error) {
	cfg, err := gawain.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDatabase connects and brings the schema up to date.
func openDatabase(ctx context.Context, cfg *gawain.Config) (*database.DB, error) {
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}
