package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sergawain/gawain/gawain/migration"
	"github.com/spf13/cobra"
)

var (
	migrateSource    string
	migrateReset     bool
	migrateBatchSize int
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "import a legacy SQLite database into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		source, err := migration.OpenLegacy(migrateSource)
		if err != nil {
			return err
		}
		defer source.Close()

		if migrateReset {
			slog.Warn("Truncating application tables before import", slog.String("type", "db"))
			if err := db.ResetAppTables(ctx); err != nil {
				return err
			}
		}

		migrator := migration.NewMigrator(source, db.BunDB())
		migrator.SetBatchSize(migrateBatchSize)
		if err := migrator.MigrateAll(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		// Imported rows carry explicit ids, so the serial sequences lag behind.
		for _, table := range []string{"crafting_requests", "skill_records"} {
			if _, err := db.ResetSequence(ctx, table); err != nil {
				return err
			}
		}

		stats := migrator.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "imported in %s\n", stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond))
		for _, name := range []string{"accounts", "skill_records", "crafting_requests"} {
			t, ok := stats.Tables[name]
			if !ok {
				continue
			}
			fmt.Fprintf(out, "  %-18s processed=%d imported=%d skipped=%d\n", name, t.Processed, t.Successful, t.Skipped)
			for _, r := range t.SkippedRecords {
				fmt.Fprintf(out, "    skipped %s: %s\n", r.ID, r.Reason)
			}
		}
		return nil
	},
}

func init() {
	migrateCMD.Flags().StringVar(&migrateSource, "sqlite", "gawain.db", "path to the legacy SQLite database")
	migrateCMD.Flags().BoolVar(&migrateReset, "reset", false, "truncate accounts, skills and requests before importing")
	migrateCMD.Flags().IntVar(&migrateBatchSize, "batch-size", 500, "rows per insert batch")
	rootCmd.AddCommand(migrateCMD)
}
