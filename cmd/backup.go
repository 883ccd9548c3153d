package cmd

import (
	"errors"
	"fmt"

	"github.com/sergawain/gawain/gawain/services"
	"github.com/spf13/cobra"
)

var backupList bool

var backupCMD = &cobra.Command{
	Use:   "backup",
	Short: "export accounts, skills and requests as JSON to Spaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Spaces.Bucket == "" {
			return errors.New("spaces.bucket is not configured")
		}

		spaces, err := services.NewSpacesService(ctx,
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.Prefix,
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if backupList {
			keys, err := spaces.ListBackups(ctx)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(out, k)
			}
			return nil
		}

		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		key, snap, err := services.NewBackupService(db.BunDB(), spaces).Run(ctx)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Fprintf(out, "uploaded %s (%d accounts, %d skills, %d requests)\n",
			spaces.ObjectURL(key), len(snap.Accounts), len(snap.Skills), len(snap.Requests))
		return nil
	},
}

func init() {
	backupCMD.Flags().BoolVar(&backupList, "list", false, "list existing backups instead of taking one")
	rootCmd.AddCommand(backupCMD)
}
