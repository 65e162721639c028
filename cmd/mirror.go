package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/roomdesk/internal/utils"
	"github.com/sw33tLie/roomdesk/pkg/dashboard"
)

// mirrorCmd copies every room's range from Google Sheets into the local
// SQLite mirror, which can then serve as the sqlite backend.
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy the spreadsheet ranges into the local SQLite mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := newSheetsClient(cmd)
		if err != nil {
			return err
		}

		lock, err := utils.NewDBLock(viper.GetString("sqlite.path"))
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := openMirror()
		if err != nil {
			return err
		}
		defer db.Close()

		for i, c := range dashboard.DefaultCategories() {
			rows, err := client.FetchRows(ctx, c.Sheet, c.Range)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", c.ID, err)
			}

			name, position := c.Sheet, i+1
			if name == "" {
				name, position = client.FirstSheet(ctx), 0
			}
			if err := db.ReplaceRange(ctx, name, position, c.Range, rows); err != nil {
				return fmt.Errorf("mirroring %s: %w", c.ID, err)
			}
			utils.Log.Infof("Mirrored %d rows of [%s] into sheet %s", len(rows), c.ID, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
}
