package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <room> <row> <value>",
	Short: "Write the reason of one row",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, _ := cmd.Flags().GetString("field")

		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		unlock, err := lockMirror(b)
		if err != nil {
			return err
		}
		defer unlock()

		if err := svc.UpdateField(context.Background(), args[0], args[1], field, args[2]); err != nil {
			return err
		}
		fmt.Printf("[%s] row %s updated\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("field", "f", "", "Column to write (required by rooms whose policy names it)")
}
