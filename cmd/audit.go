package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the SQLite mirror and its write log",
}

var auditWritesCmd = &cobra.Command{
	Use:   "writes",
	Short: "Prints the most recent accepted writes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openMirror()
		if err != nil {
			return err
		}
		defer db.Close()

		writes, err := db.ListWrites(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(writes) == 0 {
			fmt.Println("No writes recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIME\tROOM\tSHEET\tCELL\tVALUE")
		for _, wr := range writes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t%s\n", wr.OccurredAt.Local().Format(time.DateTime), wr.Category, wr.Sheet, wr.Column, wr.RowRef, wr.Value)
		}
		return w.Flush()
	},
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the sheets in the mirror.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMirror()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No data in the mirror. Run `roomdesk mirror` first.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "SHEET\tROWS\tCELLS\t")

		var totalRows, totalCells int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Sheet, s.RowCount, s.CellCount)
			totalRows += s.RowCount
			totalCells += s.CellCount
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", totalRows, totalCells)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditWritesCmd)
	auditCmd.AddCommand(auditStatsCmd)
	auditWritesCmd.Flags().IntP("limit", "n", 50, "Number of writes to show")
}
