package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/roomdesk/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Count the records of a room by due-date period",
	RunE: func(cmd *cobra.Command, args []string) error {
		room, _ := cmd.Flags().GetString("room")
		periodStr, _ := cmd.Flags().GetString("period")

		period, err := report.ParsePeriod(periodStr)
		if err != nil {
			return err
		}

		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		recs, err := svc.ListAllRecords(context.Background(), room)
		if err != nil {
			return err
		}

		buckets := report.CountByPeriod(recs, period)
		if len(buckets) == 0 {
			fmt.Println("No records with a due date.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "PERIOD\tRECORDS\t")
		for _, bk := range buckets {
			fmt.Fprintf(w, "%s\t%d\t\n", bk.Key, bk.Count)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("room", "r", "nbot", "Room to report on")
	reportCmd.Flags().StringP("period", "p", "daily", "Bucket size: daily, weekly, monthly or yearly")
}
