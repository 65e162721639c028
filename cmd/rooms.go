package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// roomsCmd prints the occupancy of every room.
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Prints the number of complete rows in each room.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		rooms, err := svc.InitDashboard(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "ROOM\tLABEL\tOCCUPANCY\t")

		var total int
		for _, r := range rooms {
			fmt.Fprintf(w, "%s\t%s\t%d\t\n", r.ID, r.Label, r.Occupancy)
			total += r.Occupancy
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t \t%d\t\n", total)

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}
