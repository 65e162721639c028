package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/roomdesk/pkg/records"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print every record of a room",
	RunE: func(cmd *cobra.Command, args []string) error {
		room, _ := cmd.Flags().GetString("room")
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		recs, err := svc.ListAllRecords(context.Background(), room)
		if err != nil {
			return err
		}
		return printRecords(recs, outputFlags, delimiter)
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.Flags().StringP("room", "r", "nbot", "Room to list")
	addOutputFlags(recordsCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "rcnds", "Output flags. Supported: r (row), c (contract), n (customer), d (due date), a (install amount), l (line of business), s (reason)")
	cmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")
}

func printRecords(recs []records.Record, outputFlags, delimiter string) error {
	for _, rec := range recs {
		line, err := formatRecord(rec, outputFlags, delimiter)
		if err != nil {
			return err
		}
		fmt.Println(line)
	}
	return nil
}

func formatRecord(rec records.Record, outputFlags, delimiter string) (string, error) {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'r':
			line += rec.RowRef + delimiter
		case 'c':
			line += rec.Contract + delimiter
		case 'n':
			line += rec.Customer + delimiter
		case 'd':
			line += rec.DueDate + delimiter
		case 'a':
			line += rec.InstallAmount + delimiter
		case 'l':
			line += rec.LineOfBusiness + delimiter
		case 's':
			line += rec.Reason + delimiter
		default:
			return "", fmt.Errorf("invalid output flag %q", f)
		}
	}
	return strings.TrimSuffix(line, delimiter), nil
}
