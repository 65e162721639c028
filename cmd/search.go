package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/roomdesk/pkg/query"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search a room by identifier, due date and reason status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room, _ := cmd.Flags().GetString("room")
		dateStr, _ := cmd.Flags().GetString("date")
		statusStr, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		var text string
		if len(args) > 0 {
			text = args[0]
		}
		date, err := query.ParseDate(dateStr)
		if err != nil {
			return err
		}
		status, err := query.ParseStatus(statusStr)
		if err != nil {
			return err
		}

		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		res, err := svc.EnterCategory(context.Background(), room, query.Query{
			Text:       text,
			DateFilter: date,
			Status:     status,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			return err
		}

		if err := printRecords(res.Page, outputFlags, delimiter); err != nil {
			return err
		}
		fmt.Printf("\npage %d/%d, %d matching records\n", res.CurrentPage, res.TotalPages, res.TotalRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("room", "r", "nbot", "Room to search")
	searchCmd.Flags().String("date", "", "Only records due on this date (YYYY-MM-DD)")
	searchCmd.Flags().String("status", "all", "Reason status: all, filled or empty")
	searchCmd.Flags().Int("page", 1, "Page number")
	searchCmd.Flags().Int("page-size", query.DefaultPageSize, "Records per page")
	addOutputFlags(searchCmd)
}
