package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/roomdesk/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, b, err := newService(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		listenAddr := viper.GetString("server.listen")
		if cmd.Flags().Changed("listen") {
			listenAddr, _ = cmd.Flags().GetString("listen")
		}
		user := viper.GetString("server.username")
		if cmd.Flags().Changed("username") {
			user, _ = cmd.Flags().GetString("username")
		}
		pass := viper.GetString("server.password")
		if cmd.Flags().Changed("password") {
			pass, _ = cmd.Flags().GetString("password")
		}

		return server.New(svc, user, pass, viper.GetInt("dashboard.polling_interval_seconds")).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":3002", "HTTP listen address")
	serveCmd.Flags().String("username", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("password", "", "Basic auth password")
}
