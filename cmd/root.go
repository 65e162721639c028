package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/roomdesk/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "roomdesk",
	Short: "Occupancy, search and follow-up notes over a shared spreadsheet.",
	Long: `roomdesk serves a small dashboard API on top of a Google Sheets spreadsheet:
occupancy counts per room, identifier search with date and status filters,
and single-cell updates of the reason column.

Rows are cached in memory for a few minutes and the cache of a room is
dropped on every accepted write.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.roomdesk.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "Backing store: sheets, sqlite or pubhtml (overrides config)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".roomdesk")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("roomdesk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.roomdesk.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	if b, _ := rootCmd.PersistentFlags().GetString("backend"); b != "" {
		viper.Set("backend", b)
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

func setDefaults() {
	viper.SetDefault("backend", "sheets")
	viper.SetDefault("sheets.spreadsheet_id", "")
	viper.SetDefault("sheets.token", "")
	viper.SetDefault("sheets.api_key", "")
	viper.SetDefault("sheets.timeout_seconds", 15)
	viper.SetDefault("sheets.retry_max", 3)
	viper.SetDefault("pubhtml.url", "")
	viper.SetDefault("pubhtml.gids", map[string]string{})
	viper.SetDefault("sqlite.path", "")
	viper.SetDefault("cache.ttl_seconds", 300)
	viper.SetDefault("dashboard.polling_interval_seconds", 7)
	viper.SetDefault("server.listen", ":3002")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
}
