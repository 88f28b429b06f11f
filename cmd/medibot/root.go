package main

import (
	"fmt"
	"os"
	"time"

	"medibot/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
)

var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:     "medibot",
	Short:   "Terminal client for the appointment assistant",
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	config.SetDefaults(settings)
	settings.AutomaticEnv()

	rootCmd.PersistentFlags().String("api", settings.GetString("API_BASE_URL"), "base URL of the Record Store and classifier")
	rootCmd.PersistentFlags().Int("timeout", settings.GetInt("HTTP_TIMEOUT_SECONDS"), "request timeout in seconds")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stderr")
	_ = settings.BindPFlag("API_BASE_URL", rootCmd.PersistentFlags().Lookup("api"))
	_ = settings.BindPFlag("HTTP_TIMEOUT_SECONDS", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = settings.BindPFlag("VERBOSE", rootCmd.PersistentFlags().Lookup("verbose"))
}

func requestTimeout() time.Duration {
	if s := settings.GetInt("HTTP_TIMEOUT_SECONDS"); s > 0 {
		return time.Duration(s) * time.Second
	}
	return 15 * time.Second
}
