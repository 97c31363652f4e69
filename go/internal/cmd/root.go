package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcdev12/planningpoker/go/internal/config"
)

var (
	configPath   string
	logLevelFlag string
	cfg          config.Config
	version      = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "pokerclient",
	Short: "Planning poker room client",
	Long: `pokerclient joins a planning poker room, follows it live over the room
stream and lets you vote, reveal and confirm estimates from the terminal.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(joinCmd)
}
