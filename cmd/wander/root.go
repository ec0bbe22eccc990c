// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration, sets up logging and opens the configured storage backend

package main

import (
	"fmt"

	"github.com/harper/wander/internal/config"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	appConfig *config.Config
	store     *storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "wander",
	Short: "Record walks and rides from GPS",
	Long: `
██╗    ██╗ █████╗ ███╗   ██╗██████╗ ███████╗██████╗
██║    ██║██╔══██╗████╗  ██║██╔══██╗██╔════╝██╔══██╗
██║ █╗ ██║███████║██╔██╗ ██║██║  ██║█████╗  ██████╔╝
██║███╗██║██╔══██║██║╚██╗██║██║  ██║██╔══╝  ██╔══██╗
╚███╔███╔╝██║  ██║██║ ╚████║██████╔╝███████╗██║  ██║
 ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝ ╚══════╝╚═╝  ╚═╝

         Record trips, replay them, keep what you find

Examples:
  wander track --source gpsd://127.0.0.1:2947
  wander track --source walk.jsonl --realtime
  wander trips
  wander replay latest
  wander export latest --format geojson --segments`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logCfg := appConfig.LoggerConfig()
		if verbose {
			logCfg.Rules = "debug+:*"
		}
		logger, err := log.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		log.SetDefault(logger)

		config.BindFlags(cmd, config.FlagViper())

		store, err = appConfig.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = log.Default().Sync()
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/wander/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
