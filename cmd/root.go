// Package cmd provides the launchpad command-line interface with layered
// configuration sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--port, --host, ...)
//  2. Environment variables with LAUNCHPAD_ prefix (LAUNCHPAD_SERVER_PORT, ...)
//  3. Configuration file (.launchpad.yml in the project root)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Launch, build and preview front-end projects",
	Long: `Launchpad detects which UI framework a project uses, resolves the
framework's adapter plugins, and drives the project's build engine through
dev, build and preview lifecycles.

Quick Start:
  launchpad init                  Scaffold a .launchpad.yml
  launchpad serve                 Start the dev server with config hot-reload
  launchpad detect                Show the detected framework
  launchpad build                 Run a production build
  launchpad preview               Serve the built output`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .launchpad.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("LAUNCHPAD_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".launchpad")
	}

	viper.SetEnvPrefix("LAUNCHPAD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file degrades to defaults without failing.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
