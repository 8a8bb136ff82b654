// Package cmd provides the command-line interface for the handlebar template
// tool.
//
// Configuration is layered, highest priority first:
//  1. Command-line flags (--templates, --port, ...)
//  2. HANDLEBAR_ prefixed environment variables (HANDLEBAR_SERVER_PORT, ...)
//  3. A .handlebar.yml configuration file
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beaufortfrancois/templates/internal/config"
	"github.com/beaufortfrancois/templates/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "handlebar",
	Short: "Logic-less templating with strict whitespace control",
	Long: `handlebar compiles and renders logic-less templates in which data
modelling and data presentation are strictly separated.

Quick Start:
  handlebar render page data.json   Render a template against a data file
  handlebar check                   Compile every template in the store
  handlebar list                    List the templates in the store
  handlebar serve                   Start the live-reloading preview server`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .handlebar.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringP("templates", "t", "", "template directory")
}

// initConfig wires the configuration sources together before any command
// runs.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("HANDLEBAR_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".handlebar")
	}

	viper.SetEnvPrefix("HANDLEBAR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bound here rather than in init so the bindings survive viper.Reset.
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("templates.dir", rootCmd.PersistentFlags().Lookup("templates"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))

	// A missing config file is fine; defaults and flags take over.
	_ = viper.ReadInConfig()
}

// setup loads the configuration and builds the logger commands share.
func setup() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}
