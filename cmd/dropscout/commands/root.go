package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/dropscout/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dropscout",
	Short: "Dropscout - dropshipping product validation",
	Long: `Dropscout Unified CLI

Scores a dropshipping product candidate from marketplace, social and
competition signals into a GREEN / AMBER / RED verdict with pricing advice.

Usage:
  go run ./cmd/dropscout [command]

Examples:
  go run ./cmd/dropscout serve
  go run ./cmd/dropscout validate --name "LED Strip" --category home
  go run ./cmd/dropscout batch products.json
  go run ./cmd/dropscout margin --buy 10 --sell 45
  go run ./cmd/dropscout scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// loadConfig applies global flags on top of the environment
func loadConfig() (*config.Config, error) {
	if env != "" {
		os.Setenv("ENV", env)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}
	return config.Load(configFile)
}
