// Package cmd defines the CLI commands for the sitehound executable.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitehound/sitehound/internal/logging"
	"github.com/sitehound/sitehound/pkg/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitehound",
		Short: "A recursive web scraper with media capture and site auditing.",
		Long: `sitehound crawls a set of seed URLs breadth and depth, extracting
links, text, forms, media assets, and script contents along the way.
It respects robots.txt, throttles itself per host, and can persist
page metadata and media to Postgres and blob storage.`,

		// Runs after flag parsing and config init, so the logger honors
		// --dev and the logging.development config key.
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.InitLogger(viper.GetBool("logging.development"))
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitehound/config.yaml)")
	cmd.PersistentFlags().Bool("dev", false, "enable development logging")
	if err := viper.BindPFlag("logging.development", cmd.PersistentFlags().Lookup("dev")); err != nil {
		cobra.CheckErr(err)
	}

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		// Flag parse failures abort before PersistentPreRun runs; make
		// sure a real logger exists either way.
		logging.InitLogger(false)
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
