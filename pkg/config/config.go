// Package config initializes the application's configuration. It uses
// Viper to merge settings from a config file, environment variables, and
// command-line flags into a unified view.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitehound/sitehound/internal/logging"
)

// InitConfig sets defaults, search paths, and env binding. Call once at
// startup, before any package reads configuration.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sitehound/")
	viper.AddConfigPath("$HOME/.sitehound")

	viper.SetDefault("scraper.seeds", []string{})
	viper.SetDefault("scraper.follow_links", true)
	viper.SetDefault("scraper.max_depth", 2)
	viper.SetDefault("scraper.user_agent", "")
	viper.SetDefault("scraper.target_phrase", "")
	viper.SetDefault("scraper.respect_robots", true)
	viper.SetDefault("scraper.probe_open_dirs", false)
	viper.SetDefault("scraper.script_keywords", []string{
		"apiKey",
		"api_key",
		"token",
		"secret",
		"password",
	})
	viper.SetDefault("scraper.request_timeout", "15s")
	viper.SetDefault("scraper.max_page_bytes", 10*1024*1024)
	viper.SetDefault("scraper.rate_per_host", 1.0)
	viper.SetDefault("scraper.delay_min", "500ms")
	viper.SetDefault("scraper.delay_max", "2s")
	viper.SetDefault("scraper.output_dir", "data/scrape")
	viper.SetDefault("scraper.error_log", "error.log")
	viper.SetDefault("scraper.concurrency", 4)

	viper.SetDefault("scraper.database_dsn", "")
	viper.SetDefault("scraper.gcs_bucket", "")
	viper.SetDefault("scraper.pubsub.project", "")
	viper.SetDefault("scraper.pubsub.topic", "")

	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("logging.development", false)

	viper.SetEnvPrefix("SITEHOUND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
