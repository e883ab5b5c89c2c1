package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vbelous/shopscout/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "shopscout",
	Short: "ShopScout: a product scraping and question-answering tool",
	Long: `ShopScout scrapes product listings for a keyword, normalizes them into
canonical records, indexes them as embeddings, and answers questions about
the scraped products with citations.

Commands:
  scrape    Scrape product pages for a keyword into the record store
  index     Build or refresh the vector index from stored records
  ask       Ask a question about the indexed products
  export    Export stored records as JSONL or CSV
  features  Extract structured technical features from a stored record`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Secrets usually live in .env during local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// SHOPSCOUT_PROVIDER_API_KEY -> provider.api_key
	viper.SetEnvPrefix("SHOPSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("fetch.proxy_url", "SHOPSCOUT_FETCH_PROXY_URL")
	viper.BindEnv("fetch.proxy_api_key", "SHOPSCOUT_FETCH_PROXY_API_KEY")
	viper.BindEnv("fetch.host_rps", "SHOPSCOUT_FETCH_HOST_RPS")
	viper.BindEnv("fetch.attempt_budget", "SHOPSCOUT_FETCH_ATTEMPT_BUDGET")
	viper.BindEnv("provider.base_url", "SHOPSCOUT_PROVIDER_BASE_URL")
	viper.BindEnv("provider.api_key", "SHOPSCOUT_PROVIDER_API_KEY")
	viper.BindEnv("provider.chat_model", "SHOPSCOUT_PROVIDER_CHAT_MODEL")
	viper.BindEnv("provider.embedding_model", "SHOPSCOUT_PROVIDER_EMBEDDING_MODEL")
	viper.BindEnv("store.path", "SHOPSCOUT_STORE_PATH")
	viper.BindEnv("index.snapshot_path", "SHOPSCOUT_INDEX_SNAPSHOT_PATH")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// The proxy key commonly arrives under the upstream provider's own
	// variable name.
	if cfg.Fetch.ProxyAPIKey == "" {
		cfg.Fetch.ProxyAPIKey = os.Getenv("ZYTE_API_KEY")
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("DASHSCOPE_API_KEY")
	}
}
