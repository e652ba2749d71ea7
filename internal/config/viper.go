package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Categorization struct {
		SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
		ContextThreshold    float64 `mapstructure:"context_threshold" yaml:"context_threshold"`
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		MinSubstringKeyLen  int     `mapstructure:"min_substring_key_len" yaml:"min_substring_key_len"`
		BulkImportMinCount  int     `mapstructure:"bulk_import_min_count" yaml:"bulk_import_min_count"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Embedding struct {
		Model  string `mapstructure:"model" yaml:"model"`
		APIKey string `mapstructure:"api_key" yaml:"-"` // never serialized
	} `mapstructure:"embedding" yaml:"embedding"`

	Currencies struct {
		ZKB         string `mapstructure:"zkb" yaml:"zkb"`
		Revolut     string `mapstructure:"revolut" yaml:"revolut"`
		PostFinance string `mapstructure:"postfinance" yaml:"postfinance"`
	} `mapstructure:"currencies" yaml:"currencies"`
}

// InitializeConfig loads configuration with hierarchical precedence:
// defaults, then config.yaml, then BANKCSV_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.bank-csv")
	v.AddConfigPath(".bank-csv")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BANKCSV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			Logger.Warnf("Error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	// API key always comes from the unprefixed environment variable.
	if err := v.BindEnv("embedding.api_key", "GEMINI_API_KEY"); err != nil {
		Logger.Warnf("Failed to bind GEMINI_API_KEY environment variable: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")

	v.SetDefault("categorization.similarity_threshold", 0.5)
	v.SetDefault("categorization.context_threshold", 0.4)
	v.SetDefault("categorization.confidence_threshold", 0.8)
	v.SetDefault("categorization.min_substring_key_len", 15)
	v.SetDefault("categorization.bulk_import_min_count", 2)

	v.SetDefault("embedding.model", "text-embedding-004")

	v.SetDefault("currencies.zkb", "CHF")
	v.SetDefault("currencies.revolut", "EUR")
	v.SetDefault("currencies.postfinance", "CHF")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}
	if t := config.Categorization.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("similarity threshold out of range: %f", t)
	}
	if t := config.Categorization.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("confidence threshold out of range: %f", t)
	}
	if config.Categorization.MinSubstringKeyLen < 1 {
		return fmt.Errorf("min substring key length must be positive")
	}
	return nil
}
