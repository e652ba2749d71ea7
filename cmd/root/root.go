// Package root contains the root command for the application.
package root

import (
	"fmt"
	"path/filepath"

	"finpipe/bank-csv/internal/categorizer"
	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/config"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/postfinanceparser"
	"finpipe/bank-csv/internal/revolutparser"
	"finpipe/bank-csv/internal/zkbparser"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands.
	Log = logging.GetLogger()

	// Cfg is the resolved application configuration.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "bank-csv",
		Short: "Normalize bank statement exports and categorize transactions.",
		Long: `bank-csv normalizes heterogeneous bank statement CSV exports (ZKB,
Revolut, PostFinance) into one canonical transaction schema and assigns a
spending category to each transaction through a layered cascade that learns
from user corrections.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to bank-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg

			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
			common.SetLogger(Log)
			zkbparser.SetLogger(Log)
			revolutparser.SetLogger(Log)
			postfinanceparser.SetLogger(Log)

			zkbparser.SetDefaultCurrency(cfg.Currencies.ZKB)
			revolutparser.SetDefaultCurrency(cfg.Currencies.Revolut)
			postfinanceparser.SetDefaultCurrency(cfg.Currencies.PostFinance)
			return nil
		},
	}
)

// NewCategorizer builds the categorizer from the resolved configuration,
// backed by the Gemini embedder.
func NewCategorizer() (*categorizer.Categorizer, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	apiKey := Cfg.Embedding.APIKey
	if apiKey == "" {
		apiKey = config.GetGeminiAPIKey()
	}
	embedder := categorizer.NewGeminiEmbedder(apiKey, Cfg.Embedding.Model, Log)

	return categorizer.New(categorizer.Options{
		DataDir:             Cfg.Data.Directory,
		MappingFile:         filepath.Join(Cfg.Data.Directory, "merchant_category_mapping.json"),
		SimilarityThreshold: Cfg.Categorization.SimilarityThreshold,
		ContextThreshold:    Cfg.Categorization.ContextThreshold,
		MinSubstringKeyLen:  Cfg.Categorization.MinSubstringKeyLen,
		BulkImportMinCount:  Cfg.Categorization.BulkImportMinCount,
	}, embedder, Log)
}
