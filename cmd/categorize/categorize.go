// Package categorize handles one-off categorizer operations: predicting a
// category for a merchant, recording corrections and inspecting state.
package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"finpipe/bank-csv/cmd/root"
	"finpipe/bank-csv/internal/categorizer"
	"finpipe/bank-csv/internal/common"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	merchant  string
	amount    string
	predicted string
	actual    string
	topK      int
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Work with the transaction categorizer directly",
	Long: `Run one-off categorizer operations: predict a category for a merchant
description, record a correction so future predictions improve, list similar
learned merchants or print categorizer statistics.`,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a category for a merchant description",
	RunE:  predictFunc,
}

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Record a categorization correction",
	RunE:  correctFunc,
}

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List learned merchants similar to a description",
	RunE:  similarFunc,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print categorizer statistics",
	RunE:  statsFunc,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Learn merchant mappings from an already-categorized canonical CSV",
	Long: `Bootstrap the categorizer from historical data: merchant/category pairs
seen often enough in the given canonical CSV are learned as known merchants.
Existing merchants are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: importFunc,
}

func init() {
	predictCmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant description (required)")
	predictCmd.Flags().StringVarP(&amount, "amount", "a", "", "Transaction amount for context boosts (optional)")
	predictCmd.MarkFlagRequired("merchant")

	correctCmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant description (required)")
	correctCmd.Flags().StringVarP(&predicted, "predicted", "p", "", "Category that was predicted")
	correctCmd.Flags().StringVarP(&actual, "category", "c", "", "Correct category (required)")
	correctCmd.MarkFlagRequired("merchant")
	correctCmd.MarkFlagRequired("category")

	similarCmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant description (required)")
	similarCmd.Flags().IntVarP(&topK, "top", "k", 5, "Number of similar merchants to list")
	similarCmd.MarkFlagRequired("merchant")

	Cmd.AddCommand(predictCmd)
	Cmd.AddCommand(correctCmd)
	Cmd.AddCommand(similarCmd)
	Cmd.AddCommand(statsCmd)
	Cmd.AddCommand(importCmd)
}

func predictFunc(cmd *cobra.Command, args []string) error {
	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}

	amt := decimal.Zero
	if amount != "" {
		amt, err = decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", amount, err)
		}
	}

	prediction, ok, err := cat.PredictWithContext(cmd.Context(), merchant, amt)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No prediction")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (confidence %.2f)\n", prediction.Category, prediction.Confidence)
	return nil
}

func correctFunc(cmd *cobra.Command, args []string) error {
	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}

	if err := cat.RecordCorrection(cmd.Context(), merchant, predicted, actual, nil); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded: %s -> %s\n", merchant, actual)
	return nil
}

func similarFunc(cmd *cobra.Command, args []string) error {
	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}

	similar, err := cat.SimilarMerchants(cmd.Context(), merchant, topK)
	if err != nil {
		return err
	}
	if len(similar) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No learned merchants yet")
		return nil
	}
	for _, s := range similar {
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %-15s %.2f\n", s.Merchant, s.Category, s.Similarity)
	}
	return nil
}

func importFunc(cmd *cobra.Command, args []string) error {
	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}
	return runImport(cmd.Context(), cat, args[0], cmd.OutOrStdout())
}

func runImport(ctx context.Context, cat *categorizer.Categorizer, path string, out io.Writer) error {
	transactions, err := common.ReadTransactionsFromCSV(path)
	if err != nil {
		return fmt.Errorf("error reading transactions: %w", err)
	}

	imported, err := cat.BulkImport(ctx, transactions)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d merchants from %d transactions\n", imported, len(transactions))
	return nil
}

func statsFunc(cmd *cobra.Command, args []string) error {
	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cat.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
