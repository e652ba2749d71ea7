// Package preprocess handles the statement preprocessing command.
package preprocess

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"finpipe/bank-csv/cmd/root"
	"finpipe/bank-csv/internal/detector"
	"finpipe/bank-csv/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	outputFile string
	bankType   string
	quiet      bool
)

// Cmd represents the preprocess command.
var Cmd = &cobra.Command{
	Use:   "preprocess <input>",
	Short: "Normalize a bank statement export to the canonical CSV schema",
	Long: `Normalize a bank statement CSV export (ZKB, Revolut or PostFinance) into
the canonical transaction schema: grouped rows are flattened, vault transfer
signs corrected and each transaction categorized.`,
	Args: cobra.ExactArgs(1),
	RunE: preprocessFunc,
}

func init() {
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV file (default: <input>_normalized.csv)")
	Cmd.Flags().StringVarP(&bankType, "type", "t", "", "Force the bank dialect (zkb|revolut|postfinance)")
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the output path")
}

func preprocessFunc(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	opts := pipeline.Options{
		InputFile:  inputFile,
		OutputFile: outputFile,
	}
	if opts.OutputFile == "" {
		opts.OutputFile = defaultOutputFile(inputFile)
	}
	if bankType != "" {
		forced, ok := detector.ParseBankType(bankType)
		if !ok {
			return fmt.Errorf("unknown bank type %q (want zkb, revolut or postfinance)", bankType)
		}
		opts.ForcedType = forced
	}

	cat, err := root.NewCategorizer()
	if err != nil {
		return err
	}

	p := pipeline.New(cat, root.Cfg.Categorization.ConfidenceThreshold, root.Log)
	report, err := p.Preprocess(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), report.OutputFile)
		return nil
	}
	printReport(cmd, report)
	return nil
}

func defaultOutputFile(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return strings.TrimSuffix(inputFile, ext) + "_normalized.csv"
}

func printReport(cmd *cobra.Command, report *pipeline.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Bank type:        %s\n", report.BankType)
	fmt.Fprintf(out, "Rows read:        %d\n", report.RowsRead)
	fmt.Fprintf(out, "Transactions:     %d\n", report.Transactions)
	if report.ChildrenFound > 0 || report.ParentsRemoved > 0 {
		fmt.Fprintf(out, "Children found:   %d\n", report.ChildrenFound)
		fmt.Fprintf(out, "Parents removed:  %d\n", report.ParentsRemoved)
	}
	fmt.Fprintf(out, "Vault sign fixes: %d\n", report.VaultFixes)
	fmt.Fprintf(out, "Categorized:      %d\n", report.Categorized)
	fmt.Fprintf(out, "Uncounted:        %d\n", report.Uncounted)
	fmt.Fprintf(out, "Needs review:     %d\n", report.NeedsReview)
	if report.FirstDate != "" {
		fmt.Fprintf(out, "Date range:       %s to %s\n", report.FirstDate, report.LastDate)
	}

	if len(report.CategoryDistribution) > 0 {
		fmt.Fprintln(out, "Categories:")
		categories := make([]string, 0, len(report.CategoryDistribution))
		for category := range report.CategoryDistribution {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(out, "  %-15s %d\n", category, report.CategoryDistribution[category])
		}
	}

	fmt.Fprintf(out, "Output:           %s\n", report.OutputFile)
}
