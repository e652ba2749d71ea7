// Package pipeline wires the full statement flow: detect the bank dialect,
// parse and normalize, fix vault transfer signs, categorize in bulk, sort
// and write the canonical CSV.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/dateutils"
	"finpipe/bank-csv/internal/detector"
	"finpipe/bank-csv/internal/ledger"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"
	"finpipe/bank-csv/internal/parsererror"
	"finpipe/bank-csv/internal/postfinanceparser"
	"finpipe/bank-csv/internal/revolutparser"
	"finpipe/bank-csv/internal/service"
	"finpipe/bank-csv/internal/signfix"
	"finpipe/bank-csv/internal/zkbparser"
)

// Options controls one preprocessing run.
type Options struct {
	InputFile  string
	OutputFile string
	// ForcedType overrides dialect detection. Leave Unknown to autodetect.
	ForcedType detector.BankType
}

// Report summarizes one preprocessing run.
type Report struct {
	InputFile            string            `json:"input_file"`
	OutputFile           string            `json:"output_file"`
	BankType             detector.BankType `json:"bank_type"`
	RowsRead             int               `json:"rows_read"`
	Transactions         int               `json:"transactions"`
	ChildrenFound        int               `json:"children_found"`
	ParentsRemoved       int               `json:"parents_removed"`
	VaultFixes           int               `json:"vault_fixes"`
	Categorized          int               `json:"categorized"`
	Uncounted            int               `json:"uncounted"`
	NeedsReview          int               `json:"needs_review"`
	CategoryDistribution map[string]int    `json:"category_distribution"`
	FirstDate            string            `json:"first_date,omitempty"`
	LastDate             string            `json:"last_date,omitempty"`
}

// Pipeline runs statements end to end. The predictor may be backed by any
// Embedder; categorization failures degrade to uncategorized output instead
// of aborting the run.
type Pipeline struct {
	predictor       service.Predictor
	reviewThreshold float64
	log             logging.Logger
}

// New creates a pipeline. reviewThreshold bounds the needs-review count in
// the report.
func New(predictor service.Predictor, reviewThreshold float64, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Pipeline{predictor: predictor, reviewThreshold: reviewThreshold, log: logger}
}

// Preprocess runs one statement file through the full flow and writes the
// canonical CSV. Fatal errors are limited to unreadable input, an
// undetectable dialect without override, and unwritable output.
func (p *Pipeline) Preprocess(ctx context.Context, opts Options) (*Report, error) {
	firstLine, err := common.FirstLine(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}

	bankType := opts.ForcedType
	if bankType == "" || bankType == detector.Unknown {
		bankType = detector.Detect(opts.InputFile, firstLine)
	}
	if bankType == detector.Unknown {
		return nil, &parsererror.UnknownDialectError{FilePath: opts.InputFile}
	}

	p.log.WithFields(
		logging.Field{Key: logging.FieldInputFile, Value: opts.InputFile},
		logging.Field{Key: logging.FieldBankType, Value: string(bankType)},
	).Info("Preprocessing statement")

	report := &Report{
		InputFile:            opts.InputFile,
		OutputFile:           opts.OutputFile,
		BankType:             bankType,
		CategoryDistribution: make(map[string]int),
	}

	transactions, err := p.parse(bankType, opts.InputFile, report)
	if err != nil {
		return nil, err
	}
	report.Transactions = len(transactions)

	report.VaultFixes = signfix.Apply(transactions)

	repo := ledger.NewMemoryRepositoryFrom(transactions)
	p.categorize(ctx, repo, report)

	entries, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("error collecting transactions: %w", err)
	}
	transactions = make([]models.NormalizedTransaction, len(entries))
	for i, entry := range entries {
		transactions[i] = entry.Transaction
	}

	sortNewestFirst(transactions)
	summarize(transactions, report)

	if err := common.WriteTransactionsToCSV(transactions, opts.OutputFile); err != nil {
		return nil, fmt.Errorf("error writing output file: %w", err)
	}
	return report, nil
}

func (p *Pipeline) parse(bankType detector.BankType, inputFile string, report *Report) ([]models.NormalizedTransaction, error) {
	switch bankType {
	case detector.ZKB:
		if err := validateFormat(inputFile, bankType, zkbparser.ValidateFormat); err != nil {
			return nil, err
		}
		transactions, stats, err := zkbparser.ParseFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing ZKB statement: %w", err)
		}
		report.RowsRead = stats.RowsRead
		report.ChildrenFound = stats.ChildrenFound
		report.ParentsRemoved = stats.ParentsRemoved
		return transactions, nil
	case detector.Revolut:
		if err := validateFormat(inputFile, bankType, revolutparser.ValidateFormat); err != nil {
			return nil, err
		}
		transactions, err := revolutparser.ParseFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing Revolut statement: %w", err)
		}
		report.RowsRead = len(transactions)
		return transactions, nil
	case detector.PostFinance:
		if err := validateFormat(inputFile, bankType, postfinanceparser.ValidateFormat); err != nil {
			return nil, err
		}
		transactions, err := postfinanceparser.ParseFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing PostFinance statement: %w", err)
		}
		report.RowsRead = len(transactions)
		return transactions, nil
	}
	return nil, &parsererror.UnknownDialectError{FilePath: inputFile}
}

// validateFormat double-checks the file against the dialect before parsing,
// so a wrong --type override fails with a clear error instead of producing a
// garbage ledger.
func validateFormat(inputFile string, bankType detector.BankType, check func(string) (bool, error)) error {
	ok, err := check(inputFile)
	if err != nil {
		return fmt.Errorf("error validating input file: %w", err)
	}
	if !ok {
		return &parsererror.InvalidFormatError{
			FilePath:       inputFile,
			ExpectedFormat: string(bankType),
			Msg:            "file header does not match the dialect",
		}
	}
	return nil
}

// categorize runs bulk categorization. Failures leave rows uncategorized
// with a warning; they never abort preprocessing.
func (p *Pipeline) categorize(ctx context.Context, repo ledger.Repository, report *Report) {
	if p.predictor == nil {
		return
	}

	svc := service.New(repo, p.predictor, p.log)
	bulk, err := svc.CategorizeAll(ctx)
	if err != nil {
		p.log.WithError(err).Warn("Categorization failed, output left uncategorized")
		return
	}
	report.Categorized = bulk.Categorized

	review, err := svc.ReviewQueue(p.reviewThreshold)
	if err != nil {
		p.log.WithError(err).Warn("Could not build review queue")
		return
	}
	report.NeedsReview = len(review)
}

func sortNewestFirst(transactions []models.NormalizedTransaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return dateutils.SortKey(transactions[i].ValueDate).After(dateutils.SortKey(transactions[j].ValueDate))
	})
}

func summarize(transactions []models.NormalizedTransaction, report *Report) {
	for _, tx := range transactions {
		switch tx.Category {
		case "":
		case models.CategoryUncounted:
			report.Uncounted++
			report.CategoryDistribution[tx.Category]++
		default:
			report.CategoryDistribution[tx.Category]++
		}
		if tx.ValueDate == "" {
			continue
		}
		if report.FirstDate == "" || tx.ValueDate < report.FirstDate {
			report.FirstDate = tx.ValueDate
		}
		if report.LastDate == "" || tx.ValueDate > report.LastDate {
			report.LastDate = tx.ValueDate
		}
	}
}
