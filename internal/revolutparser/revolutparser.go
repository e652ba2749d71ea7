// Package revolutparser normalizes Revolut comma-delimited account exports
// into the canonical transaction schema. Revolut reports signed amounts
// directly and has no grouped rows, so no expansion is needed.
package revolutparser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/dateutils"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"
)

// defaultCurrency is the fallback when the Currency column is empty.
var defaultCurrency = "EUR"

// SetDefaultCurrency overrides the fallback currency for rows without one.
func SetDefaultCurrency(currency string) {
	if currency != "" {
		defaultCurrency = currency
	}
}

// CSVRow represents a single row in a Revolut CSV export.
type CSVRow struct {
	Type          string `csv:"Type"`
	Product       string `csv:"Product"`
	StartedDate   string `csv:"Started Date"`
	CompletedDate string `csv:"Completed Date"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Fee           string `csv:"Fee"`
	Currency      string `csv:"Currency"`
	State         string `csv:"State"`
	Balance       string `csv:"Balance"`
}

var log = logging.GetLogger()

// SetLogger allows setting a configured logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
		common.SetLogger(logger)
	}
}

// Parse reads a Revolut CSV from r and maps each row onto the canonical
// schema. All rows pass through regardless of state; a row with an
// unparseable date survives with an empty value date.
func Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	rows, err := common.ReadCSVRows[CSVRow](r)
	if err != nil {
		return nil, fmt.Errorf("error reading Revolut CSV: %w", err)
	}

	transactions := make([]models.NormalizedTransaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, normalizeRow(row))
	}

	log.WithField(logging.FieldCount, len(transactions)).Info("Parsed Revolut statement")
	return transactions, nil
}

// ParseFile parses a Revolut statement file.
func ParseFile(filePath string) ([]models.NormalizedTransaction, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening Revolut file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()
	return Parse(file)
}

// ValidateFormat checks whether a file carries the expected Revolut header.
func ValidateFormat(filePath string) (bool, error) {
	firstLine, err := common.FirstLine(filePath)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(firstLine, "Type,Product,Started Date,Completed Date,Description"), nil
}

// normalizeRow maps one Revolut row onto the canonical schema. The completed
// date takes precedence over the started date; the signed amount is used as
// reported since Revolut's sign convention already matches the canonical one.
func normalizeRow(row CSVRow) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   normalizeDate(row),
		Description: strings.TrimSpace(row.Description),
		Type:        strings.TrimSpace(row.Type),
		Amount:      models.ParseAmount(row.Amount),
		Currency:    currency(row),
		Fee:         models.ParseAmount(row.Fee),
		Reference:   "",
	}
}

func normalizeDate(row CSVRow) string {
	raw := strings.TrimSpace(row.CompletedDate)
	if raw == "" {
		raw = strings.TrimSpace(row.StartedDate)
	}
	if raw == "" {
		return ""
	}
	if _, ok := dateutils.Parse(raw); !ok {
		log.WithField("date", raw).Warn("Unparseable Revolut date, keeping row without date")
		return ""
	}
	return dateutils.ToISO(raw)
}

func currency(row CSVRow) string {
	if v := strings.TrimSpace(row.Currency); v != "" {
		return v
	}
	return defaultCurrency
}
