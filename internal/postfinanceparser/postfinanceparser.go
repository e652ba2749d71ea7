// Package postfinanceparser normalizes PostFinance semicolon-delimited
// account statements into the canonical transaction schema. Support is
// partial: date, description, the credit/debit pair and currency are mapped;
// fee and reference stay at their defaults.
package postfinanceparser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/dateutils"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
)

// PostFinance statement columns.
const (
	colDate         = "Date"
	colNotification = "Notification text"
	colCredit       = "Credit in CHF"
	colDebit        = "Debit in CHF"
	colCurrency     = "Currency"
)

// defaultCurrency is the fallback when no currency column is present.
var defaultCurrency = "CHF"

var log = logging.GetLogger()

// SetLogger allows setting a configured logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
		common.SetLogger(logger)
	}
}

// SetDefaultCurrency overrides the fallback currency for rows without one.
func SetDefaultCurrency(currency string) {
	if currency != "" {
		defaultCurrency = currency
	}
}

// Parse reads a PostFinance semicolon CSV from r and maps each row onto the
// canonical schema.
func Parse(r io.Reader) ([]models.NormalizedTransaction, error) {
	rows, err := common.ReadRawRows(r, ';')
	if err != nil {
		return nil, fmt.Errorf("error reading PostFinance CSV: %w", err)
	}

	transactions := make([]models.NormalizedTransaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, normalizeRow(row))
	}

	log.WithField(logging.FieldCount, len(transactions)).Info("Parsed PostFinance statement")
	return transactions, nil
}

// ParseFile parses a PostFinance statement file.
func ParseFile(filePath string) ([]models.NormalizedTransaction, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening PostFinance file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()
	return Parse(file)
}

// ValidateFormat checks whether a file looks like a PostFinance export:
// semicolon delimited with a "Notification text" header column.
func ValidateFormat(filePath string) (bool, error) {
	firstLine, err := common.FirstLine(filePath)
	if err != nil {
		return false, err
	}
	return strings.Contains(firstLine, ";") && strings.Contains(firstLine, colNotification), nil
}

func normalizeRow(row models.RawStatementRow) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   normalizeDate(row),
		Description: strings.TrimSpace(row.Get(colNotification)),
		Type:        "",
		Amount:      amount(row),
		Currency:    currency(row),
		Fee:         decimal.Zero,
		Reference:   "",
	}
}

func normalizeDate(row models.RawStatementRow) string {
	raw := strings.TrimSpace(row.Get(colDate))
	if raw == "" {
		return ""
	}
	if _, ok := dateutils.Parse(raw); !ok {
		log.WithField("date", raw).Warn("Unparseable PostFinance date, keeping row without date")
		return ""
	}
	return dateutils.ToISO(raw)
}

func amount(row models.RawStatementRow) decimal.Decimal {
	if v := strings.TrimSpace(row.Get(colDebit)); v != "" {
		return models.ParseAmount(v).Neg()
	}
	if v := strings.TrimSpace(row.Get(colCredit)); v != "" {
		return models.ParseAmount(v)
	}
	return decimal.Zero
}

func currency(row models.RawStatementRow) string {
	if v := strings.TrimSpace(row.Get(colCurrency)); v != "" {
		return v
	}
	return defaultCurrency
}
