// Package zkbparser normalizes ZKB semicolon-delimited account statements
// into the canonical transaction schema. ZKB exports group several child
// transactions under one summary row; the expander flattens those before
// field mapping.
package zkbparser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/dateutils"
	"finpipe/bank-csv/internal/expander"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
)

// ZKB statement columns.
const (
	colDate        = "Date"
	colBookingText = "Booking text"
	colCurrency    = "Curr"
	colAmountDet   = "Amount details"
	colReference   = "Reference number"
	colDebit       = "Debit CHF"
	colCredit      = "Credit CHF"
	colValueDate   = "Value date"
	colPurpose     = "Payment purpose"
	colDetails     = "Details"
)

// defaultCurrency is the fallback when the Curr column is empty.
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

// Stats reports how the expander reshaped the statement.
type Stats struct {
	RowsRead       int
	ChildrenFound  int
	ParentsRemoved int
}

// Parse reads a ZKB semicolon CSV from r, expands grouped rows and maps each
// surviving row onto the canonical schema.
func Parse(r io.Reader) ([]models.NormalizedTransaction, Stats, error) {
	rows, err := common.ReadRawRows(r, ';')
	if err != nil {
		return nil, Stats{}, fmt.Errorf("error reading ZKB CSV: %w", err)
	}

	stats := Stats{RowsRead: len(rows)}
	expanded := expander.Expand(rows, colDate, colBookingText)
	stats.ChildrenFound = expanded.ChildrenFound
	stats.ParentsRemoved = expanded.ParentsRemoved

	transactions := make([]models.NormalizedTransaction, 0, len(expanded.Rows))
	for _, row := range expanded.Rows {
		transactions = append(transactions, normalizeRow(row))
	}

	log.WithField(logging.FieldCount, len(transactions)).Info("Parsed ZKB statement")
	return transactions, stats, nil
}

// ParseFile parses a ZKB statement file.
func ParseFile(filePath string) ([]models.NormalizedTransaction, Stats, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("error opening ZKB file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()
	return Parse(file)
}

// ValidateFormat checks whether a file looks like a ZKB export: semicolon
// delimited with a "Booking text" header column.
func ValidateFormat(filePath string) (bool, error) {
	firstLine, err := common.FirstLine(filePath)
	if err != nil {
		return false, err
	}
	return strings.Contains(firstLine, ";") && strings.Contains(firstLine, colBookingText), nil
}

// normalizeRow maps one expanded raw row onto the canonical schema. Field
// precedence: the dedicated value-date column over the booking date, the
// debit/credit pair over the generic amount details, the structured booking
// text over concatenated free-text fragments.
func normalizeRow(row models.RawStatementRow) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   normalizeDate(row),
		Description: description(row),
		Type:        "",
		Amount:      amount(row),
		Currency:    currency(row),
		Fee:         decimal.Zero, // ZKB does not report fees
		Reference:   strings.TrimSpace(row.Get(colReference)),
	}
}

func normalizeDate(row models.RawStatementRow) string {
	raw := strings.TrimSpace(row.Get(colValueDate))
	if raw == "" {
		raw = strings.TrimSpace(row.Get(colDate))
	}
	if raw == "" {
		return ""
	}
	if _, ok := dateutils.Parse(raw); !ok {
		log.WithField("date", raw).Warn("Unparseable ZKB date, keeping row without date")
		return ""
	}
	return dateutils.ToISO(raw)
}

func description(row models.RawStatementRow) string {
	if text := strings.TrimSpace(row.Get(colBookingText)); text != "" {
		return text
	}
	var fragments []string
	for _, col := range []string{colPurpose, colDetails} {
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			fragments = append(fragments, v)
		}
	}
	return strings.Join(fragments, " ")
}

// amount resolves the signed amount: credit entries are positive, debit
// entries negative, and child rows carry their own amount in the details
// column as a debit.
func amount(row models.RawStatementRow) decimal.Decimal {
	if v := strings.TrimSpace(row.Get(colDebit)); v != "" {
		return models.ParseAmount(v).Neg()
	}
	if v := strings.TrimSpace(row.Get(colCredit)); v != "" {
		return models.ParseAmount(v)
	}
	if v := strings.TrimSpace(row.Get(colAmountDet)); v != "" {
		return models.ParseAmount(v).Neg()
	}
	return decimal.Zero
}

func currency(row models.RawStatementRow) string {
	if v := strings.TrimSpace(row.Get(colCurrency)); v != "" {
		return v
	}
	return defaultCurrency
}
