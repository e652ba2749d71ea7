// Package common provides shared CSV functionality across the dialect
// parsers and the ledger.
package common

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"

	"github.com/gocarina/gocsv"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ReadCSVRows reads comma-delimited CSV data into a slice of structs using
// gocsv struct tags. TRow is the row struct mapping the CSV columns.
func ReadCSVRows[TRow any](r io.Reader) ([]TRow, error) {
	var rows []TRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	return rows, nil
}

// ReadRawRows reads delimiter-separated CSV data into raw header/value rows
// without interpreting any field. Used by the semicolon dialects where the
// delimiter is not gocsv's global comma.
func ReadRawRows(r io.Reader, delimiter rune) ([]models.RawStatementRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = trimBOM(header[i])
	}

	var rows []models.RawStatementRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithError(err).Warn("Skipping malformed CSV row")
			continue
		}
		rows = append(rows, models.RawStatementRow{Header: header, Values: record})
	}
	return rows, nil
}

// WriteTransactionsToCSV writes transactions to a CSV file in the canonical
// 8-column schema. All parsers and the pipeline use this single writer so
// the interchange format stays consistent.
func WriteTransactionsToCSV(transactions []models.NormalizedTransaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
	).Info("Writing transactions to CSV file")

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := gocsv.MarshalFile(&transactions, file); err != nil {
		return fmt.Errorf("error writing CSV file: %w", err)
	}
	return nil
}

// ReadTransactionsFromCSV reads a canonical-schema CSV file back into
// transactions.
func ReadTransactionsFromCSV(csvFile string) ([]models.NormalizedTransaction, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var transactions []models.NormalizedTransaction
	if err := gocsv.UnmarshalFile(file, &transactions); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return transactions, nil
}

// FirstLine returns the first line of a file, used for dialect detection.
func FirstLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if scanner.Scan() {
		return trimBOM(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	return "", nil
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}
