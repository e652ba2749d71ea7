// Package detector classifies raw statement files into bank dialects.
package detector

import (
	"path/filepath"
	"strings"
)

// BankType identifies a bank's CSV dialect.
type BankType string

const (
	ZKB         BankType = "zkb"
	Revolut     BankType = "revolut"
	PostFinance BankType = "postfinance"
	Unknown     BankType = "unknown"
)

// revolutHeaderPrefix is the exact start of a Revolut account export header.
const revolutHeaderPrefix = "Type,Product,Started Date,Completed Date,Description"

// ParseBankType converts a user-supplied dialect override to a BankType.
func ParseBankType(s string) (BankType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zkb":
		return ZKB, true
	case "revolut":
		return Revolut, true
	case "postfinance":
		return PostFinance, true
	}
	return Unknown, false
}

// Detect classifies a statement file by filename, then by the structural
// signature of its first line. It returns Unknown when no signature matches;
// callers must treat Unknown as a hard stop requiring an explicit dialect
// override.
func Detect(path, firstLine string) BankType {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.Contains(name, "zkb"), strings.Contains(name, "zürcher kantonalbank"):
		return ZKB
	case strings.Contains(name, "revolut"):
		return Revolut
	case strings.Contains(name, "postfinance"):
		return PostFinance
	}

	if strings.Contains(firstLine, ";") {
		if strings.Contains(firstLine, "Booking text") {
			return ZKB
		}
		if strings.Contains(firstLine, "Notification text") {
			return PostFinance
		}
		return Unknown
	}
	if strings.HasPrefix(firstLine, revolutHeaderPrefix) {
		return Revolut
	}

	return Unknown
}
