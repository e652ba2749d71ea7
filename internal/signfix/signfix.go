// Package signfix corrects a known export defect: transfers into vaults and
// pockets are sometimes reported with a positive amount even though money
// leaves the account. Such rows are recognized by fixed description markers
// and negated.
package signfix

import (
	"strings"

	"finpipe/bank-csv/internal/models"
)

// vaultMarkers are the description substrings that identify an outgoing
// vault or pocket transfer. Matching is case-insensitive.
var vaultMarkers = []string{
	"to pocket",
	"to chf vault",
	"to chf tablet",
	"to chf gaming",
	"to eur",
}

// IsVaultTransfer reports whether a description carries a vault marker.
func IsVaultTransfer(description string) bool {
	lower := strings.ToLower(description)
	for _, marker := range vaultMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Apply negates the amount of every vault transfer reported positive and
// returns the number of rows fixed. Already-negative vault rows are left
// untouched, so applying twice changes nothing.
func Apply(transactions []models.NormalizedTransaction) int {
	fixed := 0
	for i := range transactions {
		if !transactions[i].Amount.IsPositive() {
			continue
		}
		if IsVaultTransfer(transactions[i].Description) {
			transactions[i].Amount = transactions[i].Amount.Neg()
			fixed++
		}
	}
	return fixed
}
