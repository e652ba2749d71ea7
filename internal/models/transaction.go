// Package models provides the data structures used throughout the pipeline.
package models

import (
	"github.com/shopspring/decimal"
)

// NormalizedTransaction is the canonical transaction every dialect normalizes
// into. The csv-tagged fields form the interchange schema consumed by the
// dashboard and any downstream analytics; the remaining fields carry
// categorization state and are persisted by the ledger, not exported to CSV.
type NormalizedTransaction struct {
	ValueDate   string          `csv:"value_date" json:"value_date"` // empty when the source date was unparseable
	Description string          `csv:"description" json:"description"`
	Type        string          `csv:"type" json:"type"`
	Amount      decimal.Decimal `csv:"amount" json:"amount"` // negative = money leaving the account
	Currency    string          `csv:"currency" json:"currency"`
	Fee         decimal.Decimal `csv:"fee" json:"fee"`
	Reference   string          `csv:"reference" json:"reference"`
	Category    string          `csv:"category" json:"category"`

	CategoryConfidence    *float64 `csv:"-" json:"category_confidence,omitempty"` // nil = never scored
	IsManuallyCategorized bool     `csv:"-" json:"is_manually_categorized"`
	PredictedCategory     string   `csv:"-" json:"predicted_category,omitempty"`
}

// HasDate reports whether the transaction carries a usable value date.
func (t *NormalizedTransaction) HasDate() bool {
	return t.ValueDate != ""
}

// Confidence returns the confidence score, or 0 when never scored.
func (t *NormalizedTransaction) Confidence() float64 {
	if t.CategoryConfidence == nil {
		return 0
	}
	return *t.CategoryConfidence
}

// SetConfidence stores a confidence score.
func (t *NormalizedTransaction) SetConfidence(v float64) {
	t.CategoryConfidence = &v
}

// NeedsCategory reports whether the transaction still needs automated
// categorization. Manual assignments and existing non-sentinel categories
// are left alone.
func (t *NormalizedTransaction) NeedsCategory() bool {
	if t.IsManuallyCategorized {
		return false
	}
	switch t.Category {
	case "", CategoryUncategorized, CategoryUncounted:
		return true
	}
	return false
}

// RawStatementRow is one CSV line of a bank export before any semantic
// interpretation: the header names paired with the raw string values.
type RawStatementRow struct {
	Header []string
	Values []string
}

// Get returns the raw value under the given column name, or "" when the
// column is absent or the row is short.
func (r RawStatementRow) Get(column string) string {
	for i, h := range r.Header {
		if h == column && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}
