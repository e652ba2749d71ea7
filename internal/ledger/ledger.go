// Package ledger stores the normalized transactions the categorization
// service works on. Entries get stable IDs so manual recategorization can
// address individual rows.
package ledger

import (
	"errors"

	"finpipe/bank-csv/internal/models"
)

// ErrNotFound is returned when an entry ID does not exist.
var ErrNotFound = errors.New("ledger entry not found")

// Entry is a stored transaction with its repository-assigned ID.
type Entry struct {
	ID          string `json:"id"`
	Transaction models.NormalizedTransaction
}

// Repository is the transaction storage abstraction used by the
// categorization service.
type Repository interface {
	// List returns all entries in storage order.
	List() ([]Entry, error)
	// Get returns the entry with the given ID.
	Get(id string) (Entry, error)
	// Put stores a new transaction and returns it with its assigned ID.
	Put(tx models.NormalizedTransaction) (Entry, error)
	// Update replaces an existing entry.
	Update(entry Entry) error
	// ReplaceAll swaps the complete content in one operation.
	ReplaceAll(entries []Entry) error
}
