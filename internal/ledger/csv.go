package ledger

import (
	"errors"
	"fmt"
	"io/fs"

	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"
)

// CSVRepository is a Repository backed by a canonical-schema CSV file. The
// file holds only the interchange columns, so per-row categorization state
// (confidence, manual flag) lives in memory for the lifetime of the
// repository and is not written back.
type CSVRepository struct {
	path string
	mem  *MemoryRepository
	log  logging.Logger
}

// NewCSVRepository loads a canonical CSV file into a repository. A missing
// file yields an empty repository that will create the file on first write.
func NewCSVRepository(path string, logger logging.Logger) (*CSVRepository, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	repo := &CSVRepository{path: path, mem: NewMemoryRepository(), log: logger}

	transactions, err := common.ReadTransactionsFromCSV(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repo, nil
		}
		return nil, fmt.Errorf("error loading ledger CSV: %w", err)
	}
	for _, tx := range transactions {
		repo.mem.Put(tx)
	}
	return repo, nil
}

// List returns all entries in file order.
func (r *CSVRepository) List() ([]Entry, error) {
	return r.mem.List()
}

// Get returns the entry with the given ID.
func (r *CSVRepository) Get(id string) (Entry, error) {
	return r.mem.Get(id)
}

// Put stores a new transaction and rewrites the file.
func (r *CSVRepository) Put(tx models.NormalizedTransaction) (Entry, error) {
	entry, err := r.mem.Put(tx)
	if err != nil {
		return Entry{}, err
	}
	return entry, r.flush()
}

// Update replaces an existing entry and rewrites the file.
func (r *CSVRepository) Update(entry Entry) error {
	if err := r.mem.Update(entry); err != nil {
		return err
	}
	return r.flush()
}

// ReplaceAll swaps the complete content and rewrites the file.
func (r *CSVRepository) ReplaceAll(entries []Entry) error {
	if err := r.mem.ReplaceAll(entries); err != nil {
		return err
	}
	return r.flush()
}

func (r *CSVRepository) flush() error {
	entries, err := r.mem.List()
	if err != nil {
		return err
	}
	transactions := make([]models.NormalizedTransaction, len(entries))
	for i, entry := range entries {
		transactions[i] = entry.Transaction
	}
	return common.WriteTransactionsToCSV(transactions, r.path)
}
