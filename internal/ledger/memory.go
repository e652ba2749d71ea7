package ledger

import (
	"sync"

	"finpipe/bank-csv/internal/models"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository, safe for concurrent use.
type MemoryRepository struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]Entry)}
}

// NewMemoryRepositoryFrom creates a repository pre-filled with transactions.
func NewMemoryRepositoryFrom(transactions []models.NormalizedTransaction) *MemoryRepository {
	repo := NewMemoryRepository()
	for _, tx := range transactions {
		repo.Put(tx)
	}
	return repo
}

// List returns all entries in insertion order.
func (r *MemoryRepository) List() ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.entries[id])
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (r *MemoryRepository) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Put stores a new transaction under a fresh ID.
func (r *MemoryRepository) Put(tx models.NormalizedTransaction) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := Entry{ID: uuid.New().String(), Transaction: tx}
	r.entries[entry.ID] = entry
	r.order = append(r.order, entry.ID)
	return entry, nil
}

// Update replaces an existing entry.
func (r *MemoryRepository) Update(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	r.entries[entry.ID] = entry
	return nil
}

// ReplaceAll swaps the complete content.
func (r *MemoryRepository) ReplaceAll(entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = make([]string, 0, len(entries))
	r.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		r.entries[entry.ID] = entry
		r.order = append(r.order, entry.ID)
	}
	return nil
}
