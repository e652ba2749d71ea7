package ledger

import (
	"path/filepath"
	"testing"

	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(description, amount string) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   "2024-01-15",
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "CHF",
	}
}

func TestMemoryRepositoryCRUD(t *testing.T) {
	repo := NewMemoryRepository()

	entry, err := repo.Put(tx("Migros", "-20.50"))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)

	got, err := repo.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Migros", got.Transaction.Description)

	got.Transaction.Category = models.CategoryGroceries
	require.NoError(t, repo.Update(got))

	got, err = repo.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryGroceries, got.Transaction.Category)

	_, err = repo.Get("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(Entry{ID: "nonexistent"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryPreservesOrder(t *testing.T) {
	repo := NewMemoryRepositoryFrom([]models.NormalizedTransaction{
		tx("first", "-1.00"),
		tx("second", "-2.00"),
		tx("third", "-3.00"),
	})

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Transaction.Description)
	assert.Equal(t, "second", entries[1].Transaction.Description)
	assert.Equal(t, "third", entries[2].Transaction.Description)
}

func TestMemoryRepositoryReplaceAll(t *testing.T) {
	repo := NewMemoryRepositoryFrom([]models.NormalizedTransaction{tx("old", "-1.00")})

	require.NoError(t, repo.ReplaceAll([]Entry{
		{Transaction: tx("new one", "-2.00")},
		{ID: "fixed-id", Transaction: tx("new two", "-3.00")},
	}))

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ID, "missing IDs are assigned")
	assert.Equal(t, "fixed-id", entries[1].ID, "existing IDs are kept")
}

func TestCSVRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")

	repo, err := NewCSVRepository(path, nil)
	require.NoError(t, err)

	first := tx("Migros", "-20.50")
	first.Category = models.CategoryGroceries
	_, err = repo.Put(first)
	require.NoError(t, err)
	_, err = repo.Put(tx("Salary", "5000.00"))
	require.NoError(t, err)

	// A fresh repository over the same file sees both rows.
	reloaded, err := NewCSVRepository(path, nil)
	require.NoError(t, err)

	entries, err := reloaded.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Migros", entries[0].Transaction.Description)
	assert.Equal(t, models.CategoryGroceries, entries[0].Transaction.Category)
	assert.Equal(t, "-20.5", entries[0].Transaction.Amount.String())
	assert.Equal(t, "Salary", entries[1].Transaction.Description)
}

func TestCSVRepositoryMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.csv")

	repo, err := NewCSVRepository(path, nil)
	require.NoError(t, err)

	entries, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
