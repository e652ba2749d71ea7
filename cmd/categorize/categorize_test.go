package categorize

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"finpipe/bank-csv/internal/categorizer"
	"finpipe/bank-csv/internal/common"
	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func categorizedTx(description, category string) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   "2024-01-15",
		Description: description,
		Amount:      decimal.NewFromInt(-10),
		Currency:    "CHF",
		Category:    category,
	}
}

func TestRunImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")

	// Migros occurs twice and clears the frequency threshold; Coop does not.
	require.NoError(t, common.WriteTransactionsToCSV([]models.NormalizedTransaction{
		categorizedTx("Migros Zurich", models.CategoryGroceries),
		categorizedTx("Migros Zurich", models.CategoryGroceries),
		categorizedTx("Coop City", models.CategoryDining),
	}, path))

	cat, err := categorizer.New(categorizer.Options{DataDir: filepath.Join(dir, "data")}, stubEmbedder{}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runImport(context.Background(), cat, path, &out))

	assert.Contains(t, out.String(), "Imported 1 merchants from 3 transactions")
	assert.Equal(t, 1, cat.Stats().KnownMerchants)
}

func TestRunImportMissingFile(t *testing.T) {
	cat, err := categorizer.New(categorizer.Options{DataDir: t.TempDir()}, stubEmbedder{}, nil)
	require.NoError(t, err)

	err = runImport(context.Background(), cat, filepath.Join(t.TempDir(), "missing.csv"), &bytes.Buffer{})
	assert.Error(t, err)
}
