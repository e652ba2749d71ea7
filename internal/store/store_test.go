package store

import (
	"os"
	"path/filepath"
	"testing"

	"finpipe/bank-csv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFilesYieldsEmptyState(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	state := s.Load()
	assert.Empty(t, state.Merchants)
	assert.Empty(t, state.Embeddings)
	assert.Empty(t, state.Corrections)
	assert.NotNil(t, state.Merchants)
	assert.NotNil(t, state.Embeddings)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	state := NewState()
	state.Merchants["Migros Zurich"] = models.CategoryGroceries
	state.Merchants["Joe's Pizza"] = models.CategoryDining
	state.Embeddings["Migros Zurich"] = []float32{0.1, 0.2, 0.3}
	state.Embeddings["Joe's Pizza"] = []float32{0.4, 0.5, 0.6}
	state.Corrections = append(state.Corrections,
		models.NewCorrectionRecord("Joe's Pizza", models.CategoryLeisure, models.CategoryDining, nil))

	require.NoError(t, s.Save(state))

	loaded := s.Load()
	assert.Equal(t, state.Merchants, loaded.Merchants)
	assert.Equal(t, state.Embeddings, loaded.Embeddings)
	require.Len(t, loaded.Corrections, 1)
	assert.Equal(t, "Joe's Pizza", loaded.Corrections[0].Merchant)
	assert.True(t, loaded.Corrections[0].Overturned())
}

func TestLoadCorruptFilesDegradeToEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	// A valid merchants file next to corrupt embeddings and corrections:
	// only the corrupt parts reset.
	state := NewState()
	state.Merchants["Migros"] = models.CategoryGroceries
	require.NoError(t, s.Save(state))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "merchant_embeddings.gob"), []byte("not gob"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_corrections.json"), []byte("{broken"), 0600))

	loaded := s.Load()
	assert.Equal(t, models.CategoryGroceries, loaded.Merchants["Migros"])
	assert.Empty(t, loaded.Embeddings)
	assert.Empty(t, loaded.Corrections)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	state := NewState()
	state.Merchants["A"] = models.CategoryDining
	state.Embeddings["A"] = []float32{1}
	require.NoError(t, s.Save(state))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{
		"known_merchants.json",
		"merchant_embeddings.gob",
		"user_corrections.json",
	}, names)
}

func TestNewCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
