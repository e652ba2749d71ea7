package service

import (
	"context"
	"testing"

	"finpipe/bank-csv/internal/categorizer"
	"finpipe/bank-csv/internal/ledger"
	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCorrection struct {
	Merchant  string
	Predicted string
	Actual    string
}

// fakePredictor answers from a fixed table and records corrections.
type fakePredictor struct {
	predictions map[string]categorizer.Prediction
	corrections []recordedCorrection
	calls       int
}

func (f *fakePredictor) PredictWithContext(_ context.Context, merchant string, _ decimal.Decimal) (categorizer.Prediction, bool, error) {
	f.calls++
	p, ok := f.predictions[merchant]
	return p, ok, nil
}

func (f *fakePredictor) RecordCorrection(_ context.Context, merchant, predicted, actual string, _ *float64) error {
	f.corrections = append(f.corrections, recordedCorrection{merchant, predicted, actual})
	return nil
}

func (f *fakePredictor) Stats() categorizer.Stats {
	return categorizer.Stats{KnownMerchants: len(f.predictions)}
}

func tx(description string) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		ValueDate:   "2024-01-15",
		Description: description,
		Amount:      decimal.NewFromInt(-10),
		Currency:    "CHF",
	}
}

func TestCategorizeAll(t *testing.T) {
	predictor := &fakePredictor{predictions: map[string]categorizer.Prediction{
		"Migros":      {Category: models.CategoryGroceries, Confidence: 0.95},
		"Joe's Pizza": {Category: models.CategoryDining, Confidence: 0.65},
		"Odd Kiosk":   {Category: models.CategoryShopping, Confidence: 0.3},
	}}
	repo := ledger.NewMemoryRepositoryFrom([]models.NormalizedTransaction{
		tx("Migros"),
		tx("Joe's Pizza"),
		tx("Odd Kiosk"),
		tx("Mystery Vendor"),
	})
	svc := New(repo, predictor, nil)

	stats, err := svc.CategorizeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Categorized)
	assert.Equal(t, 1, stats.HighConfidence)
	assert.Equal(t, 1, stats.MediumConfidence)
	assert.Equal(t, 1, stats.LowConfidence)
	assert.Equal(t, 1, stats.Uncategorized)

	entries, err := repo.List()
	require.NoError(t, err)

	migros := entries[0].Transaction
	assert.Equal(t, models.CategoryGroceries, migros.Category)
	assert.Equal(t, 0.95, migros.Confidence())
	assert.Equal(t, models.CategoryGroceries, migros.PredictedCategory)

	mystery := entries[3].Transaction
	assert.Equal(t, models.CategoryUncategorized, mystery.Category)
	assert.Equal(t, 0.0, mystery.Confidence())
}

func TestCategorizeAllSkipsManualAndConfidentRows(t *testing.T) {
	predictor := &fakePredictor{predictions: map[string]categorizer.Prediction{
		"Manual Vendor":    {Category: models.CategoryShopping, Confidence: 0.9},
		"Confident Vendor": {Category: models.CategoryShopping, Confidence: 0.9},
	}}

	manual := tx("Manual Vendor")
	manual.Category = models.CategoryDining
	manual.IsManuallyCategorized = true

	confident := tx("Confident Vendor")
	confident.Category = models.CategoryTravel
	confident.SetConfidence(0.92)

	repo := ledger.NewMemoryRepositoryFrom([]models.NormalizedTransaction{manual, confident})
	svc := New(repo, predictor, nil)

	_, err := svc.CategorizeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, predictor.calls, "neither row may reach the predictor")

	entries, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, models.CategoryDining, entries[0].Transaction.Category)
	assert.Equal(t, models.CategoryTravel, entries[1].Transaction.Category)
}

func TestSetCategoryManuallyRecordsCorrectionAndPropagates(t *testing.T) {
	predictor := &fakePredictor{predictions: map[string]categorizer.Prediction{}}

	target := tx("Joe's Pizza")
	target.Category = models.CategoryLeisure
	target.PredictedCategory = models.CategoryLeisure
	target.SetConfidence(0.7)

	sibling := tx("Joe's Pizza")
	sibling.Category = models.CategoryLeisure

	manualSibling := tx("Joe's Pizza")
	manualSibling.Category = models.CategoryTravel
	manualSibling.IsManuallyCategorized = true

	other := tx("Migros")

	repo := ledger.NewMemoryRepository()
	targetEntry, err := repo.Put(target)
	require.NoError(t, err)
	siblingEntry, err := repo.Put(sibling)
	require.NoError(t, err)
	manualEntry, err := repo.Put(manualSibling)
	require.NoError(t, err)
	otherEntry, err := repo.Put(other)
	require.NoError(t, err)

	svc := New(repo, predictor, nil)
	require.NoError(t, svc.SetCategoryManually(context.Background(), targetEntry.ID, models.CategoryDining))

	// The overridden prediction becomes a correction.
	require.Len(t, predictor.corrections, 1)
	assert.Equal(t, recordedCorrection{"Joe's Pizza", models.CategoryLeisure, models.CategoryDining}, predictor.corrections[0])

	got, err := repo.Get(targetEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryDining, got.Transaction.Category)
	assert.True(t, got.Transaction.IsManuallyCategorized)
	assert.Equal(t, 1.0, got.Transaction.Confidence())

	// Non-manual rows with the identical description follow.
	got, err = repo.Get(siblingEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryDining, got.Transaction.Category)
	assert.True(t, got.Transaction.IsManuallyCategorized)
	assert.Equal(t, 1.0, got.Transaction.Confidence())

	// Already-manual rows and other merchants stay untouched.
	got, err = repo.Get(manualEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTravel, got.Transaction.Category)

	got, err = repo.Get(otherEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Transaction.Category)
}

func TestSetCategoryManuallyConfirmationRecordsNoCorrection(t *testing.T) {
	predictor := &fakePredictor{}

	target := tx("Migros")
	target.Category = models.CategoryGroceries
	target.PredictedCategory = models.CategoryGroceries

	repo := ledger.NewMemoryRepository()
	entry, err := repo.Put(target)
	require.NoError(t, err)

	svc := New(repo, predictor, nil)
	require.NoError(t, svc.SetCategoryManually(context.Background(), entry.ID, models.CategoryGroceries))

	assert.Empty(t, predictor.corrections)

	got, err := repo.Get(entry.ID)
	require.NoError(t, err)
	assert.True(t, got.Transaction.IsManuallyCategorized)
}

func TestSetCategoryManuallyUnknownID(t *testing.T) {
	svc := New(ledger.NewMemoryRepository(), &fakePredictor{}, nil)
	err := svc.SetCategoryManually(context.Background(), "nope", models.CategoryDining)
	assert.Error(t, err)
}

func TestReviewQueueSortedAscending(t *testing.T) {
	low := tx("Low Vendor")
	low.Category = models.CategoryShopping
	low.SetConfidence(0.4)

	lower := tx("Lower Vendor")
	lower.Category = models.CategoryDining
	lower.SetConfidence(0.2)

	confident := tx("Confident Vendor")
	confident.Category = models.CategoryTravel
	confident.SetConfidence(0.9)

	manual := tx("Manual Vendor")
	manual.Category = models.CategoryHealth
	manual.IsManuallyCategorized = true
	manual.SetConfidence(0.1)

	uncategorized := tx("Uncategorized Vendor")
	uncategorized.Category = models.CategoryUncategorized
	uncategorized.SetConfidence(0.0)

	repo := ledger.NewMemoryRepositoryFrom([]models.NormalizedTransaction{
		low, lower, confident, manual, uncategorized,
	})
	svc := New(repo, &fakePredictor{}, nil)

	queue, err := svc.ReviewQueue(0.8)
	require.NoError(t, err)

	require.Len(t, queue, 2)
	assert.Equal(t, "Lower Vendor", queue[0].Description)
	assert.Equal(t, "Low Vendor", queue[1].Description)
}

func TestRecategorizeOnlyTouchesPendingRows(t *testing.T) {
	predictor := &fakePredictor{predictions: map[string]categorizer.Prediction{
		"Pending Vendor": {Category: models.CategoryShopping, Confidence: 0.85},
	}}

	done := tx("Done Vendor")
	done.Category = models.CategoryDining
	done.SetConfidence(0.9)

	pending := tx("Pending Vendor")
	pending.Category = models.CategoryUncategorized

	repo := ledger.NewMemoryRepositoryFrom([]models.NormalizedTransaction{done, pending})
	svc := New(repo, predictor, nil)

	stats, err := svc.Recategorize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Categorized)
	assert.Equal(t, 1, predictor.calls)

	entries, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, models.CategoryDining, entries[0].Transaction.Category)
	assert.Equal(t, models.CategoryShopping, entries[1].Transaction.Category)
}

func TestStats(t *testing.T) {
	groceries := tx("Migros")
	groceries.Category = models.CategoryGroceries
	groceries.SetConfidence(0.95)

	dining := tx("Joe's Pizza")
	dining.Category = models.CategoryDining
	dining.IsManuallyCategorized = true
	dining.SetConfidence(1.0)

	pending := tx("Mystery Vendor")
	pending.Category = models.CategoryUncategorized

	repo := ledger.NewMemoryRepositoryFrom([]models.NormalizedTransaction{groceries, dining, pending})
	svc := New(repo, &fakePredictor{}, nil)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalTransactions)
	assert.Equal(t, 2, stats.Categorized)
	assert.InDelta(t, 66.67, stats.CategorizationRate, 0.01)
	assert.Equal(t, 1, stats.ManuallyCategorized)
	assert.Equal(t, 2, stats.HighConfidence)
	assert.Equal(t, map[string]int{
		models.CategoryGroceries: 1,
		models.CategoryDining:    1,
	}, stats.CategoryDistribution)
}
