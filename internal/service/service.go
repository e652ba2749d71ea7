// Package service orchestrates bulk categorization over a transaction
// repository: batch prediction, manual overrides with propagation to
// identical merchants, review queues and aggregate statistics.
package service

import (
	"context"
	"fmt"
	"sort"

	"finpipe/bank-csv/internal/categorizer"
	"finpipe/bank-csv/internal/ledger"
	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
)

// Predictor is the categorizer surface the service needs.
type Predictor interface {
	PredictWithContext(ctx context.Context, merchant string, amount decimal.Decimal) (categorizer.Prediction, bool, error)
	RecordCorrection(ctx context.Context, merchant, predicted, actual string, confidence *float64) error
	Stats() categorizer.Stats
}

// Confidence bands for bulk statistics.
const (
	highConfidence   = 0.8
	mediumConfidence = 0.6
)

// BulkStats summarizes one bulk categorization run.
type BulkStats struct {
	Total            int `json:"total"`
	Categorized      int `json:"categorized"`
	HighConfidence   int `json:"high_confidence"`
	MediumConfidence int `json:"medium_confidence"`
	LowConfidence    int `json:"low_confidence"`
	Uncategorized    int `json:"uncategorized"`
}

// Stats summarizes the whole ledger plus the categorizer state.
type Stats struct {
	TotalTransactions    int               `json:"total_transactions"`
	Categorized          int               `json:"categorized"`
	CategorizationRate   float64           `json:"categorization_rate"`
	ManuallyCategorized  int               `json:"manually_categorized"`
	HighConfidence       int               `json:"high_confidence"`
	MediumConfidence     int               `json:"medium_confidence"`
	LowConfidence        int               `json:"low_confidence"`
	Categorizer          categorizer.Stats `json:"categorizer"`
	CategoryDistribution map[string]int    `json:"category_distribution"`
}

// ReviewItem is one low-confidence prediction queued for manual review.
type ReviewItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Amount      string  `json:"amount"`
	ValueDate   string  `json:"value_date"`
	Currency    string  `json:"currency"`
}

// CategorizationService applies the categorizer to a ledger.
type CategorizationService struct {
	repo      ledger.Repository
	predictor Predictor
	log       logging.Logger
}

// New creates a categorization service.
func New(repo ledger.Repository, predictor Predictor, logger logging.Logger) *CategorizationService {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategorizationService{repo: repo, predictor: predictor, log: logger}
}

// CategorizeAll predicts a category for every transaction that needs one.
// Manual rows and rows already holding a confident non-placeholder category
// are left alone. All changes land in one ReplaceAll at the end.
func (s *CategorizationService) CategorizeAll(ctx context.Context) (BulkStats, error) {
	entries, err := s.repo.List()
	if err != nil {
		return BulkStats{}, fmt.Errorf("error listing transactions: %w", err)
	}
	return s.categorizeEntries(ctx, entries)
}

// Recategorize re-runs categorization over the rows still uncategorized,
// skipping manual assignments.
func (s *CategorizationService) Recategorize(ctx context.Context) (BulkStats, error) {
	entries, err := s.repo.List()
	if err != nil {
		return BulkStats{}, fmt.Errorf("error listing transactions: %w", err)
	}

	var pending []ledger.Entry
	for _, entry := range entries {
		if entry.Transaction.NeedsCategory() {
			pending = append(pending, entry)
		}
	}
	return s.categorizeEntries(ctx, pending)
}

// categorizeEntries categorizes the given entries, updates them through one
// aggregate write and returns the run statistics.
func (s *CategorizationService) categorizeEntries(ctx context.Context, entries []ledger.Entry) (BulkStats, error) {
	stats := BulkStats{Total: len(entries)}

	updated := make(map[string]ledger.Entry, len(entries))
	for _, entry := range entries {
		category, confidence, err := s.categorizeOne(ctx, &entry.Transaction)
		if err != nil {
			return stats, err
		}
		updated[entry.ID] = entry

		if category != "" && category != models.CategoryUncounted && category != models.CategoryUncategorized {
			stats.Categorized++
			switch {
			case confidence >= highConfidence:
				stats.HighConfidence++
			case confidence >= mediumConfidence:
				stats.MediumConfidence++
			default:
				stats.LowConfidence++
			}
		} else {
			stats.Uncategorized++
		}
	}

	all, err := s.repo.List()
	if err != nil {
		return stats, fmt.Errorf("error listing transactions: %w", err)
	}
	for i, entry := range all {
		if u, ok := updated[entry.ID]; ok {
			all[i] = u
		}
	}
	if err := s.repo.ReplaceAll(all); err != nil {
		return stats, fmt.Errorf("error writing categorized transactions: %w", err)
	}

	s.log.WithFields(
		logging.Field{Key: "total", Value: stats.Total},
		logging.Field{Key: "categorized", Value: stats.Categorized},
		logging.Field{Key: "uncategorized", Value: stats.Uncategorized},
	).Info("Bulk categorization finished")

	return stats, nil
}

// categorizeOne decides the category for one transaction in place and
// returns what it settled on. A no-prediction outcome falls back to
// Uncategorized with zero confidence.
func (s *CategorizationService) categorizeOne(ctx context.Context, tx *models.NormalizedTransaction) (string, float64, error) {
	if tx.IsManuallyCategorized {
		confidence := tx.Confidence()
		if tx.CategoryConfidence == nil {
			confidence = 1.0
		}
		return tx.Category, confidence, nil
	}
	if !tx.NeedsCategory() && tx.Confidence() > highConfidence {
		return tx.Category, tx.Confidence(), nil
	}

	prediction, ok, err := s.predictor.PredictWithContext(ctx, tx.Description, tx.Amount)
	if err != nil {
		return "", 0, fmt.Errorf("error predicting category: %w", err)
	}
	if ok {
		tx.Category = prediction.Category
		tx.SetConfidence(prediction.Confidence)
		tx.PredictedCategory = prediction.Category
		return prediction.Category, prediction.Confidence, nil
	}

	if tx.Category == "" {
		tx.Category = models.CategoryUncategorized
		tx.SetConfidence(0)
	}
	return tx.Category, 0, nil
}

// SetCategoryManually assigns a category to one transaction as a manual
// decision, records a correction when it overrides an earlier prediction,
// and propagates the category to every other non-manual transaction with
// the identical description.
func (s *CategorizationService) SetCategoryManually(ctx context.Context, id, category string) error {
	entry, err := s.repo.Get(id)
	if err != nil {
		return fmt.Errorf("error loading transaction: %w", err)
	}

	tx := &entry.Transaction
	if tx.PredictedCategory != "" && tx.PredictedCategory != category {
		if err := s.predictor.RecordCorrection(ctx, tx.Description, tx.PredictedCategory, category, tx.CategoryConfidence); err != nil {
			return fmt.Errorf("error recording correction: %w", err)
		}
	}

	tx.Category = category
	tx.IsManuallyCategorized = true
	tx.SetConfidence(1.0)
	if err := s.repo.Update(entry); err != nil {
		return fmt.Errorf("error updating transaction: %w", err)
	}

	if tx.Description == "" {
		return nil
	}

	entries, err := s.repo.List()
	if err != nil {
		return fmt.Errorf("error listing transactions: %w", err)
	}

	propagated := 0
	for _, other := range entries {
		if other.ID == id || other.Transaction.IsManuallyCategorized {
			continue
		}
		if other.Transaction.Description != tx.Description {
			continue
		}
		other.Transaction.Category = category
		other.Transaction.IsManuallyCategorized = true
		other.Transaction.SetConfidence(1.0)
		if err := s.repo.Update(other); err != nil {
			return fmt.Errorf("error propagating category: %w", err)
		}
		propagated++
	}

	if propagated > 0 {
		s.log.WithFields(
			logging.Field{Key: logging.FieldCategory, Value: category},
			logging.Field{Key: logging.FieldCount, Value: propagated},
			logging.Field{Key: logging.FieldMerchant, Value: tx.Description},
		).Info("Propagated manual category to matching transactions")
	}
	return nil
}

// ReviewQueue returns the non-manual, already-categorized transactions whose
// confidence is below threshold, least confident first.
func (s *CategorizationService) ReviewQueue(threshold float64) ([]ReviewItem, error) {
	entries, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	var items []ReviewItem
	for _, entry := range entries {
		tx := entry.Transaction
		if tx.IsManuallyCategorized || tx.CategoryConfidence == nil {
			continue
		}
		switch tx.Category {
		case "", models.CategoryUncategorized:
			continue
		}
		if tx.Confidence() >= threshold {
			continue
		}
		items = append(items, ReviewItem{
			ID:          entry.ID,
			Description: tx.Description,
			Category:    tx.Category,
			Confidence:  tx.Confidence(),
			Amount:      tx.Amount.String(),
			ValueDate:   tx.ValueDate,
			Currency:    tx.Currency,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Confidence < items[j].Confidence })
	return items, nil
}

// Stats summarizes the ledger. It never fails: repository errors produce a
// zeroed struct with the categorizer error string set.
func (s *CategorizationService) Stats() Stats {
	stats := Stats{
		Categorizer:          s.predictor.Stats(),
		CategoryDistribution: make(map[string]int),
	}

	entries, err := s.repo.List()
	if err != nil {
		stats.Categorizer.Err = err.Error()
		return stats
	}

	stats.TotalTransactions = len(entries)
	for _, entry := range entries {
		tx := entry.Transaction
		if tx.Category != "" && tx.Category != models.CategoryUncategorized {
			stats.Categorized++
			stats.CategoryDistribution[tx.Category]++
		}
		if tx.IsManuallyCategorized {
			stats.ManuallyCategorized++
		}
		switch c := tx.Confidence(); {
		case c >= highConfidence:
			stats.HighConfidence++
		case c >= mediumConfidence:
			stats.MediumConfidence++
		case c > 0:
			stats.LowConfidence++
		}
	}
	if stats.TotalTransactions > 0 {
		stats.CategorizationRate = float64(stats.Categorized) / float64(stats.TotalTransactions) * 100
	}
	return stats
}
