// Package categorizer assigns spending categories to transaction
// descriptions through a layered cascade: curated merchant mapping, ordered
// keyword rules, learned merchants, then semantic embedding similarity. It
// learns online from user corrections and persists its state between runs.
package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"
	"finpipe/bank-csv/internal/store"

	"github.com/shopspring/decimal"
)

// Confidence levels assigned by the non-semantic cascade tiers.
const (
	mappingExactConfidence     = 1.0
	mappingSubstringConfidence = 0.9
	learnedExactConfidence     = 1.0
)

// Options configures a Categorizer.
type Options struct {
	// DataDir holds the persisted state triad.
	DataDir string
	// MappingFile is an optional curated merchant to category JSON mapping.
	// Missing files are fine, the mapping tier is simply empty then.
	MappingFile string
	// SimilarityThreshold is the default minimum cosine similarity for the
	// semantic tier.
	SimilarityThreshold float64
	// ContextThreshold is the looser threshold used by PredictWithContext.
	ContextThreshold float64
	// MinSubstringKeyLen guards the substring tier of the merchant mapping:
	// only keys at least this long may match as substrings, so short brand
	// names never swallow longer unrelated descriptions.
	MinSubstringKeyLen int
	// BulkImportMinCount is the minimum times a merchant/category pair must
	// occur in imported data before it is learned.
	BulkImportMinCount int
}

// Prediction is one cascade outcome.
type Prediction struct {
	Category   string
	Confidence float64
}

// SimilarMerchant is one entry of a similarity ranking.
type SimilarMerchant struct {
	Merchant   string
	Category   string
	Similarity float64
}

// Stats summarizes the categorizer state. It is always fully populated;
// failures surface in Err instead of an error return.
type Stats struct {
	KnownMerchants int      `json:"known_merchants"`
	MappingEntries int      `json:"mapping_entries"`
	Corrections    int      `json:"corrections"`
	Categories     []string `json:"categories"`
	Err            string   `json:"error,omitempty"`
}

// Categorizer is safe for concurrent use.
type Categorizer struct {
	opts     Options
	embedder Embedder
	log      logging.Logger

	mu          sync.Mutex
	mapping     map[string]string
	state       store.State
	adjustments map[string]float64
	repo        *store.Store
}

// New creates a categorizer, loading the curated mapping and any persisted
// state. State load failures degrade to an empty state with warnings.
func New(opts Options, embedder Embedder, logger logging.Logger) (*Categorizer, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = 0.5
	}
	if opts.ContextThreshold == 0 {
		opts.ContextThreshold = 0.4
	}
	if opts.MinSubstringKeyLen == 0 {
		opts.MinSubstringKeyLen = 15
	}
	if opts.BulkImportMinCount == 0 {
		opts.BulkImportMinCount = 2
	}

	repo, err := store.New(opts.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("error opening categorizer store: %w", err)
	}

	c := &Categorizer{
		opts:     opts,
		embedder: embedder,
		log:      logger,
		mapping:  make(map[string]string),
		repo:     repo,
	}

	if opts.MappingFile != "" {
		if err := c.loadMapping(opts.MappingFile); err != nil {
			logger.WithError(err).WithField(logging.FieldFile, opts.MappingFile).
				Warn("Could not load merchant mapping, mapping tier disabled")
		}
	}

	c.state = repo.Load()
	c.adjustments = buildAdjustments(c.state.Corrections)
	return c, nil
}

// Predict runs the cascade for a merchant description. ok is false when no
// tier produced a category, which is a normal outcome, not an error. Errors
// are reserved for embedding failures in the semantic tier.
func (c *Categorizer) Predict(ctx context.Context, merchant string, threshold float64) (Prediction, bool, error) {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return Prediction{}, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predictLocked(ctx, merchant, threshold)
}

// PredictWithContext runs the cascade with the looser context threshold and
// nudges confidence up when the amount fits the predicted category. The
// category itself never changes and confidence never exceeds 1.0.
func (c *Categorizer) PredictWithContext(ctx context.Context, merchant string, amount decimal.Decimal) (Prediction, bool, error) {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return Prediction{}, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prediction, ok, err := c.predictLocked(ctx, merchant, c.opts.ContextThreshold)
	if err != nil || !ok {
		return prediction, ok, err
	}

	prediction.Confidence = clamp(prediction.Confidence + contextBoost(prediction.Category, merchant, amount))
	return prediction, true, nil
}

// RecordCorrection appends a correction to the history, learns the corrected
// merchant and persists all state. Confirmations are recorded too.
func (c *Categorizer) RecordCorrection(ctx context.Context, merchant, predicted, actual string, confidence *float64) error {
	merchant = strings.TrimSpace(merchant)
	actual = strings.TrimSpace(actual)
	if merchant == "" || actual == "" {
		return fmt.Errorf("correction needs a merchant and an actual category")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	record := models.NewCorrectionRecord(merchant, predicted, actual, confidence)
	c.state.Corrections = append(c.state.Corrections, record)

	if err := c.learnLocked(ctx, merchant, actual); err != nil {
		return err
	}
	c.adjustments = buildAdjustments(c.state.Corrections)

	c.log.WithFields(
		logging.Field{Key: logging.FieldMerchant, Value: merchant},
		logging.Field{Key: logging.FieldCategory, Value: actual},
		logging.Field{Key: "overturned", Value: record.Overturned()},
	).Info("Recorded categorization correction")

	return c.repo.Save(c.state)
}

// AddKnownMerchant learns a merchant/category pair and persists the state.
func (c *Categorizer) AddKnownMerchant(ctx context.Context, merchant, category string) error {
	merchant = strings.TrimSpace(merchant)
	category = strings.TrimSpace(category)
	if merchant == "" || category == "" {
		return fmt.Errorf("merchant and category must be non-empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.learnLocked(ctx, merchant, category); err != nil {
		return err
	}
	return c.repo.Save(c.state)
}

// SimilarMerchants ranks the learned merchants by similarity to the given
// description, most similar first, at most topK entries.
func (c *Categorizer) SimilarMerchants(ctx context.Context, merchant string, topK int) ([]SimilarMerchant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.Embeddings) == 0 || topK <= 0 {
		return nil, nil
	}

	embedding, err := c.embedder.Embed(ctx, merchant)
	if err != nil {
		return nil, fmt.Errorf("error embedding merchant: %w", err)
	}

	ranked := make([]SimilarMerchant, 0, len(c.state.Embeddings))
	for known, knownEmbedding := range c.state.Embeddings {
		ranked = append(ranked, SimilarMerchant{
			Merchant:   known,
			Category:   c.state.Merchants[known],
			Similarity: cosineSimilarity(embedding, knownEmbedding),
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// BulkImport learns merchant/category pairs from already-categorized
// transactions. A pair is learned only when seen at least the configured
// minimum number of times, sentinel categories are skipped and known
// merchants are never overwritten. Returns the number of merchants learned.
func (c *Categorizer) BulkImport(ctx context.Context, transactions []models.NormalizedTransaction) (int, error) {
	type pair struct{ merchant, category string }
	counts := make(map[pair]int)
	for _, tx := range transactions {
		merchant := strings.TrimSpace(tx.Description)
		category := strings.TrimSpace(tx.Category)
		if merchant == "" || category == "" {
			continue
		}
		if category == models.CategoryUncounted || category == models.CategoryUncategorized {
			continue
		}
		counts[pair{merchant, category}]++
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	imported := 0
	for p, n := range counts {
		if n < c.opts.BulkImportMinCount {
			continue
		}
		if _, known := c.state.Merchants[p.merchant]; known {
			continue
		}
		if err := c.learnLocked(ctx, p.merchant, p.category); err != nil {
			return imported, err
		}
		imported++
	}

	if imported == 0 {
		return 0, nil
	}
	c.log.WithField(logging.FieldCount, imported).Info("Bulk imported merchant mappings")
	return imported, c.repo.Save(c.state)
}

// Stats never fails; on internal problems it returns a zeroed struct with
// the error string set.
func (c *Categorizer) Stats() (stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			stats = Stats{Err: fmt.Sprint(r)}
		}
	}()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, category := range c.state.Merchants {
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return Stats{
		KnownMerchants: len(c.state.Merchants),
		MappingEntries: len(c.mapping),
		Corrections:    len(c.state.Corrections),
		Categories:     categories,
	}
}

// predictLocked runs the cascade. Callers hold c.mu.
func (c *Categorizer) predictLocked(ctx context.Context, merchant string, threshold float64) (Prediction, bool, error) {
	if prediction, ok := c.checkMapping(merchant); ok {
		return prediction, true, nil
	}

	lowered := strings.ToLower(merchant)
	if category, ok := matchKeywordRules(lowered); ok {
		return Prediction{Category: category, Confidence: keywordRuleConfidence}, true, nil
	}

	if category, ok := c.state.Merchants[merchant]; ok {
		return Prediction{Category: category, Confidence: learnedExactConfidence}, true, nil
	}

	return c.predictSemantic(ctx, merchant, threshold)
}

// checkMapping resolves the curated mapping tier: exact match, then
// case-insensitive, then substring matches restricted to long keys.
func (c *Categorizer) checkMapping(merchant string) (Prediction, bool) {
	if category, ok := c.mapping[merchant]; ok {
		return Prediction{Category: category, Confidence: mappingExactConfidence}, true
	}

	lowered := strings.ToLower(merchant)
	for key, category := range c.mapping {
		if strings.ToLower(key) == lowered {
			return Prediction{Category: category, Confidence: mappingExactConfidence}, true
		}
	}
	for key, category := range c.mapping {
		if len(key) >= c.opts.MinSubstringKeyLen && strings.Contains(lowered, strings.ToLower(key)) {
			return Prediction{Category: category, Confidence: mappingSubstringConfidence}, true
		}
	}
	return Prediction{}, false
}

// predictSemantic matches the merchant against learned embeddings. The
// confidence is the best similarity adjusted by the correction bias stored
// for the input merchant itself, not for the matched one.
func (c *Categorizer) predictSemantic(ctx context.Context, merchant string, threshold float64) (Prediction, bool, error) {
	if len(c.state.Embeddings) == 0 {
		return Prediction{}, false, nil
	}

	embedding, err := c.embedder.Embed(ctx, merchant)
	if err != nil {
		return Prediction{}, false, fmt.Errorf("error embedding merchant: %w", err)
	}

	bestMerchant := ""
	bestSimilarity := 0.0
	for known, knownEmbedding := range c.state.Embeddings {
		sim := cosineSimilarity(embedding, knownEmbedding)
		if sim > threshold && sim > bestSimilarity {
			bestMerchant = known
			bestSimilarity = sim
		}
	}
	if bestMerchant == "" {
		return Prediction{}, false, nil
	}

	confidence := clamp(bestSimilarity + c.adjustments[merchant])
	return Prediction{Category: c.state.Merchants[bestMerchant], Confidence: confidence}, true, nil
}

// learnLocked upserts a merchant with a fresh embedding. Callers hold c.mu
// and are responsible for persisting.
func (c *Categorizer) learnLocked(ctx context.Context, merchant, category string) error {
	embedding, err := c.embedder.Embed(ctx, merchant)
	if err != nil {
		return fmt.Errorf("error embedding merchant: %w", err)
	}
	c.state.Merchants[merchant] = category
	c.state.Embeddings[merchant] = embedding
	return nil
}

func (c *Categorizer) loadMapping(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &c.mapping)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
