package categorizer

import (
	"strings"

	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
)

// Per-merchant confidence adjustments derived from the correction history.
// The most recent correction for a merchant wins.
const (
	adjustmentOverturned = -0.3
	adjustmentConfirmed  = 0.2
)

// buildAdjustments replays the correction history into per-merchant
// confidence adjustments.
func buildAdjustments(corrections []models.CorrectionRecord) map[string]float64 {
	adjustments := make(map[string]float64, len(corrections))
	for _, c := range corrections {
		if c.Overturned() {
			adjustments[c.Merchant] = adjustmentOverturned
		} else {
			adjustments[c.Merchant] = adjustmentConfirmed
		}
	}
	return adjustments
}

// Context boost heuristics: amount magnitudes characteristic of a predicted
// category, combined with category-suggestive words, nudge confidence up.
// Branches are mutually exclusive and checked in order.
var (
	subscriptionWords = []string{"subscription", "premium", "monthly", "netflix", "spotify", "adobe"}
	foodWords         = []string{"cafe", "restaurant", "bar", "pizza", "burger", "starbucks", "mcdonald"}
	transportWords    = []string{"sbb", "vbz", "transport", "taxi", "uber", "train", "ticket"}
	storeWords        = []string{"shop", "store", "amazon", "galaxus", "digitec"}
)

// contextBoost returns the confidence increment for a prediction given the
// transaction amount. The boost never changes the category, only how sure we
// are of it.
func contextBoost(category, description string, amount decimal.Decimal) float64 {
	lowered := strings.ToLower(description)
	magnitude := amount.Abs().InexactFloat64()

	switch {
	case magnitude < 30 && containsAny(lowered, subscriptionWords):
		if category == models.CategoryUtilities || category == models.CategoryShopping {
			return 0.2
		}
	case magnitude < 20 && containsAny(lowered, foodWords):
		if category == models.CategoryDining {
			return 0.15
		}
	case magnitude < 50 && containsAny(lowered, transportWords):
		if category == models.CategoryTransport {
			return 0.2
		}
	case magnitude > 50 && containsAny(lowered, storeWords):
		if category == models.CategoryShopping {
			return 0.1
		}
	}
	return 0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
