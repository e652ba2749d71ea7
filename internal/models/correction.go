package models

import (
	"time"

	"github.com/google/uuid"
)

// CorrectionRecord is one append-only entry in the categorizer's correction
// history: what was predicted for a merchant, and what the user said it
// actually was. Confirmations (predicted == actual) are recorded too, since
// they reinforce future confidence.
type CorrectionRecord struct {
	ID         string   `json:"id"`
	Merchant   string   `json:"merchant"`
	Predicted  string   `json:"predicted"`
	Actual     string   `json:"actual"`
	Confidence *float64 `json:"confidence,omitempty"` // confidence at prediction time, nil if never scored
	Timestamp  string   `json:"timestamp"`
}

// NewCorrectionRecord creates a correction record stamped with the current
// time.
func NewCorrectionRecord(merchant, predicted, actual string, confidence *float64) CorrectionRecord {
	return CorrectionRecord{
		ID:         uuid.New().String(),
		Merchant:   merchant,
		Predicted:  predicted,
		Actual:     actual,
		Confidence: confidence,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// Overturned reports whether the correction contradicted the prediction.
func (c CorrectionRecord) Overturned() bool {
	return c.Predicted != c.Actual
}
