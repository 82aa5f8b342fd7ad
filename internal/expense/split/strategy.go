// Package split computes per-participant shares of an expense total.
//
// Three strategies exist: EQUAL divides the total evenly with exact
// minor-unit remainder distribution, PERCENTAGE divides by caller-supplied
// weights, and EXACT accepts caller-supplied amounts. Every strategy
// guarantees that the produced shares sum to the expense total exactly;
// the payer is a participant like any other and receives a share slot.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitType identifies a split strategy.
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// Share is one participant's portion of an expense total.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// WeightedParticipant pairs a participant with a percentage weight (0-100).
type WeightedParticipant struct {
	ParticipantID string          `json:"participant_id"`
	Weight        decimal.Decimal `json:"weight"`
}

// Participant is the strategy input: an ID plus the optional values the
// chosen strategy needs (Weight for PERCENTAGE, Amount for EXACT).
type Participant struct {
	ID     string           `json:"participant_id"`
	Weight *decimal.Decimal `json:"weight,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Strategy is implemented by every split algorithm.
type Strategy interface {
	// Calculate computes one share per participant, in input order.
	Calculate(total decimal.Decimal, participants []Participant) ([]Share, error)

	// Type returns the strategy identifier.
	Type() SplitType
}

// Factory creates split strategies by type.
type Factory struct{}

// NewFactory returns a strategy factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given type.
func (f *Factory) Create(t SplitType) (Strategy, error) {
	switch t {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", t)
	}
}

// CreateFromString creates a strategy from a raw string type.
func (f *Factory) CreateFromString(t string) (Strategy, error) {
	return f.Create(SplitType(t))
}
