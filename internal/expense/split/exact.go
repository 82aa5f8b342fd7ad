package split

import (
	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/money"
)

// ValidateShares checks that a share set sums to the expected total within
// one minor unit. It runs after every split calculation and is the sole
// check for externally supplied (EXACT) shares.
func ValidateShares(shares []Share, total decimal.Decimal) error {
	if len(shares) == 0 {
		return ErrInvalidParticipants
	}

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	if !money.WithinTolerance(sum.Sub(total)) {
		return &MismatchError{Sum: sum, Total: total}
	}

	return nil
}

// ExactStrategy passes through caller-specified amounts, bypassing both
// split algorithms. The amounts must still sum to the total.
type ExactStrategy struct{}

func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

func (s *ExactStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidParticipants
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		if p.Amount == nil {
			return nil, ErrMissingAmount
		}
		if p.Amount.IsNegative() {
			return nil, ErrInvalidAmount
		}
		shares[i] = Share{ParticipantID: p.ID, Amount: money.Round(*p.Amount)}
	}

	if err := ValidateShares(shares, total); err != nil {
		return nil, err
	}

	return shares, nil
}
