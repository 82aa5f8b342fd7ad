package split

import (
	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/money"
)

var hundred = decimal.NewFromInt(100)

// ByWeights divides total according to percentage weights on a 0-100 scale.
//
// Every entry except the last is computed as round(total * weight / 100);
// the last entry takes whatever remains of the total. The asymmetric
// last-entry rule is deliberate: with per-entry rounding it is the only way
// to guarantee the shares sum to total exactly. Output order follows the
// weighted input order.
func ByWeights(total decimal.Decimal, weighted []WeightedParticipant) ([]Share, error) {
	if len(weighted) == 0 {
		return nil, ErrInvalidParticipants
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	sum := decimal.Zero
	for _, wp := range weighted {
		if wp.Weight.IsNegative() || wp.Weight.GreaterThan(hundred) {
			return nil, ErrInvalidWeight
		}
		sum = sum.Add(wp.Weight)
	}
	if !money.WithinTolerance(sum.Sub(hundred)) {
		return nil, &WeightSumError{Sum: sum}
	}

	shares := make([]Share, len(weighted))
	allocated := decimal.Zero
	for i, wp := range weighted {
		var amount decimal.Decimal
		if i == len(weighted)-1 {
			amount = money.Round(total.Sub(allocated))
		} else {
			amount = money.Round(total.Mul(wp.Weight).Div(hundred))
			allocated = allocated.Add(amount)
		}
		shares[i] = Share{ParticipantID: wp.ParticipantID, Amount: amount}
	}

	return shares, nil
}

// PercentageStrategy adapts ByWeights to the Strategy interface.
type PercentageStrategy struct{}

func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidParticipants
	}
	weighted := make([]WeightedParticipant, len(participants))
	for i, p := range participants {
		if p.Weight == nil {
			return nil, ErrMissingWeight
		}
		weighted[i] = WeightedParticipant{ParticipantID: p.ID, Weight: *p.Weight}
	}
	return ByWeights(total, weighted)
}
