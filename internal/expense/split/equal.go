package split

import (
	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/money"
)

// Equal divides total evenly among the participants.
//
// The base share is the largest minor-unit amount such that
// n * base <= total; the leftover minor units (0 to n-1 of them) are handed
// out one cent at a time to participants in input order. The returned shares
// therefore sum to total exactly, and no two shares differ by more than one
// minor unit. Duplicate participant IDs are permitted; each occurrence gets
// its own share slot.
func Equal(total decimal.Decimal, participantIDs []string) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, ErrInvalidParticipants
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	n := int64(len(participantIDs))
	totalCents := money.Cents(total)
	base := totalCents / n
	remainder := totalCents - base*n

	shares := make([]Share, len(participantIDs))
	for i, id := range participantIDs {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = Share{ParticipantID: id, Amount: money.FromCents(cents)}
	}

	return shares, nil
}

// EqualStrategy adapts Equal to the Strategy interface.
type EqualStrategy struct{}

func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []Participant) ([]Share, error) {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return Equal(total, ids)
}
