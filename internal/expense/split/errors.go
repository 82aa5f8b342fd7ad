package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/money"
)

// Validation errors shared by all split strategies. Every failure here is a
// deterministic local validation error; none are transient or retriable.
var (
	ErrInvalidAmount       = errors.New("total amount must be greater than 0")
	ErrInvalidParticipants = errors.New("at least one participant is required")
	ErrInvalidWeight       = errors.New("each weight must be between 0 and 100")
	ErrMissingWeight       = errors.New("weight required for all participants")
	ErrMissingAmount       = errors.New("exact amount required for all participants")
)

// WeightSumError reports weights that do not sum to 100. The message carries
// the actual computed sum; callers surface it verbatim.
type WeightSumError struct {
	Sum decimal.Decimal
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("weights must sum to 100, got %s", money.Format(e.Sum))
}

// MismatchError reports a share set whose sum differs from the expected total
// by more than the tolerance. Both values are formatted to two decimals.
type MismatchError struct {
	Sum   decimal.Decimal
	Total decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("share amounts (%s) must equal total amount (%s)",
		money.Format(e.Sum), money.Format(e.Total))
}
