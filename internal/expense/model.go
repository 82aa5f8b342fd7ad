package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/expense/split"
)

// Expense is a single payment made by one user on behalf of a set of
// participants. Deleted expenses stay in storage with IsDeleted set and
// are excluded from every query and balance computation.
type Expense struct {
	ID          string          `json:"id"`
	GroupID     *string         `json:"group_id,omitempty"`
	PayerID     string          `json:"payer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SplitType   split.SplitType `json:"split_type"`
	Date        time.Time       `json:"date"`
	IsDeleted   bool            `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Share is one participant's portion of an expense.
type Share struct {
	ID            string          `json:"id"`
	ExpenseID     string          `json:"expense_id"`
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// WithShares bundles an expense with its computed shares.
type WithShares struct {
	Expense *Expense `json:"expense"`
	Shares  []*Share `json:"shares"`
}
