package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/money"
)

// ParticipantInput names one participant in an expense request. Weight is
// required for PERCENTAGE splits, Amount for EXACT splits, and both are
// ignored for EQUAL splits.
type ParticipantInput struct {
	UserID string           `json:"user_id" validate:"required,uuid4"`
	Weight *decimal.Decimal `json:"weight,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,money"`
}

type CreateExpenseRequest struct {
	GroupID      *string             `json:"group_id,omitempty" validate:"omitempty,uuid4"`
	Description  string              `json:"description" validate:"required,min=1,max=200"`
	Amount       decimal.Decimal     `json:"amount" validate:"required,money"`
	SplitType    string              `json:"split_type" validate:"required,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []*ParticipantInput `json:"participants" validate:"required,min=1,dive"`
	Date         *time.Time          `json:"date,omitempty"`
}

type UpdateExpenseRequest struct {
	Description  *string             `json:"description,omitempty" validate:"omitempty,min=1,max=200"`
	Amount       *decimal.Decimal    `json:"amount,omitempty" validate:"omitempty,money"`
	SplitType    *string             `json:"split_type,omitempty" validate:"omitempty,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []*ParticipantInput `json:"participants,omitempty" validate:"omitempty,min=1,dive"`
	Date         *time.Time          `json:"date,omitempty"`
}

type ShareResponse struct {
	ParticipantID string `json:"participant_id"`
	Amount        string `json:"amount"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	GroupID     *string         `json:"group_id,omitempty"`
	PayerID     string          `json:"payer_id"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	SplitType   string          `json:"split_type"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Shares      []ShareResponse `json:"shares"`
}

func (ws *WithShares) ToResponse() *ExpenseResponse {
	shares := make([]ShareResponse, 0, len(ws.Shares))
	for _, s := range ws.Shares {
		shares = append(shares, ShareResponse{
			ParticipantID: s.ParticipantID,
			Amount:        money.Format(s.Amount),
		})
	}

	return &ExpenseResponse{
		ID:          ws.Expense.ID,
		GroupID:     ws.Expense.GroupID,
		PayerID:     ws.Expense.PayerID,
		Description: ws.Expense.Description,
		Amount:      money.Format(ws.Expense.Amount),
		SplitType:   string(ws.Expense.SplitType),
		Date:        ws.Expense.Date,
		CreatedAt:   ws.Expense.CreatedAt,
		Shares:      shares,
	}
}
