package expense

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/expense/split"
	"github.com/ykuznetsov/settleup/internal/money"
)

var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrPayerNotParticipant  = errors.New("payer must be one of the participants")
	ErrParticipantsRequired = errors.New("participants are required when changing the split")
)

// ListFilter narrows List queries. Zero-value fields are ignored.
type ListFilter struct {
	UserID    string
	GroupID   string
	StartDate *time.Time
	EndDate   *time.Time
}

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, e *Expense, shares []split.Share) (*WithShares, error)
	GetByID(ctx context.Context, id string) (*WithShares, error)
	Update(ctx context.Context, e *Expense, shares []split.Share) (*WithShares, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*WithShares, int, error)
}

// Notifier fans an event out to the affected users. Implementations must
// not block the request path on delivery.
type Notifier interface {
	ExpenseAdded(ctx context.Context, e *Expense, participantIDs []string)
}

type Service struct {
	store    Store
	factory  *split.Factory
	notifier Notifier
}

func NewService(store Store, factory *split.Factory, notifier Notifier) *Service {
	return &Service{store: store, factory: factory, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, payerID string, req *CreateExpenseRequest) (*WithShares, error) {
	amount := money.Round(req.Amount)

	shares, err := s.computeShares(req.SplitType, amount, req.Participants, payerID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	e := &Expense{
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Description: req.Description,
		Amount:      amount,
		SplitType:   split.SplitType(req.SplitType),
		Date:        date,
	}

	created, err := s.store.Create(ctx, e, shares)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("expense_id", created.Expense.ID).
		Str("payer_id", payerID).
		Str("amount", money.Format(amount)).
		Str("split_type", req.SplitType).
		Int("participants", len(shares)).
		Msg("expense created")

	if s.notifier != nil {
		ids := make([]string, 0, len(shares))
		for _, sh := range shares {
			if sh.ParticipantID != payerID {
				ids = append(ids, sh.ParticipantID)
			}
		}
		s.notifier.ExpenseAdded(ctx, created.Expense, ids)
	}

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*WithShares, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, page, perPage int) ([]*WithShares, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.store.List(ctx, filter, perPage, (page-1)*perPage)
}

// Update merges the request into the stored expense. Any change to the
// amount, split type, or participant set recomputes all shares.
func (s *Service) Update(ctx context.Context, id string, req *UpdateExpenseRequest) (*WithShares, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e := existing.Expense
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		e.Date = req.Date.UTC()
	}

	recalc := req.Amount != nil || req.SplitType != nil || req.Participants != nil
	if req.Amount != nil {
		e.Amount = money.Round(*req.Amount)
	}
	if req.SplitType != nil {
		e.SplitType = split.SplitType(*req.SplitType)
	}

	var shares []split.Share
	if recalc {
		participants := req.Participants
		if participants == nil {
			if e.SplitType != split.SplitTypeEqual {
				return nil, ErrParticipantsRequired
			}
			participants = make([]*ParticipantInput, 0, len(existing.Shares))
			for _, sh := range existing.Shares {
				participants = append(participants, &ParticipantInput{UserID: sh.ParticipantID})
			}
		}
		shares, err = s.computeShares(string(e.SplitType), e.Amount, participants, e.PayerID)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Update(ctx, e, shares)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("expense_id", id).
		Bool("shares_recalculated", recalc).
		Msg("expense updated")

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("expense_id", id).Msg("expense deleted")
	return nil
}

func (s *Service) computeShares(splitType string, amount decimal.Decimal, participants []*ParticipantInput, payerID string) ([]split.Share, error) {
	found := false
	parts := make([]split.Participant, 0, len(participants))
	for _, p := range participants {
		if p.UserID == payerID {
			found = true
		}
		parts = append(parts, split.Participant{ID: p.UserID, Weight: p.Weight, Amount: p.Amount})
	}
	if !found {
		return nil, ErrPayerNotParticipant
	}

	strategy, err := s.factory.CreateFromString(splitType)
	if err != nil {
		return nil, err
	}

	shares, err := strategy.Calculate(amount, parts)
	if err != nil {
		return nil, err
	}
	if err := split.ValidateShares(shares, amount); err != nil {
		return nil, err
	}
	return shares, nil
}
