package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykuznetsov/settleup/internal/expense/split"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

type fakeStore struct {
	created  *WithShares
	updated  *WithShares
	existing *WithShares
	deleted  []string
}

func (f *fakeStore) Create(_ context.Context, e *Expense, shares []split.Share) (*WithShares, error) {
	e.ID = "exp-1"
	e.CreatedAt = time.Now()
	ws := &WithShares{Expense: e}
	for i, sh := range shares {
		ws.Shares = append(ws.Shares, &Share{
			ID:            string(rune('a' + i)),
			ExpenseID:     e.ID,
			ParticipantID: sh.ParticipantID,
			Amount:        sh.Amount,
		})
	}
	f.created = ws
	return ws, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*WithShares, error) {
	if f.existing == nil || f.existing.Expense.ID != id {
		return nil, ErrExpenseNotFound
	}
	return f.existing, nil
}

func (f *fakeStore) Update(_ context.Context, e *Expense, shares []split.Share) (*WithShares, error) {
	ws := &WithShares{Expense: e}
	if shares == nil {
		ws.Shares = f.existing.Shares
	} else {
		for _, sh := range shares {
			ws.Shares = append(ws.Shares, &Share{
				ExpenseID:     e.ID,
				ParticipantID: sh.ParticipantID,
				Amount:        sh.Amount,
			})
		}
	}
	f.updated = ws
	return ws, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id string) error {
	if f.existing == nil || f.existing.Expense.ID != id {
		return ErrExpenseNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, _ ListFilter, _, _ int) ([]*WithShares, int, error) {
	return nil, 0, nil
}

type fakeNotifier struct {
	expenseID  string
	recipients []string
}

func (f *fakeNotifier) ExpenseAdded(_ context.Context, e *Expense, participantIDs []string) {
	f.expenseID = e.ID
	f.recipients = participantIDs
}

func participants(ids ...string) []*ParticipantInput {
	out := make([]*ParticipantInput, 0, len(ids))
	for _, id := range ids {
		out = append(out, &ParticipantInput{UserID: id})
	}
	return out
}

func TestServiceCreateEqual(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := NewService(store, split.NewFactory(), notifier)

	created, err := svc.Create(context.Background(), "alice", &CreateExpenseRequest{
		Description:  "groceries",
		Amount:       d("100"),
		SplitType:    "EQUAL",
		Participants: participants("alice", "bob", "carol"),
	})
	require.NoError(t, err)

	require.Len(t, created.Shares, 3)
	assert.Equal(t, "33.34", created.Shares[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", created.Shares[1].Amount.StringFixed(2))
	assert.Equal(t, "33.33", created.Shares[2].Amount.StringFixed(2))

	assert.Equal(t, "exp-1", notifier.expenseID)
	assert.ElementsMatch(t, []string{"bob", "carol"}, notifier.recipients,
		"payer must not be notified about their own expense")
}

func TestServiceCreatePercentage(t *testing.T) {
	svc := NewService(&fakeStore{}, split.NewFactory(), nil)

	created, err := svc.Create(context.Background(), "alice", &CreateExpenseRequest{
		Description: "rent",
		Amount:      d("1000"),
		SplitType:   "PERCENTAGE",
		Participants: []*ParticipantInput{
			{UserID: "alice", Weight: dp("60")},
			{UserID: "bob", Weight: dp("40")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "600.00", created.Shares[0].Amount.StringFixed(2))
	assert.Equal(t, "400.00", created.Shares[1].Amount.StringFixed(2))
}

func TestServiceCreateErrors(t *testing.T) {
	svc := NewService(&fakeStore{}, split.NewFactory(), nil)

	t.Run("payer not in participants", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "dave", &CreateExpenseRequest{
			Description:  "dinner",
			Amount:       d("90"),
			SplitType:    "EQUAL",
			Participants: participants("alice", "bob"),
		})
		assert.ErrorIs(t, err, ErrPayerNotParticipant)
	})

	t.Run("bad weight sum surfaces verbatim", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "alice", &CreateExpenseRequest{
			Description: "rent",
			Amount:      d("1000"),
			SplitType:   "PERCENTAGE",
			Participants: []*ParticipantInput{
				{UserID: "alice", Weight: dp("50")},
				{UserID: "bob", Weight: dp("40")},
			},
		})
		require.Error(t, err)
		assert.Equal(t, "weights must sum to 100, got 90.00", err.Error())
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "alice", &CreateExpenseRequest{
			Description:  "nothing",
			Amount:       d("0"),
			SplitType:    "EQUAL",
			Participants: participants("alice"),
		})
		assert.ErrorIs(t, err, split.ErrInvalidAmount)
	})

	t.Run("unknown split type", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "alice", &CreateExpenseRequest{
			Description:  "dinner",
			Amount:       d("90"),
			SplitType:    "RANDOM",
			Participants: participants("alice"),
		})
		assert.Error(t, err)
	})
}

func existingExpense() *WithShares {
	return &WithShares{
		Expense: &Expense{
			ID:          "exp-1",
			PayerID:     "alice",
			Description: "dinner",
			Amount:      d("90"),
			SplitType:   split.SplitTypeEqual,
			Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Shares: []*Share{
			{ExpenseID: "exp-1", ParticipantID: "alice", Amount: d("30")},
			{ExpenseID: "exp-1", ParticipantID: "bob", Amount: d("30")},
			{ExpenseID: "exp-1", ParticipantID: "carol", Amount: d("30")},
		},
	}
}

func TestServiceUpdate(t *testing.T) {
	t.Run("description only keeps shares", func(t *testing.T) {
		store := &fakeStore{existing: existingExpense()}
		svc := NewService(store, split.NewFactory(), nil)

		desc := "team dinner"
		updated, err := svc.Update(context.Background(), "exp-1", &UpdateExpenseRequest{
			Description: &desc,
		})
		require.NoError(t, err)
		assert.Equal(t, "team dinner", updated.Expense.Description)
		assert.Len(t, updated.Shares, 3)
		assert.Equal(t, "30.00", updated.Shares[0].Amount.StringFixed(2))
	})

	t.Run("amount change recomputes equal shares over existing participants", func(t *testing.T) {
		store := &fakeStore{existing: existingExpense()}
		svc := NewService(store, split.NewFactory(), nil)

		amount := d("120")
		updated, err := svc.Update(context.Background(), "exp-1", &UpdateExpenseRequest{
			Amount: &amount,
		})
		require.NoError(t, err)
		require.Len(t, updated.Shares, 3)
		for _, sh := range updated.Shares {
			assert.Equal(t, "40.00", sh.Amount.StringFixed(2))
		}
	})

	t.Run("switch to percentage requires participants", func(t *testing.T) {
		store := &fakeStore{existing: existingExpense()}
		svc := NewService(store, split.NewFactory(), nil)

		st := "PERCENTAGE"
		_, err := svc.Update(context.Background(), "exp-1", &UpdateExpenseRequest{
			SplitType: &st,
		})
		assert.ErrorIs(t, err, ErrParticipantsRequired)
	})

	t.Run("switch to percentage with weights", func(t *testing.T) {
		store := &fakeStore{existing: existingExpense()}
		svc := NewService(store, split.NewFactory(), nil)

		st := "PERCENTAGE"
		updated, err := svc.Update(context.Background(), "exp-1", &UpdateExpenseRequest{
			SplitType: &st,
			Participants: []*ParticipantInput{
				{UserID: "alice", Weight: dp("50")},
				{UserID: "bob", Weight: dp("50")},
			},
		})
		require.NoError(t, err)
		require.Len(t, updated.Shares, 2)
		assert.Equal(t, "45.00", updated.Shares[0].Amount.StringFixed(2))
	})

	t.Run("unknown expense", func(t *testing.T) {
		svc := NewService(&fakeStore{}, split.NewFactory(), nil)

		desc := "x"
		_, err := svc.Update(context.Background(), "missing", &UpdateExpenseRequest{Description: &desc})
		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})
}

func TestServiceDelete(t *testing.T) {
	store := &fakeStore{existing: existingExpense()}
	svc := NewService(store, split.NewFactory(), nil)

	require.NoError(t, svc.Delete(context.Background(), "exp-1"))
	assert.Equal(t, []string{"exp-1"}, store.deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrExpenseNotFound)
}
