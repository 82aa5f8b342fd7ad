package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykuznetsov/settleup/internal/expense/split"
)

type fakeExpenseSource struct {
	all     []Transaction
	byUser  map[string][]Transaction
	byGroup map[string][]Transaction
	err     error
}

func (f *fakeExpenseSource) ListTransactions(_ context.Context, participantID string) ([]Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	if participantID == "" {
		return f.all, nil
	}
	return f.byUser[participantID], nil
}

func (f *fakeExpenseSource) ListGroupTransactions(_ context.Context, groupID string) ([]Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byGroup[groupID], nil
}

type fakeMembership struct {
	members map[string]bool
	err     error
}

func (f *fakeMembership) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	return f.members[groupID+"/"+userID], f.err
}

func dinnerTxn() Transaction {
	return Transaction{
		Amount:  d("90"),
		PayerID: "alice",
		Shares: []split.Share{
			{ParticipantID: "alice", Amount: d("30")},
			{ParticipantID: "bob", Amount: d("30")},
			{ParticipantID: "carol", Amount: d("30")},
		},
	}
}

func TestServicePlan(t *testing.T) {
	svc := NewService(&fakeExpenseSource{all: []Transaction{dinnerTxn()}}, &fakeMembership{})

	plan, err := svc.Plan(context.Background())
	require.NoError(t, err)

	assert.True(t, plan.Balances["alice"].Equal(d("60")))
	assert.True(t, plan.Balances["bob"].Equal(d("-30")))
	require.Len(t, plan.Settlements, 2)
}

func TestServicePlanEmpty(t *testing.T) {
	svc := NewService(&fakeExpenseSource{}, &fakeMembership{})

	plan, err := svc.Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plan.Balances)
	assert.Empty(t, plan.Settlements)
}

func TestServicePlanSourceError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeExpenseSource{err: boom}, &fakeMembership{})

	_, err := svc.Plan(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestServicePlanForUser(t *testing.T) {
	src := &fakeExpenseSource{
		byUser: map[string][]Transaction{"bob": {dinnerTxn()}},
	}
	svc := NewService(src, &fakeMembership{})

	view, err := svc.PlanForUser(context.Background(), "bob")
	require.NoError(t, err)

	assert.True(t, view.NetBalance.Equal(d("-30")))
	require.Len(t, view.Owes, 1)
	assert.Equal(t, "alice", view.Owes[0].To)
	assert.Empty(t, view.OwedBy)
}

func TestServicePlanForGroup(t *testing.T) {
	src := &fakeExpenseSource{
		byGroup: map[string][]Transaction{"trip": {dinnerTxn()}},
	}

	t.Run("member sees the plan", func(t *testing.T) {
		svc := NewService(src, &fakeMembership{members: map[string]bool{"trip/bob": true}})

		plan, err := svc.PlanForGroup(context.Background(), "trip", "bob")
		require.NoError(t, err)
		assert.Len(t, plan.Settlements, 2)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		svc := NewService(src, &fakeMembership{})

		_, err := svc.PlanForGroup(context.Background(), "trip", "mallory")
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("membership check error propagates", func(t *testing.T) {
		boom := errors.New("db down")
		svc := NewService(src, &fakeMembership{err: boom})

		_, err := svc.PlanForGroup(context.Background(), "trip", "bob")
		assert.ErrorIs(t, err, boom)
	})
}
