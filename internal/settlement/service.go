package settlement

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Common errors
var (
	ErrNotGroupMember = errors.New("you must be a member of this group")
)

// ExpenseSource supplies transaction snapshots from the expense store.
// Deleted expenses are never included. An empty participantID means all
// transactions.
type ExpenseSource interface {
	ListTransactions(ctx context.Context, participantID string) ([]Transaction, error)
	ListGroupTransactions(ctx context.Context, groupID string) ([]Transaction, error)
}

// MembershipChecker reports whether a user belongs to a group.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// Service computes settlement plans over the current expense snapshot.
// There is no cached state: every query recomputes from the transaction
// list, so results are always consistent with the stored expenses.
type Service struct {
	expenses ExpenseSource
	groups   MembershipChecker
}

// NewService creates a new settlement service.
func NewService(expenses ExpenseSource, groups MembershipChecker) *Service {
	return &Service{expenses: expenses, groups: groups}
}

// Plan computes net balances and the optimized settlement list across all
// expenses.
func (s *Service) Plan(ctx context.Context) (Plan, error) {
	txns, err := s.expenses.ListTransactions(ctx, "")
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load transactions for plan")
		return Plan{}, err
	}
	return BuildPlan(txns), nil
}

// PlanForUser computes the settlement view for one participant, considering
// only expenses that participant is involved in.
func (s *Service) PlanForUser(ctx context.Context, participantID string) (UserView, error) {
	txns, err := s.expenses.ListTransactions(ctx, participantID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("participant_id", participantID).
			Msg("failed to load transactions for user plan")
		return UserView{}, err
	}
	return ForUser(txns, participantID), nil
}

// PlanForGroup computes the settlement plan over a single group's expenses.
// The requesting user must be a member of the group.
func (s *Service) PlanForGroup(ctx context.Context, groupID, requesterID string) (Plan, error) {
	member, err := s.groups.IsMember(ctx, groupID, requesterID)
	if err != nil {
		return Plan{}, err
	}
	if !member {
		return Plan{}, ErrNotGroupMember
	}

	txns, err := s.expenses.ListGroupTransactions(ctx, groupID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("group_id", groupID).
			Msg("failed to load group transactions")
		return Plan{}, err
	}
	return BuildPlan(txns), nil
}
