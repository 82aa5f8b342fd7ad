package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ykuznetsov/settleup/internal/expense"
	"github.com/ykuznetsov/settleup/internal/money"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("notification belongs to another user")
)

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, recipientID, message string, entityType *EntityType, entityID *string) (*Notification, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.store.ListByRecipientID(ctx, recipientID, perPage, (page-1)*perPage, unreadOnly)
}

// MarkAsRead marks one notification read after checking it belongs to the
// caller.
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != userID {
		return ErrNotRecipient
	}
	return s.store.MarkAsRead(ctx, id)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}

// ExpenseAdded notifies every share participant except the payer. Delivery
// failures are logged, never surfaced to the caller: a lost notification
// must not fail the expense write.
func (s *Service) ExpenseAdded(ctx context.Context, e *expense.Expense, participantIDs []string) {
	entityType := EntityExpense
	message := fmt.Sprintf("An expense of %s was added and includes your share", money.Format(e.Amount))
	for _, id := range participantIDs {
		if _, err := s.store.Create(ctx, id, message, &entityType, &e.ID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("recipient_id", id).
				Str("expense_id", e.ID).
				Msg("failed to create expense notification")
		}
	}
}

// GroupInvite notifies a user they were invited to a group.
func (s *Service) GroupInvite(ctx context.Context, recipientID, groupID, groupName string) {
	entityType := EntityGroup
	message := "You have been invited to join group: " + groupName
	if _, err := s.store.Create(ctx, recipientID, message, &entityType, &groupID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("recipient_id", recipientID).
			Str("group_id", groupID).
			Msg("failed to create invite notification")
	}
}
