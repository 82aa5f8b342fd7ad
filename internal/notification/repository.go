package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, recipientID, message string, entityType *EntityType, entityID *string) (*Notification, error) {
	n := &Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Message:     message,
		EntityType:  entityType,
		EntityID:    entityID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, message, is_read, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6)`,
		n.ID, n.RecipientID, n.Message, n.EntityType, n.EntityID, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := r.db.QueryRowContext(ctx, `
		SELECT id, recipient_id, message, is_read, entity_type, entity_id, created_at
		FROM notifications WHERE id = $1`, id).
		Scan(&n.ID, &n.RecipientID, &n.Message, &n.IsRead, &n.EntityType, &n.EntityID, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (r *Repository) ListByRecipientID(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	cond := "recipient_id = $1"
	if unreadOnly {
		cond += " AND is_read = FALSE"
	}

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE "+cond, recipientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, message, is_read, entity_type, entity_id, created_at
		FROM notifications
		WHERE `+cond+`
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, recipientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.IsRead, &n.EntityType, &n.EntityID, &n.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, total, rows.Err()
}

func (r *Repository) MarkAsRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (r *Repository) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND is_read = FALSE`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
