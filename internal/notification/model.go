package notification

import "time"

// EntityType names what a notification points at.
type EntityType string

const (
	EntityExpense EntityType = "EXPENSE"
	EntityGroup   EntityType = "GROUP"
)

type Notification struct {
	ID          string      `json:"id"`
	RecipientID string      `json:"recipient_id"`
	Message     string      `json:"message"`
	IsRead      bool        `json:"is_read"`
	EntityType  *EntityType `json:"entity_type,omitempty"`
	EntityID    *string     `json:"entity_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
