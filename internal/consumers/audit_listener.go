package consumers

import (
	"context"

	"dabwish/internal/events"
	"dabwish/pkg/logger"
)

// AuditListener only logs lifecycle events the notifier has no action for
type AuditListener struct {
	log *logger.Logger
}

// NewAuditListener creates a new audit listener
func NewAuditListener(log *logger.Logger) *AuditListener {
	return &AuditListener{log: log.With("component", "audit_listener")}
}

func (a *AuditListener) WishCreated(_ context.Context, e *events.WishCreatedEvent) error {
	a.log.Infow("Wish created",
		"wish_id", e.WishID,
		"owner_id", e.OwnerID,
		"title", e.Title,
		"price", orNA(e.Price),
		"created_at", e.CreatedAt,
	)
	return nil
}

func (a *AuditListener) WishUpdated(_ context.Context, e *events.WishUpdatedEvent) error {
	a.log.Infow("Wish updated",
		"wish_id", e.WishID,
		"owner_id", e.OwnerID,
		"title", e.Title,
		"price", orNA(e.Price),
		"updated_at", e.UpdatedAt,
	)
	return nil
}

func (a *AuditListener) UserCreated(_ context.Context, e *events.UserCreatedEvent) error {
	a.log.Infow("User created", "user_id", e.UserID, "name", e.Name, "role", e.Role, "created_at", e.CreatedAt)
	return nil
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
