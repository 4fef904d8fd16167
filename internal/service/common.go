package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/pkg/apperror"
)

// Catalog change events pushed to websocket subscribers once a write commits.
const (
	EventRestaurantCreated = "restaurant.created"
	EventRestaurantUpdated = "restaurant.updated"
	EventRestaurantDeleted = "restaurant.deleted"
	EventCategoryCreated   = "category.created"
	EventProductCreated    = "product.created"
	EventProductUpdated    = "product.updated"
	EventProductDeleted    = "product.deleted"
	EventImagesChanged     = "product.images_changed"
)

type CatalogEvent struct {
	Type         string    `json:"type"`
	RestaurantID uint      `json:"restaurant_id,omitempty"`
	ProductID    uint      `json:"product_id,omitempty"`
	CategoryID   uint      `json:"category_id,omitempty"`
	At           time.Time `json:"at"`
}

// EventPublisher receives committed catalog changes.
type EventPublisher interface {
	Publish(event CatalogEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(CatalogEvent) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// wrapLookup turns a missing row into ErrNotFound and anything else into an internal error.
func wrapLookup(entity string, id uint, err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %s %d", apperror.ErrNotFound, entity, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperror.ErrValidation, fmt.Sprintf(format, args...))
}

func actorOf(p auth.Principal) (string, uint) {
	switch v := p.(type) {
	case auth.AdminPrincipal:
		return auth.RoleAdmin, v.AdminID
	case auth.RestaurantPrincipal:
		return auth.RoleRestaurant, v.RestaurantID
	}
	return "system", 0
}

// writeAudit records a mutation. Call it with the transaction context so the
// entry commits or rolls back with the change it describes.
func writeAudit(ctx context.Context, repo repository.AuditRepository, p auth.Principal, action string, entityID uint, entityName string, details any) error {
	payload := "{}"
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		payload = string(b)
	}

	role, actorID := actorOf(p)
	entry := &model.AuditLog{
		ActorRole:  role,
		ActorID:    actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
