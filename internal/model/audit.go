package model

import (
	"time"
)

const (
	ActionCreateRestaurant   = "CREATE_RESTAURANT"
	ActionUpdateRestaurant   = "UPDATE_RESTAURANT"
	ActionDeleteRestaurant   = "DELETE_RESTAURANT"
	ActionUpdateLogo         = "UPDATE_RESTAURANT_LOGO"
	ActionCreateCategory     = "CREATE_CATEGORY"
	ActionCreateProduct      = "CREATE_PRODUCT"
	ActionUpdateProduct      = "UPDATE_PRODUCT"
	ActionDeleteProduct      = "DELETE_PRODUCT"
	ActionUpdateAvailability = "UPDATE_PRODUCT_AVAILABILITY"
	ActionAttachImages       = "ATTACH_PRODUCT_IMAGES"
	ActionDeleteImage        = "DELETE_PRODUCT_IMAGE"
)

// AuditLog tracks who changed what in the catalog and when
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorRole  string    `gorm:"type:varchar(20);not null" json:"actor_role"`
	ActorID    uint      `gorm:"not null;index" json:"actor_id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   uint      `gorm:"index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // JSON payload of the change
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
