package model

import (
	"time"
)

// User is an admin account. Admins are provisioned from configuration at startup.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Username     string      `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin      bool        `gorm:"default:false" json:"is_admin"`
	RestaurantID *uint       `gorm:"index" json:"restaurant_id,omitempty"` // reserved for restaurant staff logins
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
