package model

import (
	"time"

	"gorm.io/gorm"
)

// Restaurant is a tenant of the catalog; it logs in with its email and owns its products.
type Restaurant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CountryCode  string    `gorm:"type:varchar(5)" json:"country_code"`
	StateCode    string    `gorm:"type:varchar(10)" json:"state_code"`
	CityCode     string    `gorm:"type:varchar(50)" json:"city_code"`
	Location     string    `gorm:"type:varchar(500)" json:"location"`
	Type         string    `gorm:"type:varchar(100)" json:"type"`
	StaffRating  float64   `gorm:"default:0" json:"staff_rating"`
	PureVeg      bool      `gorm:"default:false" json:"pure_veg"`
	LogoURL      string    `gorm:"type:varchar(1024)" json:"logo_url"`
	IsDeleted    bool      `gorm:"default:false;not null;index" json:"-"`
	Products     []Product `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	DateCreated  time.Time `gorm:"autoCreateTime" json:"date_created"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NotDeleted scopes a restaurant query to rows that have not been soft-deleted.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
