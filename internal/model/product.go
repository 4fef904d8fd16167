package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a flat, shared tag such as "Starter" or "Drinks"
type Category struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Remark string `gorm:"type:varchar(500)" json:"remark"`
}

// Product is a menu item owned by a restaurant
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Veg          *bool          `json:"veg"` // nil = unknown
	Remark       string         `gorm:"type:varchar(500)" json:"remark"`
	Available    bool           `gorm:"not null" json:"available"` // callers default to true
	Iced         bool           `gorm:"default:false;not null" json:"iced"`
	Description  string         `gorm:"type:text" json:"description"`
	IsDeleted    bool           `gorm:"default:false;not null;index" json:"-"`
	Sizes        []ProductSize  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes"`
	Images       []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	Categories   []Category     `gorm:"many2many:product_category;constraint:OnDelete:CASCADE" json:"categories"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ProductSize is one priced portion of a product; labels are unique per product
type ProductSize struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;uniqueIndex:uq_product_size" json:"-"`
	SizeLabel string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_product_size" json:"size_label"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// ProductImage records where an uploaded image can be fetched from
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	ImageURL  string    `gorm:"type:varchar(1024);not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// LiveProducts keeps products that are neither deleted themselves nor owned by
// a deleted restaurant.
func LiveProducts(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_deleted = ?", false).
		Where("EXISTS (SELECT 1 FROM restaurants r WHERE r.id = products.restaurant_id AND r.is_deleted = ?)", false)
}
