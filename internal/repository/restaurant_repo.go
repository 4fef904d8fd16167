package repository

import (
	"context"
	"strings"

	"restaurant-catalog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestaurantRepository persists restaurants. Finders skip soft-deleted rows
// unless their name says otherwise.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *model.Restaurant) error
	Update(ctx context.Context, restaurant *model.Restaurant, columns ...string) error
	FindByID(ctx context.Context, id uint) (*model.Restaurant, error)
	FindByIDIncludingDeleted(ctx context.Context, id uint) (*model.Restaurant, error)
	FindByEmailIncludingDeleted(ctx context.Context, email string) (*model.Restaurant, error)
	FindByEmail(ctx context.Context, email string) (*model.Restaurant, error)
	FindByLocation(ctx context.Context, country, state, city, identifier string) (*model.Restaurant, error)
	List(ctx context.Context, skip, limit int) ([]model.Restaurant, int64, error)
	SoftDeleteCascade(ctx context.Context, id uint) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(restaurant).Error
}

// Update writes the given columns of a live restaurant, or returns
// gorm.ErrRecordNotFound when it has been deleted in the meantime.
func (r *restaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant, columns ...string) error {
	result := GetDB(ctx, r.db).Model(restaurant).
		Where("is_deleted = ?", false).
		Select(withUpdatedAt(columns)).
		Updates(restaurant)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := GetDB(ctx, r.db).Scopes(model.NotDeleted).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindByIDIncludingDeleted(ctx context.Context, id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := GetDB(ctx, r.db).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindByEmailIncludingDeleted backs the uniqueness check: the unique index
// covers deleted rows too.
func (r *restaurantRepository) FindByEmailIncludingDeleted(ctx context.Context, email string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindByEmail(ctx context.Context, email string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := GetDB(ctx, r.db).Scopes(model.NotDeleted).Where("email = ?", email).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindByLocation resolves a public profile address. identifier is the local
// part of the restaurant's login email.
func (r *restaurantRepository) FindByLocation(ctx context.Context, country, state, city, identifier string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := GetDB(ctx, r.db).Scopes(model.NotDeleted).
		Where("LOWER(country_code) = ? AND LOWER(state_code) = ? AND LOWER(city_code) = ?",
			strings.ToLower(country), strings.ToLower(state), strings.ToLower(city)).
		Where(`LOWER(email) LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(identifier))+"@%").
		Order("id ASC").
		First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) List(ctx context.Context, skip, limit int) ([]model.Restaurant, int64, error) {
	restaurants := []model.Restaurant{}
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Restaurant{}).Scopes(model.NotDeleted).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Scopes(model.NotDeleted).Order("id ASC").Offset(skip).Limit(limit).Find(&restaurants).Error; err != nil {
		return nil, 0, err
	}

	return restaurants, total, nil
}

// SoftDeleteCascade marks the restaurant and every product it owns as deleted.
// Callers run it inside a transaction so both updates land together.
func (r *restaurantRepository) SoftDeleteCascade(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	res := db.Model(&model.Restaurant{}).Where("id = ? AND is_deleted = ?", id, false).Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Model(&model.Product{}).Where("restaurant_id = ?", id).Update("is_deleted", true).Error
}
