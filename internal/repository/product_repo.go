package repository

import (
	"context"

	"restaurant-catalog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository persists products together with their sizes, images and
// category links. Reads go through model.LiveProducts unless noted.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product, columns ...string) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDIncludingDeleted(ctx context.Context, id uint) (*model.Product, error)
	ListByRestaurant(ctx context.Context, restaurantID uint) ([]model.Product, error)
	SetAvailability(ctx context.Context, id uint, available bool) error
	SoftDelete(ctx context.Context, id uint) error

	CreateSizes(ctx context.Context, sizes []model.ProductSize) error
	DeleteSizesByProductID(ctx context.Context, productID uint) error
	ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error

	CreateImages(ctx context.Context, images []model.ProductImage) error
	FindImageByID(ctx context.Context, id uint) (*model.ProductImage, error)
	DeleteImage(ctx context.Context, id uint) error
	CountImagesByURL(ctx context.Context, url string) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("product_sizes.id ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("product_images.id ASC") }).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.id ASC") })
}

// Create inserts the product row only; children are written separately so the
// generated id is known before sizes reference it.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

// Update writes the given columns of a live product. A product deleted since
// it was read is left alone and reported as gorm.ErrRecordNotFound.
func (r *productRepository) Update(ctx context.Context, product *model.Product, columns ...string) error {
	result := GetDB(ctx, r.db).Model(product).
		Where("is_deleted = ?", false).
		Select(withUpdatedAt(columns)).
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Scopes(model.LiveProducts, preloadChildren).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDIncludingDeleted(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Scopes(preloadChildren).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]model.Product, error) {
	products := []model.Product{}
	err := GetDB(ctx, r.db).Scopes(model.LiveProducts, preloadChildren).
		Where("products.restaurant_id = ?", restaurantID).
		Order("products.id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SetAvailability(ctx context.Context, id uint, available bool) error {
	return GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("available", available).Error
}

func (r *productRepository) SoftDelete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("is_deleted", true).Error
}

func (r *productRepository) CreateSizes(ctx context.Context, sizes []model.ProductSize) error {
	if len(sizes) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&sizes).Error
}

func (r *productRepository) DeleteSizesByProductID(ctx context.Context, productID uint) error {
	return GetDB(ctx, r.db).Where("product_id = ?", productID).Delete(&model.ProductSize{}).Error
}

// ReplaceCategories rewrites the product's category links to exactly the given set.
func (r *productRepository) ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error {
	assoc := GetDB(ctx, r.db).Model(product).Association("Categories")
	if len(categories) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(categories)
}

func (r *productRepository) CreateImages(ctx context.Context, images []model.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&images).Error
}

func (r *productRepository) FindImageByID(ctx context.Context, id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := GetDB(ctx, r.db).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productRepository) DeleteImage(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProductImage{}).Error
}

// CountImagesByURL counts image rows of any product, deleted or not, that
// point at url.
func (r *productRepository) CountImagesByURL(ctx context.Context, url string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.ProductImage{}).Where("image_url = ?", url).Count(&n).Error
	return n, err
}
