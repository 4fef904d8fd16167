package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/pkg/apperror"

	"github.com/shopspring/decimal"
)

const maxSizeLabelLen = 20

// --- Product DTOs ---

type SizePayload struct {
	SizeLabel string           `json:"size_label" binding:"required,max=20"`
	Price     *decimal.Decimal `json:"price" binding:"required" swaggertype:"string" example:"9.50"`
}

type CreateProductRequest struct {
	Name        string        `json:"name" binding:"required,max=255"`
	Veg         *bool         `json:"veg"`
	Remark      string        `json:"remark" binding:"max=500"`
	Available   *bool         `json:"available"` // defaults to true
	Iced        bool          `json:"iced"`
	Description string        `json:"description"`
	CategoryIDs []uint        `json:"category_ids"`
	Sizes       []SizePayload `json:"sizes" binding:"dive"`
}

// UpdateProductRequest is a partial update. CategoryIDs and Sizes replace the
// whole set when present; an empty list clears it.
type UpdateProductRequest struct {
	Name        *string        `json:"name" binding:"omitempty,max=255"`
	Veg         *bool          `json:"veg"`
	Remark      *string        `json:"remark" binding:"omitempty,max=500"`
	Available   *bool          `json:"available"`
	Iced        *bool          `json:"iced"`
	Description *string        `json:"description"`
	CategoryIDs *[]uint        `json:"category_ids"`
	Sizes       *[]SizePayload `json:"sizes" binding:"omitempty,dive"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, p auth.Principal, restaurantID uint, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, p auth.Principal, id uint, req UpdateProductRequest) (*model.Product, error)
	UpdateAvailability(ctx context.Context, p auth.Principal, id uint, available bool) (*model.Product, error)
	DeleteProduct(ctx context.Context, p auth.Principal, id uint) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProductsByRestaurant(ctx context.Context, restaurantID uint) ([]model.Product, error)
}

// --- Implementation ---

type productService struct {
	productRepo    repository.ProductRepository
	restaurantRepo repository.RestaurantRepository
	categoryRepo   repository.CategoryRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	events         EventPublisher
}

func NewProductService(
	productRepo repository.ProductRepository,
	restaurantRepo repository.RestaurantRepository,
	categoryRepo repository.CategoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) ProductService {
	return &productService{
		productRepo:    productRepo,
		restaurantRepo: restaurantRepo,
		categoryRepo:   categoryRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		events:         publisherOrNoop(events),
	}
}

// --- Validation helpers ---

// validateSizes checks labels and prices. Duplicate labels are left to the
// uq_product_size index so the whole write rolls back on them.
func validateSizes(sizes []SizePayload) error {
	for i, size := range sizes {
		label := strings.TrimSpace(size.SizeLabel)
		if label == "" {
			return validationError("sizes[%d]: size_label is required", i)
		}
		if utf8.RuneCountInString(label) > maxSizeLabelLen {
			return validationError("sizes[%d]: size_label must be at most %d characters", i, maxSizeLabelLen)
		}
		if size.Price == nil {
			return validationError("sizes[%d]: price is required", i)
		}
		if size.Price.IsNegative() {
			return validationError("sizes[%d]: price cannot be negative", i)
		}
	}
	return nil
}

func toSizeModels(productID uint, payloads []SizePayload) []model.ProductSize {
	sizes := make([]model.ProductSize, 0, len(payloads))
	for _, p := range payloads {
		sizes = append(sizes, model.ProductSize{
			ProductID: productID,
			SizeLabel: strings.TrimSpace(p.SizeLabel),
			Price:     p.Price.Round(2), // validated non-nil
		})
	}
	return sizes
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// resolveCategories loads every requested category or fails with ErrValidation
// naming the first unknown id.
func (s *productService) resolveCategories(ctx context.Context, ids []uint) ([]model.Category, error) {
	ids = uniqueIDs(ids)
	categories, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == len(ids) {
		return categories, nil
	}

	found := make(map[uint]bool, len(categories))
	for _, c := range categories {
		found[c.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, validationError("unknown category id %d", id)
		}
	}
	return categories, nil
}

func sizeConflict(err error) error {
	if repository.IsDuplicate(err) {
		return fmt.Errorf("%w: duplicate size label", apperror.ErrConflict)
	}
	return fmt.Errorf("failed to save sizes: %w", err)
}

// loadOwned fetches the live product and checks that p owns it.
func (s *productService) loadOwned(ctx context.Context, p auth.Principal, id uint) (*model.Product, error) {
	if _, err := auth.RequireRestaurant(p); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("product", id, err)
	}
	if err := auth.RequireOwnership(p, product.RestaurantID); err != nil {
		return nil, err
	}
	return product, nil
}

// --- CRUD ---

// CreateProduct writes the product, its sizes and its category links in one
// transaction. Any failure leaves nothing behind.
func (s *productService) CreateProduct(ctx context.Context, p auth.Principal, restaurantID uint, req CreateProductRequest) (*model.Product, error) {
	if err := auth.RequireOwnership(p, restaurantID); err != nil {
		return nil, err
	}
	if _, err := s.restaurantRepo.FindByID(ctx, restaurantID); err != nil {
		return nil, wrapLookup("restaurant", restaurantID, err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if err := validateSizes(req.Sizes); err != nil {
		return nil, err
	}
	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product := &model.Product{
		RestaurantID: restaurantID,
		Name:         name,
		Veg:          req.Veg,
		Remark:       req.Remark,
		Available:    available,
		Iced:         req.Iced,
		Description:  req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: restaurant %d", apperror.ErrNotFound, restaurantID)
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		if err := s.productRepo.CreateSizes(txCtx, toSizeModels(product.ID, req.Sizes)); err != nil {
			return sizeConflict(err)
		}
		if len(categories) > 0 {
			if err := s.productRepo.ReplaceCategories(txCtx, product, categories); err != nil {
				return fmt.Errorf("failed to link categories: %w", err)
			}
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionCreateProduct, product.ID, product.Name,
			map[string]int{"sizes": len(req.Sizes), "categories": len(categories)})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventProductCreated, RestaurantID: restaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return s.GetProduct(ctx, product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, p auth.Principal, id uint, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	columns := []string{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		product.Name = name
		columns = append(columns, "name")
	}
	if req.Veg != nil {
		product.Veg = req.Veg
		columns = append(columns, "veg")
	}
	if req.Remark != nil {
		product.Remark = *req.Remark
		columns = append(columns, "remark")
	}
	if req.Available != nil {
		product.Available = *req.Available
		columns = append(columns, "available")
	}
	if req.Iced != nil {
		product.Iced = *req.Iced
		columns = append(columns, "iced")
	}
	if req.Description != nil {
		product.Description = *req.Description
		columns = append(columns, "description")
	}

	changed := append([]string{}, columns...)
	if req.Sizes != nil {
		if err := validateSizes(*req.Sizes); err != nil {
			return nil, err
		}
		changed = append(changed, "sizes")
	}

	var categories []model.Category
	if req.CategoryIDs != nil {
		categories, err = s.resolveCategories(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		changed = append(changed, "category_ids")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product, columns...); err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: product %d", apperror.ErrNotFound, product.ID)
			}
			return fmt.Errorf("failed to update product: %w", err)
		}

		// Sizes are replaced wholesale: delete all, then re-create.
		if req.Sizes != nil {
			if err := s.productRepo.DeleteSizesByProductID(txCtx, product.ID); err != nil {
				return fmt.Errorf("failed to delete old sizes: %w", err)
			}
			if err := s.productRepo.CreateSizes(txCtx, toSizeModels(product.ID, *req.Sizes)); err != nil {
				return sizeConflict(err)
			}
		}

		if req.CategoryIDs != nil {
			if err := s.productRepo.ReplaceCategories(txCtx, product, categories); err != nil {
				return fmt.Errorf("failed to replace categories: %w", err)
			}
		}

		return writeAudit(txCtx, s.auditRepo, p, model.ActionUpdateProduct, product.ID, product.Name,
			map[string][]string{"fields": changed})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventProductUpdated, RestaurantID: product.RestaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return s.GetProduct(ctx, product.ID)
}

// UpdateAvailability flips the available flag and nothing else.
func (s *productService) UpdateAvailability(ctx context.Context, p auth.Principal, id uint, available bool) (*model.Product, error) {
	product, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.SetAvailability(txCtx, product.ID, available); err != nil {
			return fmt.Errorf("failed to update availability: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionUpdateAvailability, product.ID, product.Name,
			map[string]bool{"available": available})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventProductUpdated, RestaurantID: product.RestaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return s.GetProduct(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, p auth.Principal, id uint) error {
	product, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.SoftDelete(txCtx, product.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionDeleteProduct, product.ID, product.Name, nil)
	})
	if err != nil {
		return err
	}

	s.events.Publish(CatalogEvent{Type: EventProductDeleted, RestaurantID: product.RestaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("product", id, err)
	}
	return product, nil
}

// ListProductsByRestaurant returns the live products of a live restaurant.
func (s *productService) ListProductsByRestaurant(ctx context.Context, restaurantID uint) ([]model.Product, error) {
	if _, err := s.restaurantRepo.FindByID(ctx, restaurantID); err != nil {
		return nil, wrapLookup("restaurant", restaurantID, err)
	}
	products, err := s.productRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}
