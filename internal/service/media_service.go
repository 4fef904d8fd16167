package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/logger"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/internal/storage"
	"restaurant-catalog/pkg/apperror"

	"go.uber.org/zap"
)

// FileUpload is one file taken from a multipart request.
type FileUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadObserver is told the outcome of every blob upload.
type UploadObserver interface {
	ObserveUpload(err error)
}

type MediaService interface {
	AttachImages(ctx context.Context, p auth.Principal, productID uint, files []FileUpload) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, p auth.Principal, imageID uint) error
	UploadRestaurantLogo(ctx context.Context, p auth.Principal, restaurantID uint, file FileUpload) (*RestaurantResponse, error)
}

type mediaService struct {
	store          storage.BlobStore
	productRepo    repository.ProductRepository
	restaurantRepo repository.RestaurantRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	events         EventPublisher
	observer       UploadObserver
}

func NewMediaService(
	store storage.BlobStore,
	productRepo repository.ProductRepository,
	restaurantRepo repository.RestaurantRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	observer UploadObserver,
) MediaService {
	return &mediaService{
		store:          store,
		productRepo:    productRepo,
		restaurantRepo: restaurantRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		events:         publisherOrNoop(events),
		observer:       observer,
	}
}

func (s *mediaService) put(ctx context.Context, folder string, file FileUpload) (string, error) {
	url, err := s.store.Put(ctx, folder, file.Filename, file.ContentType, file.Body)
	if s.observer != nil {
		s.observer.ObserveUpload(err)
	}
	return url, err
}

// discard deletes blobs that no image row points at. Local uploads are named
// after the product and the file name, so one blob can back several rows.
// Failures are only logged.
func (s *mediaService) discard(ctx context.Context, urls []string) {
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		refs, err := s.productRepo.CountImagesByURL(ctx, url)
		if err != nil {
			logger.FromContext(ctx).Warn("Keeping blob, reference count failed", zap.String("url", url), zap.Error(err))
			continue
		}
		if refs > 0 {
			continue
		}
		if err := s.store.Delete(ctx, url); err != nil {
			logger.FromContext(ctx).Warn("Failed to delete orphaned blob", zap.String("url", url), zap.Error(err))
		}
	}
}

// AttachImages uploads files one after another, then records them all in one
// transaction. If an upload or the insert fails, blobs already stored for
// this batch are deleted and no rows are written.
func (s *mediaService) AttachImages(ctx context.Context, p auth.Principal, productID uint, files []FileUpload) ([]model.ProductImage, error) {
	if _, err := auth.RequireRestaurant(p); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, wrapLookup("product", productID, err)
	}
	if err := auth.RequireOwnership(p, product.RestaurantID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, validationError("at least one file is required")
	}

	folder := fmt.Sprintf("products/%d", product.ID)
	uploaded := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.put(ctx, folder, file)
		if err != nil {
			s.discard(ctx, uploaded)
			return nil, fmt.Errorf("failed to store %s: %w", file.Filename, err)
		}
		uploaded = append(uploaded, url)
	}

	images := make([]model.ProductImage, 0, len(uploaded))
	for _, url := range uploaded {
		images = append(images, model.ProductImage{ProductID: product.ID, ImageURL: url})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.CreateImages(txCtx, images); err != nil {
			return fmt.Errorf("failed to save images: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionAttachImages, product.ID, product.Name,
			map[string][]string{"urls": uploaded})
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventImagesChanged, RestaurantID: product.RestaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return images, nil
}

// DeleteImage removes the row first; the blob goes afterwards on a best-effort basis.
func (s *mediaService) DeleteImage(ctx context.Context, p auth.Principal, imageID uint) error {
	if _, err := auth.RequireRestaurant(p); err != nil {
		return err
	}
	image, err := s.productRepo.FindImageByID(ctx, imageID)
	if err != nil {
		return wrapLookup("image", imageID, err)
	}
	product, err := s.productRepo.FindByID(ctx, image.ProductID)
	if err != nil {
		return wrapLookup("product", image.ProductID, err)
	}
	if err := auth.RequireOwnership(p, product.RestaurantID); err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.DeleteImage(txCtx, image.ID); err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionDeleteImage, product.ID, product.Name,
			map[string]string{"url": image.ImageURL})
	})
	if err != nil {
		return err
	}

	s.discard(ctx, []string{image.ImageURL})
	s.events.Publish(CatalogEvent{Type: EventImagesChanged, RestaurantID: product.RestaurantID, ProductID: product.ID, At: time.Now().UTC()})
	return nil
}

func (s *mediaService) UploadRestaurantLogo(ctx context.Context, p auth.Principal, restaurantID uint, file FileUpload) (*RestaurantResponse, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	restaurant, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, wrapLookup("restaurant", restaurantID, err)
	}

	url, err := s.put(ctx, fmt.Sprintf("restaurants/%d", restaurant.ID), file)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}
	restaurant.LogoURL = url

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.restaurantRepo.Update(txCtx, restaurant, "logo_url"); err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: restaurant %d", apperror.ErrNotFound, restaurant.ID)
			}
			return fmt.Errorf("failed to save logo: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionUpdateLogo, restaurant.ID, restaurant.Name,
			map[string]string{"url": url})
	})
	if err != nil {
		s.discard(ctx, []string{url})
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventRestaurantUpdated, RestaurantID: restaurant.ID, At: time.Now().UTC()})
	res := toRestaurantResponse(*restaurant)
	return &res, nil
}
