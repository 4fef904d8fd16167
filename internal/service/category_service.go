package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/pkg/apperror"
)

type CreateCategoryRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Remark string `json:"remark" binding:"max=500"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, p auth.Principal, req CreateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventPublisher
}

func NewCategoryService(categoryRepo repository.CategoryRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, events EventPublisher) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       publisherOrNoop(events),
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, p auth.Principal, req CreateCategoryRequest) (*model.Category, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	category := &model.Category{Name: name, Remark: req.Remark}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.categoryRepo.Create(txCtx, category); err != nil {
			if repository.IsDuplicate(err) {
				return fmt.Errorf("%w: category already exists", apperror.ErrConflict)
			}
			return fmt.Errorf("failed to create category: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionCreateCategory, category.ID, category.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventCategoryCreated, CategoryID: category.ID, At: time.Now().UTC()})
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
