package service

import (
	"context"
	"fmt"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
)

type AuditService interface {
	GetAuditLogs(ctx context.Context, p auth.Principal, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs returns one page of the trail, newest first. Admin only.
func (s *auditService) GetAuditLogs(ctx context.Context, p auth.Principal, page, limit int) ([]model.AuditLog, int64, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}
