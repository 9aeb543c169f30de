// Package slog provides logging decorators for the archlens services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/archlens/archlens"
)

// Ensure LoggingCatalogService implements archlens.CatalogService.
var _ archlens.CatalogService = (*LoggingCatalogService)(nil)

// LoggingCatalogService wraps a CatalogService with structured logging of
// each operation, its parameters, result size and duration.
type LoggingCatalogService struct {
	next   archlens.CatalogService
	logger *slog.Logger
}

// NewLoggingCatalogService creates a new LoggingCatalogService.
func NewLoggingCatalogService(next archlens.CatalogService, logger *slog.Logger) *LoggingCatalogService {
	return &LoggingCatalogService{next: next, logger: logger}
}

// FetchCategories delegates to the wrapped service and logs the outcome.
func (s *LoggingCatalogService) FetchCategories(ctx context.Context) ([]archlens.Category, error) {
	begin := time.Now()
	categories, err := s.next.FetchCategories(ctx)
	if err != nil {
		s.logger.Error("fetch categories",
			"code", archlens.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	s.logger.Info("fetch categories",
		"count", len(categories),
		"duration", time.Since(begin),
	)
	return categories, nil
}

// FetchPackages delegates to the wrapped service and logs the outcome.
func (s *LoggingCatalogService) FetchPackages(ctx context.Context, category string, page, pageSize int) (*archlens.Page, error) {
	begin := time.Now()
	result, err := s.next.FetchPackages(ctx, category, page, pageSize)
	if err != nil {
		s.logger.Error("fetch packages",
			"category", category,
			"page", page,
			"code", archlens.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	s.logger.Info("fetch packages",
		"category", category,
		"page", page,
		"count", len(result.Packages),
		"has_next", result.Pagination.HasNext,
		"duration", time.Since(begin),
	)
	return result, nil
}

// FetchSearch delegates to the wrapped service and logs the outcome.
func (s *LoggingCatalogService) FetchSearch(ctx context.Context, query string, page, pageSize int) (*archlens.Page, error) {
	begin := time.Now()
	result, err := s.next.FetchSearch(ctx, query, page, pageSize)
	if err != nil {
		s.logger.Error("search",
			"query", query,
			"page", page,
			"code", archlens.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	s.logger.Info("search",
		"query", query,
		"page", page,
		"count", len(result.Packages),
		"has_next", result.Pagination.HasNext,
		"duration", time.Since(begin),
	)
	return result, nil
}

// Healthy delegates to the wrapped service and logs failures.
func (s *LoggingCatalogService) Healthy(ctx context.Context) error {
	if err := s.next.Healthy(ctx); err != nil {
		s.logger.Error("health check", "code", archlens.ErrorCode(err), "err", err)
		return err
	}
	return nil
}
