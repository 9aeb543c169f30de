// Package mock provides function-field mock implementations of the
// archlens service interfaces for testing.
package mock

import (
	"context"

	"github.com/archlens/archlens"
)

var _ archlens.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of archlens.CatalogService.
type CatalogService struct {
	FetchCategoriesFn func(ctx context.Context) ([]archlens.Category, error)
	FetchPackagesFn   func(ctx context.Context, category string, page, pageSize int) (*archlens.Page, error)
	FetchSearchFn     func(ctx context.Context, query string, page, pageSize int) (*archlens.Page, error)
	HealthyFn         func(ctx context.Context) error
}

func (s *CatalogService) FetchCategories(ctx context.Context) ([]archlens.Category, error) {
	return s.FetchCategoriesFn(ctx)
}

func (s *CatalogService) FetchPackages(ctx context.Context, category string, page, pageSize int) (*archlens.Page, error) {
	return s.FetchPackagesFn(ctx, category, page, pageSize)
}

func (s *CatalogService) FetchSearch(ctx context.Context, query string, page, pageSize int) (*archlens.Page, error) {
	return s.FetchSearchFn(ctx, query, page, pageSize)
}

func (s *CatalogService) Healthy(ctx context.Context) error {
	if s.HealthyFn == nil {
		return nil
	}
	return s.HealthyFn(ctx)
}
