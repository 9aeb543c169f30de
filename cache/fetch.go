package cache

import (
	"context"

	"github.com/archlens/archlens"
)

// PackagesFetch adapts a CatalogService into a FetchFunc serving both the
// packages and search query streams, dispatching on the key's operation.
func PackagesFetch(service archlens.CatalogService, pageSize int) FetchFunc[archlens.Package] {
	return func(ctx context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
		var (
			result *archlens.Page
			err    error
		)
		switch key.Op {
		case archlens.OpSearch:
			result, err = service.FetchSearch(ctx, key.Param, page, pageSize)
		case archlens.OpPackages:
			result, err = service.FetchPackages(ctx, key.Param, page, pageSize)
		default:
			return nil, false, archlens.Errorf(archlens.EINVALID, "operation %q is not a package stream", key.Op)
		}
		if err != nil {
			return nil, false, err
		}
		return result.Packages, result.Pagination.HasNext, nil
	}
}

// CategoriesFetch adapts a CatalogService into a FetchFunc for the
// category listing. The listing is a single page; HasNext is always false.
func CategoriesFetch(service archlens.CatalogService) FetchFunc[archlens.Category] {
	return func(ctx context.Context, _ archlens.QueryKey, _ int) ([]archlens.Category, bool, error) {
		categories, err := service.FetchCategories(ctx)
		if err != nil {
			return nil, false, err
		}
		return categories, false, nil
	}
}
