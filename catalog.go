package archlens

import "context"

// Category represents one package category with its package count.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Package represents a single catalog package. Category is populated only
// in search and diagnostic results; category listings omit it because the
// category is implied by the request.
type Package struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Pagination describes the position of a page within a result stream.
type Pagination struct {
	Page    int  `json:"page"`
	HasNext bool `json:"has_next"`
}

// Page is one fetched batch of packages plus its pagination marker.
type Page struct {
	Packages   []Package  `json:"packages"`
	Pagination Pagination `json:"pagination"`
}

// CatalogService retrieves categories and packages from the remote catalog.
// All operations are read-only and idempotent; implementations are safe to
// retry.
type CatalogService interface {
	// FetchCategories returns all categories with their package counts.
	FetchCategories(ctx context.Context) ([]Category, error)

	// FetchPackages returns one page of packages for a category.
	// Returns ENOTFOUND if the category does not exist.
	FetchPackages(ctx context.Context, category string, page, pageSize int) (*Page, error)

	// FetchSearch returns one page of packages matching a free-text query.
	// Returns EINVALID for an empty query without issuing a request.
	FetchSearch(ctx context.Context, query string, page, pageSize int) (*Page, error)

	// Healthy reports whether the remote service is reachable and serving.
	Healthy(ctx context.Context) error
}
