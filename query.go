package archlens

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Query operations. Each operation paired with a parameter identifies one
// independent, cacheable request stream.
const (
	OpCategories = "categories"
	OpPackages   = "packages"
	OpSearch     = "search"
)

// QueryKey identifies one independent pagination stream: an operation plus
// its parameter. Two requests with equal keys share cached state; unequal
// keys are isolated.
type QueryKey struct {
	Op    string
	Param string
}

// CategoriesKey returns the key for the category listing.
func CategoriesKey() QueryKey {
	return QueryKey{Op: OpCategories}
}

// PackagesKey returns the key for one category's package stream.
func PackagesKey(category string) QueryKey {
	return QueryKey{Op: OpPackages, Param: category}
}

// SearchKey returns the key for one search term's result stream.
func SearchKey(term string) QueryKey {
	return QueryKey{Op: OpSearch, Param: term}
}

// String returns a human-readable form of the key, used in logs.
func (k QueryKey) String() string {
	if k.Param == "" {
		return k.Op
	}
	return k.Op + "/" + k.Param
}

// Zero reports whether the key is the zero value.
func (k QueryKey) Zero() bool {
	return k.Op == ""
}

// Hash returns a stable 64-bit hash of the key, suitable as a compact map
// or storage key. The operation and parameter are separated by a NUL byte
// so that ("ab","c") and ("a","bc") never collide.
func (k QueryKey) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(k.Op)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(k.Param)
	return h.Sum64()
}

// PageRecord is one persisted page of a query stream, stored as raw JSON so
// the store does not need to know the item type.
type PageRecord struct {
	Page      int
	Items     json.RawMessage
	HasNext   bool
	FetchedAt time.Time
}

// PageStore persists fetched pages per query key so that short-lived CLI
// invocations can serve cached pages within the freshness windows.
type PageStore interface {
	// LoadPages returns all stored pages for a key in page order.
	// Returns an empty slice if the key has no stored pages.
	LoadPages(ctx context.Context, key QueryKey) ([]PageRecord, error)

	// SavePage stores one page for a key, replacing any existing record
	// for the same page number.
	SavePage(ctx context.Context, key QueryKey, rec PageRecord) error

	// DeleteKey removes all stored pages for a key.
	DeleteKey(ctx context.Context, key QueryKey) error

	// Purge removes all pages fetched before the given time.
	Purge(ctx context.Context, before time.Time) error
}
