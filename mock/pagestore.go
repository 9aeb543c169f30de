package mock

import (
	"context"
	"time"

	"github.com/archlens/archlens"
)

var _ archlens.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of archlens.PageStore.
type PageStore struct {
	LoadPagesFn func(ctx context.Context, key archlens.QueryKey) ([]archlens.PageRecord, error)
	SavePageFn  func(ctx context.Context, key archlens.QueryKey, rec archlens.PageRecord) error
	DeleteKeyFn func(ctx context.Context, key archlens.QueryKey) error
	PurgeFn     func(ctx context.Context, before time.Time) error
}

func (s *PageStore) LoadPages(ctx context.Context, key archlens.QueryKey) ([]archlens.PageRecord, error) {
	return s.LoadPagesFn(ctx, key)
}

func (s *PageStore) SavePage(ctx context.Context, key archlens.QueryKey, rec archlens.PageRecord) error {
	return s.SavePageFn(ctx, key, rec)
}

func (s *PageStore) DeleteKey(ctx context.Context, key archlens.QueryKey) error {
	return s.DeleteKeyFn(ctx, key)
}

func (s *PageStore) Purge(ctx context.Context, before time.Time) error {
	return s.PurgeFn(ctx, before)
}
