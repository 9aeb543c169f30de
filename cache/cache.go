// Package cache implements keyed request caching for the catalog client:
// a paginated query cache that merges cursor-style "load more" pages into
// flat result lists per query key, and a single-shot cache for diagnostic
// submissions. Loading, error and fetch-more states are tracked
// independently per key.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/archlens/archlens"
)

// FetchFunc retrieves one page of items for a query key. It returns the
// page's items, whether a next page exists, and any error.
type FetchFunc[T any] func(ctx context.Context, key archlens.QueryKey, page int) ([]T, bool, error)

// Cache maintains, per query key, an ordered sequence of fetched pages.
// Page 1 is fetched on the first Ensure call for a key; FetchNext appends
// subsequent pages without refetching earlier ones. Keys are isolated:
// fetching for one key never mutates another's pages. At most one fetch is
// in flight per key at any instant.
//
// Data older than its freshness window is served stale while Ensure runs a
// revalidating refetch that replaces the key's pages wholesale on success.
type Cache[T any] struct {
	mu        sync.Mutex
	fetch     FetchFunc[T]
	freshness func(archlens.QueryKey) time.Duration
	store     archlens.PageStore
	now       func() time.Time
	entries   map[uint64]*entry[T]
}

type entry[T any] struct {
	key       archlens.QueryKey
	pages     [][]T
	hasNext   bool
	fetchedAt time.Time
	inflight  bool
	more      bool // the in-flight fetch is a fetch-more, not page 1
	err       error
}

// State is a point-in-time snapshot of one key's cached state.
type State[T any] struct {
	// Items is the flattened item sequence across all fetched pages,
	// in page order. Never reordered or deduplicated.
	Items []T

	// Pages is the number of fetched pages.
	Pages int

	// HasNext reports whether the remote stream has more pages.
	HasNext bool

	// Loading reports an in-flight initial fetch with no cached data.
	Loading bool

	// Refreshing reports an in-flight revalidation over stale data.
	Refreshing bool

	// FetchingMore reports an in-flight fetch-more.
	FetchingMore bool

	// Stale reports that the cached data is past its freshness window.
	Stale bool

	// Err is the last fetch error for this key, cleared on the next
	// successful fetch.
	Err error
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithStore attaches a persistent page store. Fresh stored pages seed new
// entries without a network fetch; successful fetches are written through.
func WithStore[T any](store archlens.PageStore) Option[T] {
	return func(c *Cache[T]) {
		c.store = store
	}
}

// WithClock replaces the time source, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates a Cache fetching pages with fetch. Freshness windows come
// from cfg per the key's data source.
func New[T any](cfg archlens.Config, fetch FetchFunc[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		fetch:     fetch,
		freshness: cfg.Freshness,
		now:       time.Now,
		entries:   make(map[uint64]*entry[T]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure makes a key's data available: it fetches page 1 on the first call
// for a key, revalidates stale data, and is a no-op when the key is fresh
// or a fetch for it is already in flight. A failed initial fetch leaves an
// error state; calling Ensure again retries it.
func (c *Cache[T]) Ensure(ctx context.Context, key archlens.QueryKey) error {
	c.mu.Lock()
	e := c.lookup(ctx, key)

	if e.inflight {
		c.mu.Unlock()
		return nil
	}
	if len(e.pages) > 0 && c.now().Sub(e.fetchedAt) < c.freshness(key) {
		c.mu.Unlock()
		return nil
	}

	e.inflight = true
	c.mu.Unlock()

	items, hasNext, err := c.fetch(ctx, key, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.inflight = false
	if err != nil {
		// A failed revalidation keeps serving the stale pages.
		e.err = err
		return err
	}

	e.err = nil
	e.pages = [][]T{items}
	e.hasNext = hasNext
	e.fetchedAt = c.now()
	c.persist(ctx, e, 1, items)
	return nil
}

// FetchNext appends the next page for a key. It is a no-op when the key
// has no cached pages yet, has no next page, or already has a fetch in
// flight. A failed fetch leaves earlier pages intact and is retryable by
// calling FetchNext again.
func (c *Cache[T]) FetchNext(ctx context.Context, key archlens.QueryKey) error {
	c.mu.Lock()
	e := c.lookup(ctx, key)

	if e.inflight || !e.hasNext || len(e.pages) == 0 {
		c.mu.Unlock()
		return nil
	}

	e.inflight = true
	e.more = true
	next := len(e.pages) + 1
	c.mu.Unlock()

	items, hasNext, err := c.fetch(ctx, key, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.inflight = false
	e.more = false
	if err != nil {
		e.err = err
		return err
	}

	e.err = nil
	e.pages = append(e.pages, items)
	e.hasNext = hasNext
	c.persist(ctx, e, next, items)
	return nil
}

// State returns a snapshot of the key's cached state.
func (c *Cache[T]) State(key archlens.QueryKey) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.Hash()]
	if !ok {
		return State[T]{}
	}

	var items []T
	for _, page := range e.pages {
		items = append(items, page...)
	}

	return State[T]{
		Items:        items,
		Pages:        len(e.pages),
		HasNext:      e.hasNext,
		Loading:      e.inflight && !e.more && len(e.pages) == 0,
		Refreshing:   e.inflight && !e.more && len(e.pages) > 0,
		FetchingMore: e.inflight && e.more,
		Stale:        len(e.pages) > 0 && c.now().Sub(e.fetchedAt) >= c.freshness(e.key),
		Err:          e.err,
	}
}

// Invalidate drops a key's cached pages, in memory and in the store. The
// next Ensure call refetches from page 1.
func (c *Cache[T]) Invalidate(ctx context.Context, key archlens.QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key.Hash())
	if c.store != nil {
		_ = c.store.DeleteKey(ctx, key)
	}
}

// lookup returns the entry for key, creating and seeding it from the store
// if needed. Caller must hold c.mu.
func (c *Cache[T]) lookup(ctx context.Context, key archlens.QueryKey) *entry[T] {
	h := key.Hash()
	if e, ok := c.entries[h]; ok {
		return e
	}

	e := &entry[T]{key: key}
	c.entries[h] = e

	if c.store != nil {
		c.seed(ctx, e)
	}
	return e
}

// seed loads stored pages into a fresh entry. Stored pages past their
// freshness window still seed the entry; Ensure will revalidate them.
// Undecodable records are discarded.
func (c *Cache[T]) seed(ctx context.Context, e *entry[T]) {
	records, err := c.store.LoadPages(ctx, e.key)
	if err != nil || len(records) == 0 {
		return
	}

	pages := make([][]T, 0, len(records))
	for i, rec := range records {
		if rec.Page != i+1 {
			return // gap in the stored sequence; refetch from scratch
		}
		var items []T
		if err := json.Unmarshal(rec.Items, &items); err != nil {
			return
		}
		pages = append(pages, items)
	}

	e.pages = pages
	e.hasNext = records[len(records)-1].HasNext
	e.fetchedAt = records[0].FetchedAt
}

// persist writes one fetched page through to the store. Page 1 replaces
// the key's stored stream. Store failures are ignored; persistence is an
// optimization, not a correctness requirement. Caller must hold c.mu.
func (c *Cache[T]) persist(ctx context.Context, e *entry[T], page int, items []T) {
	if c.store == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if page == 1 {
		_ = c.store.DeleteKey(ctx, e.key)
	}
	_ = c.store.SavePage(ctx, e.key, archlens.PageRecord{
		Page:      page,
		Items:     raw,
		HasNext:   e.hasNext,
		FetchedAt: e.fetchedAt,
	})
}
