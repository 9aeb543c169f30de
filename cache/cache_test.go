package cache_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pkgs builds n sequential packages starting at the given id, so tests can
// verify append order across pages.
func pkgs(start, n int) []archlens.Package {
	out := make([]archlens.Package, 0, n)
	for i := range n {
		out = append(out, archlens.Package{ID: start + i, Name: "pkg", Description: "d"})
	}
	return out
}

// pagedFetch serves deterministic pages: pageSize items per page, total
// items overall, and records every (key, page) request it receives.
type pagedFetch struct {
	mu       sync.Mutex
	total    int
	pageSize int
	requests []string
}

func (f *pagedFetch) fetch(_ context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
	f.mu.Lock()
	f.requests = append(f.requests, key.String()+"#"+strconv.Itoa(page))
	f.mu.Unlock()

	start := (page - 1) * f.pageSize
	n := f.pageSize
	if start+n > f.total {
		n = f.total - start
	}
	return pkgs(start+1, n), start+f.pageSize < f.total, nil
}

func (f *pagedFetch) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestCache_Ensure(t *testing.T) {
	t.Parallel()

	t.Run("first call fetches page 1", func(t *testing.T) {
		t.Parallel()

		fetcher := &pagedFetch{total: 5, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
		key := archlens.PackagesKey("Fonts")

		require.NoError(t, c.Ensure(context.Background(), key))

		state := c.State(key)
		assert.Len(t, state.Items, 5)
		assert.Equal(t, 1, state.Pages)
		assert.False(t, state.HasNext)
		assert.NoError(t, state.Err)
	})

	t.Run("fresh data is not refetched", func(t *testing.T) {
		t.Parallel()

		fetcher := &pagedFetch{total: 5, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
		key := archlens.PackagesKey("Fonts")

		require.NoError(t, c.Ensure(context.Background(), key))
		require.NoError(t, c.Ensure(context.Background(), key))

		assert.Equal(t, 1, fetcher.count())
	})

	t.Run("stale data revalidates and replaces pages wholesale", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		fetcher := &pagedFetch{total: 90, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch, cache.WithClock[archlens.Package](func() time.Time { return now }))
		key := archlens.PackagesKey("Fonts")

		require.NoError(t, c.Ensure(context.Background(), key))
		require.NoError(t, c.FetchNext(context.Background(), key))
		require.Equal(t, 2, c.State(key).Pages)

		// Advance past the 2 minute packages freshness window.
		now = now.Add(3 * time.Minute)
		assert.True(t, c.State(key).Stale)

		require.NoError(t, c.Ensure(context.Background(), key))

		state := c.State(key)
		assert.Equal(t, 1, state.Pages, "revalidation restarts the stream at page 1")
		assert.False(t, state.Stale)
	})

	t.Run("failed revalidation keeps serving stale pages", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		var fail atomic.Bool
		fetch := func(ctx context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
			if fail.Load() {
				return nil, false, archlens.Errorf(archlens.ENETWORK, "connection refused")
			}
			return pkgs(1, 3), false, nil
		}

		c := cache.New(archlens.DefaultConfig(), fetch, cache.WithClock[archlens.Package](func() time.Time { return now }))
		key := archlens.SearchKey("ttf")

		require.NoError(t, c.Ensure(context.Background(), key))

		now = now.Add(2 * time.Minute) // past search freshness (1m)
		fail.Store(true)

		err := c.Ensure(context.Background(), key)
		require.Error(t, err)

		state := c.State(key)
		assert.Len(t, state.Items, 3, "stale data stays visible")
		assert.Equal(t, archlens.ENETWORK, archlens.ErrorCode(state.Err))
	})

	t.Run("failed initial fetch surfaces error and retries on next Ensure", func(t *testing.T) {
		t.Parallel()

		var fail atomic.Bool
		fail.Store(true)
		fetch := func(ctx context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
			if fail.Load() {
				return nil, false, archlens.Errorf(archlens.ESERVER, "boom")
			}
			return pkgs(1, 2), false, nil
		}

		c := cache.New(archlens.DefaultConfig(), fetch)
		key := archlens.PackagesKey("Fonts")

		err := c.Ensure(context.Background(), key)
		require.Error(t, err)

		state := c.State(key)
		assert.Empty(t, state.Items)
		assert.Equal(t, archlens.ESERVER, archlens.ErrorCode(state.Err))

		fail.Store(false)
		require.NoError(t, c.Ensure(context.Background(), key))

		state = c.State(key)
		assert.Len(t, state.Items, 2)
		assert.NoError(t, state.Err, "error clears on success")
	})
}

func TestCache_FetchNext(t *testing.T) {
	t.Parallel()

	t.Run("appends pages in order", func(t *testing.T) {
		t.Parallel()

		fetcher := &pagedFetch{total: 70, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
		key := archlens.PackagesKey("Networking")

		require.NoError(t, c.Ensure(context.Background(), key))
		before := c.State(key)
		require.Len(t, before.Items, 30)
		require.True(t, before.HasNext)

		require.NoError(t, c.FetchNext(context.Background(), key))

		after := c.State(key)
		assert.Len(t, after.Items, 60, "length grows by exactly the new page's item count")
		assert.Equal(t, before.Items, after.Items[:30], "earlier items unchanged")
		assert.Equal(t, 31, after.Items[30].ID, "new page appended in order")
		assert.True(t, after.HasNext)

		require.NoError(t, c.FetchNext(context.Background(), key))
		final := c.State(key)
		assert.Len(t, final.Items, 70)
		assert.False(t, final.HasNext)
	})

	t.Run("no-op when has_next is false", func(t *testing.T) {
		t.Parallel()

		fetcher := &pagedFetch{total: 5, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
		key := archlens.PackagesKey("Fonts")

		require.NoError(t, c.Ensure(context.Background(), key))
		require.NoError(t, c.FetchNext(context.Background(), key))

		assert.Equal(t, 1, fetcher.count())
	})

	t.Run("no-op before the initial fetch", func(t *testing.T) {
		t.Parallel()

		fetcher := &pagedFetch{total: 5, pageSize: 30}
		c := cache.New(archlens.DefaultConfig(), fetcher.fetch)

		require.NoError(t, c.FetchNext(context.Background(), archlens.PackagesKey("Fonts")))
		assert.Zero(t, fetcher.count())
	})

	t.Run("at most one fetch in flight per key", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		var page2Calls atomic.Int32
		fetch := func(ctx context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
			if page == 1 {
				return pkgs(1, 30), true, nil
			}
			page2Calls.Add(1)
			<-release
			return pkgs(31, 30), false, nil
		}

		c := cache.New(archlens.DefaultConfig(), fetch)
		key := archlens.PackagesKey("Fonts")
		require.NoError(t, c.Ensure(context.Background(), key))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.FetchNext(context.Background(), key)
		}()

		// Wait until the first FetchNext is inside the fetch function,
		// then the second call must be a no-op.
		require.Eventually(t, func() bool {
			return c.State(key).FetchingMore
		}, time.Second, time.Millisecond)

		require.NoError(t, c.FetchNext(context.Background(), key))
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), page2Calls.Load())
		assert.Len(t, c.State(key).Items, 60)
	})

	t.Run("failed fetch-more keeps loaded pages and is retryable", func(t *testing.T) {
		t.Parallel()

		var fail atomic.Bool
		fetch := func(ctx context.Context, key archlens.QueryKey, page int) ([]archlens.Package, bool, error) {
			if page == 1 {
				return pkgs(1, 30), true, nil
			}
			if fail.Load() {
				return nil, false, archlens.Errorf(archlens.ETIMEOUT, "timed out")
			}
			return pkgs(31, 10), false, nil
		}

		c := cache.New(archlens.DefaultConfig(), fetch)
		key := archlens.SearchKey("font")
		require.NoError(t, c.Ensure(context.Background(), key))

		fail.Store(true)
		err := c.FetchNext(context.Background(), key)
		require.Error(t, err)

		state := c.State(key)
		assert.Len(t, state.Items, 30, "previously loaded pages intact")
		assert.Equal(t, archlens.ETIMEOUT, archlens.ErrorCode(state.Err))
		assert.True(t, state.HasNext)

		fail.Store(false)
		require.NoError(t, c.FetchNext(context.Background(), key))

		state = c.State(key)
		assert.Len(t, state.Items, 40)
		assert.NoError(t, state.Err)
	})
}

func TestCache_KeyIsolation(t *testing.T) {
	t.Parallel()

	fetcher := &pagedFetch{total: 70, pageSize: 30}
	c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
	fonts := archlens.PackagesKey("Fonts")
	variants := archlens.PackagesKey("Fonts Variants")

	require.NoError(t, c.Ensure(context.Background(), fonts))
	require.NoError(t, c.Ensure(context.Background(), variants))
	require.NoError(t, c.FetchNext(context.Background(), fonts))

	assert.Equal(t, 2, c.State(fonts).Pages)
	assert.Equal(t, 1, c.State(variants).Pages, "fetching page 2 for one key never mutates another")
}

func TestCache_StateUnknownKey(t *testing.T) {
	t.Parallel()

	c := cache.New(archlens.DefaultConfig(), (&pagedFetch{total: 1, pageSize: 30}).fetch)

	state := c.State(archlens.SearchKey("nothing"))
	assert.Empty(t, state.Items)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	fetcher := &pagedFetch{total: 5, pageSize: 30}
	c := cache.New(archlens.DefaultConfig(), fetcher.fetch)
	key := archlens.CategoriesKey()

	require.NoError(t, c.Ensure(context.Background(), key))
	c.Invalidate(context.Background(), key)
	require.NoError(t, c.Ensure(context.Background(), key))

	assert.Equal(t, 2, fetcher.count(), "invalidated key refetches from page 1")
}
