package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// mockFinder for testing
type mockFinder struct {
	mu    sync.Mutex
	views []wizard.DataView
	errs  []error
	calls int
}

func (m *mockFinder) FindDataViews(ctx context.Context) ([]wizard.DataView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return append([]wizard.DataView(nil), m.views...), nil
}

func (m *mockFinder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestDataViewCacheListSortsAndCaches(t *testing.T) {
	finder := &mockFinder{views: []wizard.DataView{{ID: "2", Title: "metrics-*"}, {ID: "1", Title: "logs-*"}}}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cache := NewDataViewCache(finder)
	cache.now = clock.now

	views, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []wizard.DataView{{ID: "1", Title: "logs-*"}, {ID: "2", Title: "metrics-*"}}, views)
	assert.Equal(t, clock.t, cache.lastFetched)

	views[0].Title = "mutated"
	again, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "logs-*", again[0].Title)
	assert.Equal(t, 1, finder.callCount())

	clock.advance(cache.ttl)
	_, err = cache.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, finder.callCount())
}

func TestDataViewCacheInvalidateForcesRefresh(t *testing.T) {
	finder := &mockFinder{views: []wizard.DataView{{ID: "1", Title: "a"}}}
	cache := NewDataViewCache(finder)
	ctx := context.Background()

	require.NoError(t, cache.RefreshCache(ctx))
	require.NoError(t, cache.RefreshCache(ctx))
	assert.Equal(t, 1, finder.callCount())

	require.NoError(t, cache.InvalidateCache(ctx))
	assert.True(t, cache.lastFetched.IsZero())

	require.NoError(t, cache.RefreshCache(ctx))
	assert.Equal(t, 2, finder.callCount())
}

func TestDataViewCacheRetriesTransientFailure(t *testing.T) {
	finder := &mockFinder{
		views: []wizard.DataView{{ID: "1", Title: "a"}},
		errs:  []error{newResponseError("GET", "/api/saved_objects/_find", 503, nil)},
	}
	cache := NewDataViewCache(finder)
	cache.retry.InitialDelay = time.Millisecond
	cache.retry.MaxDelay = time.Millisecond

	views, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, 2, finder.callCount())
}

func TestDataViewCacheFatalFailure(t *testing.T) {
	finder := &mockFinder{errs: []error{newResponseError("GET", "/api/saved_objects/_find", 403, []byte(`{"message":"forbidden"}`))}}
	cache := NewDataViewCache(finder)

	_, err := cache.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "forbidden", ExtractErrorMessage(err))
	assert.Equal(t, 1, finder.callCount())
	assert.True(t, cache.lastFetched.IsZero())
}

// mockLister for testing
type mockLister struct {
	mu    sync.Mutex
	ids   []string
	err   error
	calls int
	gate  chan struct{}
}

func (m *mockLister) JobIDs(ctx context.Context) ([]string, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return append([]string(nil), m.ids...), m.err
}

func TestJobListCacheJobIDs(t *testing.T) {
	lister := &mockLister{ids: []string{"b", "a"}}
	cache := NewJobListCache(lister, nil)

	ids, err := cache.JobIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = cache.JobIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)
}

func TestJobListCacheRefreshInBackground(t *testing.T) {
	lister := &mockLister{ids: []string{"job-1"}, gate: make(chan struct{})}
	cache := NewJobListCache(lister, nil)

	var got []string
	cache.OnChange(func(ids []string) { got = ids })

	cache.RefreshJobList()
	cache.RefreshJobList() // already loading, no second fetch

	close(lister.gate)
	cache.Wait()

	assert.Equal(t, []string{"job-1"}, got)
	assert.Equal(t, 1, lister.calls)

	ids, err := cache.JobIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, ids)
	assert.Equal(t, 1, lister.calls)
}

func TestJobListCacheRefreshFailureKeepsIDs(t *testing.T) {
	lister := &mockLister{ids: []string{"a"}}
	cache := NewJobListCache(lister, nil)
	_, err := cache.JobIDs(context.Background())
	require.NoError(t, err)

	lister.mu.Lock()
	lister.err = errors.New("unavailable")
	lister.mu.Unlock()

	cache.RefreshJobList()
	cache.Wait()

	cache.mu.RLock()
	defer cache.mu.RUnlock()
	assert.Equal(t, []string{"a"}, cache.ids)
}

var (
	_ wizard.DataViewCatalog = (*DataViewCache)(nil)
	_ wizard.ListRefresher   = (*JobListCache)(nil)
	_ wizard.JobService      = (*Client)(nil)
	_ wizard.MemoryEstimator = (*Client)(nil)
)
