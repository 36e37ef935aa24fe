package api

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mlops-tools/dfa-wizard/internal/constants"
	"github.com/mlops-tools/dfa-wizard/internal/http"
	"github.com/mlops-tools/dfa-wizard/internal/logging"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// DataViewFinder is the part of Client the data view cache needs.
type DataViewFinder interface {
	FindDataViews(ctx context.Context) ([]wizard.DataView, error)
}

// DataViewCache keeps the data view listing so repeated lookups during one
// session do not hit Kibana. It implements wizard.DataViewCatalog.
type DataViewCache struct {
	finder      DataViewFinder
	ttl         time.Duration
	retry       http.Config
	now         func() time.Time
	views       []wizard.DataView
	lastFetched time.Time
	mu          sync.RWMutex
}

// NewDataViewCache creates an empty cache in front of finder.
func NewDataViewCache(finder DataViewFinder) *DataViewCache {
	// The client already retries individual requests; this covers a
	// listing that fails partway through pagination.
	retry := http.DefaultConfig()
	retry.MaxRetries = 2
	return &DataViewCache{
		finder: finder,
		ttl:    constants.DataViewCacheTTL,
		retry:  retry,
		now:    time.Now,
	}
}

// InvalidateCache drops the cached listing.
func (c *DataViewCache) InvalidateCache(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = nil
	c.lastFetched = time.Time{}
	return nil
}

// RefreshCache fetches the listing unless a fresh one is cached. Transient
// failures are retried; the previous listing survives a failed refresh.
func (c *DataViewCache) RefreshCache(ctx context.Context) error {
	if c.fresh() {
		return nil
	}

	var views []wizard.DataView
	err := http.ExecuteWithRetry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		views, err = c.finder.FindDataViews(ctx)
		return err
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return err
	}
	slices.SortFunc(views, func(a, b wizard.DataView) int {
		return strings.Compare(a.Title, b.Title)
	})
	c.views = views
	c.lastFetched = c.now()
	return nil
}

func (c *DataViewCache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.lastFetched.IsZero() && c.now().Sub(c.lastFetched) < c.ttl
}

// List returns the cached listing sorted by title, refreshing it first if
// it is missing or stale.
func (c *DataViewCache) List(ctx context.Context) ([]wizard.DataView, error) {
	if err := c.RefreshCache(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.views), nil
}

// JobLister is the part of Client the job list cache needs.
type JobLister interface {
	JobIDs(ctx context.Context) ([]string, error)
}

// JobListCache holds the ids of existing jobs. It implements
// wizard.ListRefresher: RefreshJobList reloads in the background and
// never blocks the caller.
type JobListCache struct {
	lister    JobLister
	logger    *logging.Logger
	ttl       time.Duration
	now       func() time.Time
	ids       []string
	fetched   time.Time
	isLoading bool
	onChange  func([]string)
	wg        sync.WaitGroup
	mu        sync.RWMutex
}

// NewJobListCache creates an empty cache in front of lister. logger may be nil.
func NewJobListCache(lister JobLister, logger *logging.Logger) *JobListCache {
	if logger == nil {
		logger = logging.Nop()
	}
	return &JobListCache{
		lister: lister,
		logger: logger,
		ttl:    constants.JobListCacheTTL,
		now:    time.Now,
	}
}

// OnChange registers fn to receive the id list after every successful load.
func (c *JobListCache) OnChange(fn func([]string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// JobIDs returns the cached ids, loading them when missing or stale.
func (c *JobListCache) JobIDs(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if !c.fetched.IsZero() && c.now().Sub(c.fetched) < c.ttl {
		ids := slices.Clone(c.ids)
		c.mu.RUnlock()
		return ids, nil
	}
	c.mu.RUnlock()

	if err := c.fetch(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.ids), nil
}

// RefreshJobList starts a background reload. A reload already in flight
// makes this a no-op.
func (c *JobListCache) RefreshJobList() {
	c.mu.Lock()
	if c.isLoading {
		c.mu.Unlock()
		return
	}
	c.isLoading = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), constants.APIRequestTimeout)
		defer cancel()
		if err := c.fetch(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("failed to refresh job list")
		}
		c.mu.Lock()
		c.isLoading = false
		c.mu.Unlock()
	}()
}

// Wait blocks until background reloads have finished.
func (c *JobListCache) Wait() {
	c.wg.Wait()
}

func (c *JobListCache) fetch(ctx context.Context) error {
	ids, err := c.lister.JobIDs(ctx)
	if err != nil {
		return err
	}
	slices.Sort(ids)

	c.mu.Lock()
	c.ids = ids
	c.fetched = c.now()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(slices.Clone(ids))
	}
	return nil
}
