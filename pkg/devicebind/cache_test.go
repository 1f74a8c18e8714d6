package devicebind

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogrenly/platform/pkg/loginhistory"
)

// countingStore wraps the in-memory repository with call counting and
// injectable failures
type countingStore struct {
	*loginhistory.InMemRepository
	scanCalls atomic.Int32
	scanDelay time.Duration
	failScan  atomic.Bool
}

func newCountingStore() *countingStore {
	return &countingStore{InMemRepository: loginhistory.NewInMemRepository()}
}

func (s *countingStore) FindAllActive(ctx context.Context) ([]loginhistory.Record, error) {
	s.scanCalls.Add(1)
	if s.scanDelay > 0 {
		time.Sleep(s.scanDelay)
	}
	if s.failScan.Load() {
		return nil, errors.New("store down")
	}
	return s.InMemRepository.FindAllActive(ctx)
}

func TestSessionCacheBindOverwritesBothIndexes(t *testing.T) {
	cache := NewSessionCache(newCountingStore())

	cache.Bind("u1", "d1")
	cache.Bind("u1", "d2")

	device, ok := cache.LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d2", device)
	_, ok = cache.LookupByDevice("d1")
	assert.False(t, ok, "stale device entry must be removed")

	// d2 changes hands
	cache.Bind("u2", "d2")
	owner, ok := cache.LookupByDevice("d2")
	require.True(t, ok)
	assert.Equal(t, "u2", owner)
	_, ok = cache.LookupByUser("u1")
	assert.False(t, ok, "previous owner's user entry must be removed")
}

func TestSessionCacheUnbind(t *testing.T) {
	cache := NewSessionCache(newCountingStore())
	cache.Bind("u1", "d1")

	cache.Unbind("u1")
	_, ok := cache.LookupByUser("u1")
	assert.False(t, ok)
	_, ok = cache.LookupByDevice("d1")
	assert.False(t, ok)

	// unbinding an absent user is a no-op
	cache.Unbind("u1")
}

func TestEnsureWarmLoadsActiveRecords(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	_, err := store.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)
	_, err = store.Migrate(ctx, "u2", "d2")
	require.NoError(t, err)
	// u1 moved on, only the latest binding is active
	_, err = store.Migrate(ctx, "u1", "d3")
	require.NoError(t, err)

	cache := NewSessionCache(store)
	require.NoError(t, cache.EnsureWarm(ctx))

	device, ok := cache.LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d3", device)
	_, ok = cache.LookupByDevice("d1")
	assert.False(t, ok, "ended records must not be cached")
	owner, ok := cache.LookupByDevice("d2")
	require.True(t, ok)
	assert.Equal(t, "u2", owner)
}

func TestEnsureWarmSingleFlight(t *testing.T) {
	store := newCountingStore()
	store.scanDelay = 20 * time.Millisecond
	cache := NewSessionCache(store)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.EnsureWarm(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), store.scanCalls.Load(), "concurrent warm-up must hit the store once")

	// warmed cache never rescans
	require.NoError(t, cache.EnsureWarm(context.Background()))
	assert.Equal(t, int32(1), store.scanCalls.Load())
}

func TestEnsureWarmFailureLeavesCacheCold(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	_, err := store.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)

	store.failScan.Store(true)
	cache := NewSessionCache(store)
	require.Error(t, cache.EnsureWarm(ctx))
	_, ok := cache.LookupByUser("u1")
	assert.False(t, ok)

	// the store recovers and a retry warms the cache
	store.failScan.Store(false)
	require.NoError(t, cache.EnsureWarm(ctx))
	device, ok := cache.LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d1", device)
	assert.Equal(t, int32(2), store.scanCalls.Load())
}

func TestResetMarksCacheCold(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	cache := NewSessionCache(store)
	require.NoError(t, cache.EnsureWarm(ctx))

	cache.Bind("u1", "d1")
	cache.Reset()
	_, ok := cache.LookupByUser("u1")
	assert.False(t, ok)

	require.NoError(t, cache.EnsureWarm(ctx))
	assert.Equal(t, int32(2), store.scanCalls.Load(), "reset cache warms again")
}
