package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assert.Equal(t, "order:11111111-1111-1111-1111-111111111111", OrderKey(id).String())
	assert.Equal(t, "fulfillment_summary:11111111-1111-1111-1111-111111111111", SummaryKey(id).String())
	assert.Equal(t, "order_list", ListKey(ResourceOrderList, "").String())
	assert.NotEqual(t, OrderKey(id), SummaryKey(id))
}

// ===== Get =====

func TestQueryCache_GetCachesValue(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := OrderKey(uuid.New())
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return "order", nil
	}

	v, err := c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "order", v)

	v, err = c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "order", v)
	assert.Equal(t, 1, calls)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestQueryCache_FailedFetchNotStored(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := OrderKey(uuid.New())
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get(context.Background(), key, func(ctx context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestQueryCache_Expiry(t *testing.T) {
	c := NewQueryCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	key := OrderKey(uuid.New())

	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, _ = c.Get(context.Background(), key, fetch)
	now = now.Add(59 * time.Second)
	v, _ := c.Get(context.Background(), key, fetch)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Second)
	v, _ = c.Get(context.Background(), key, fetch)
	assert.Equal(t, 2, v)
}

func TestQueryCache_ConcurrentCallsShareOneFetch(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := SummaryKey(uuid.New())

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "summary", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]any, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), key, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// let callers attach to the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "summary", v)
	}
	assert.Positive(t, c.Stats().Shared)
}

func TestQueryCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := OrderKey(uuid.New())

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var fetchErr atomic.Value
	fetch := func(ctx context.Context) (any, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
			return nil, err
		}
		return "order", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Get(firstCtx, key, fetch)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan any, 1)
	go func() {
		v, err := c.Get(context.Background(), key, fetch)
		assert.NoError(t, err)
		secondDone <- v
	}()
	require.Eventually(t, func() bool { return c.Stats().Misses == 2 }, time.Second, time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstDone, context.Canceled)

	close(release)
	assert.Equal(t, "order", <-secondDone)
	assert.Nil(t, fetchErr.Load())

	v, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "order", v)
}

// ===== Invalidation =====

func TestQueryCache_Invalidate(t *testing.T) {
	c := NewQueryCache(time.Minute)
	orderID := uuid.New()
	ctx := context.Background()
	value := func(v string) FetchFunc {
		return func(ctx context.Context) (any, error) { return v, nil }
	}

	_, _ = c.Get(ctx, OrderKey(orderID), value("order-v1"))
	_, _ = c.Get(ctx, SummaryKey(orderID), value("summary-v1"))

	c.Invalidate(OrderKey(orderID))

	_, ok := c.Peek(OrderKey(orderID))
	assert.False(t, ok)
	v, ok := c.Peek(SummaryKey(orderID))
	assert.True(t, ok)
	assert.Equal(t, "summary-v1", v)

	got, err := c.Get(ctx, OrderKey(orderID), value("order-v2"))
	require.NoError(t, err)
	assert.Equal(t, "order-v2", got)
}

func TestQueryCache_InvalidateResource(t *testing.T) {
	c := NewQueryCache(time.Minute)
	ctx := context.Background()
	fetch := func(ctx context.Context) (any, error) { return "page", nil }

	_, _ = c.Get(ctx, ListKey(ResourceOrderList, "page=1"), fetch)
	_, _ = c.Get(ctx, ListKey(ResourceOrderList, "page=2"), fetch)
	_, _ = c.Get(ctx, ListKey(ResourceProduct, ""), fetch)
	require.Equal(t, 3, c.Len())

	c.InvalidateResource(ResourceOrderList)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Peek(ListKey(ResourceProduct, ""))
	assert.True(t, ok)
}

func TestQueryCache_InvalidateDuringFetchDropsStaleResult(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := OrderKey(uuid.New())
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan any)
	go func() {
		v, _ := c.Get(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-started
	c.Invalidate(key)
	close(release)
	assert.Equal(t, "stale", <-done)

	_, ok := c.Peek(key)
	assert.False(t, ok, "result fetched before invalidation must not be cached")
}

func TestQueryCache_Clear(t *testing.T) {
	c := NewQueryCache(0)
	assert.Equal(t, DefaultTTL, c.ttl)
	_, _ = c.Get(context.Background(), OrderKey(uuid.New()), func(ctx context.Context) (any, error) { return 1, nil })
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

// ===== Fetch =====

func TestFetch_Typed(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := OrderKey(uuid.New())

	n, err := Fetch(context.Background(), c, key, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		return "unused", nil
	})
	assert.Error(t, err)
}
