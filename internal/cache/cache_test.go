package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shortlink-service/internal/model"
	"shortlink-service/internal/store"
	"shortlink-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupCache(t *testing.T, size int, staleness time.Duration) (*Cache, *storetest.Store, *clock) {
	t.Helper()
	st := storetest.New()
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(st, Options{Size: size, MaxStaleness: staleness, Now: clk.Now}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return c, st, clk
}

func insert(t *testing.T, st store.Store, code string, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, st.InsertIfAbsent(context.Background(), &model.ShortLink{
		Code: code, LongURL: "https://example.com/" + code, ExpiresAt: expiresAt,
	}))
}

func TestCache_MissThenHit(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "abc", nil)
	ctx := context.Background()

	link, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/abc", link.LongURL)

	_, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Gets(), "第二次读取应命中缓存")
	assert.Equal(t, 1, c.Len())
}

func TestCache_NotFoundIsNotCached(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	_, err := c.Get(context.Background(), "none")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, c.Len())

	insert(t, st, "none", nil)
	link, err := c.Get(context.Background(), "none")
	require.NoError(t, err)
	assert.Equal(t, "none", link.Code)
}

func TestCache_ExpiredHitIsEvicted(t *testing.T) {
	c, st, clk := setupCache(t, 10, 0)
	exp := clk.Now().Add(time.Second)
	insert(t, st, "soon", &exp)
	ctx := context.Background()

	_, err := c.Get(ctx, "soon")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	clk.Advance(2 * time.Second)
	link, err := c.Get(ctx, "soon")
	require.NoError(t, err)
	assert.True(t, link.IsExpired(clk.Now()))
	assert.Equal(t, 0, c.Len(), "过期条目应被移出缓存")

	// 再次读取回源，但过期记录不回填
	_, err = c.Get(ctx, "soon")
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Gets())
	assert.Equal(t, 0, c.Len())
}

func TestCache_CoalescesConcurrentMisses(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "hot", nil)

	release := make(chan struct{})
	st.AfterGet(func(string) { <-release })

	const n = 50
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		okCount atomic.Int64
	)
	started.Add(n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			link, err := c.Get(context.Background(), "hot")
			if err == nil && link.LongURL == "https://example.com/hot" {
				okCount.Add(1)
			}
		}()
	}
	started.Wait()
	// 等待所有协程进入合并等待
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(n), okCount.Load())
	assert.Equal(t, int64(1), st.Gets(), "并发未命中应合并为一次存储读取")
}

func TestCache_InvalidateDuringLoadSkipsFill(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "race", nil)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	st.AfterGet(func(string) {
		close(loaded)
		<-release
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(ctx, "race")
	}()

	<-loaded
	st.AfterGet(nil)
	// 在途读取已拿到旧记录，此时删除
	c.Invalidate("race")
	require.NoError(t, st.Delete(ctx, "race"))
	c.Invalidate("race")
	close(release)
	<-done

	assert.Equal(t, 0, c.Len(), "失效后的在途读取不能回填")
	_, err := c.Get(ctx, "race")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func pendingLoads(c *Cache) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loads)
}

func TestCache_InvalidateOtherCodeKeepsCoalescing(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "hot", nil)
	insert(t, st, "other", nil)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	st.AfterGet(func(code string) {
		if code != "hot" {
			return
		}
		once.Do(func() { close(loaded) })
		<-release
	})

	var wg sync.WaitGroup
	get := func() {
		defer wg.Done()
		link, err := c.Get(ctx, "hot")
		assert.NoError(t, err)
		if link != nil {
			assert.Equal(t, "https://example.com/hot", link.LongURL)
		}
	}

	wg.Add(1)
	go get()
	<-loaded

	// 其他短码的失效不影响 hot 的在途读取
	c.Invalidate("other")
	wg.Add(1)
	go get()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), st.Gets(), "同一短码的在途读取只能有一次")
	assert.Equal(t, 1, c.Len(), "回填不应因其他短码失效而被丢弃")
	assert.Zero(t, pendingLoads(c))
}

func TestCache_CancelledWaiterDoesNotShareStaleLoad(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "race", nil)

	loaded := make(chan struct{})
	release := make(chan struct{})
	st.AfterGet(func(string) {
		close(loaded)
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "race")
		errCh <- err
	}()

	<-loaded
	st.AfterGet(nil)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// 唯一的调用方已放弃等待，但读取仍在途
	c.Invalidate("race")
	require.NoError(t, st.Delete(context.Background(), "race"))
	c.Invalidate("race")

	_, err := c.Get(context.Background(), "race")
	assert.ErrorIs(t, err, store.ErrNotFound, "删除之后的请求不能搭上删除之前的读取")
	assert.Equal(t, int64(2), st.Gets())

	close(release)
	require.Eventually(t, func() bool { return pendingLoads(c) == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, c.Len())
}

func TestCache_RecordClickUpdatesEntry(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "cnt", nil)
	ctx := context.Background()

	_, err := c.Get(ctx, "cnt")
	require.NoError(t, err)
	c.RecordClick("cnt")
	c.RecordClick("cnt")
	c.RecordClick("absent")

	link, err := c.Get(ctx, "cnt")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.Clicks)
	assert.Equal(t, int64(1), st.Gets())
}

func TestCache_MaxStalenessForcesReload(t *testing.T) {
	c, st, clk := setupCache(t, 10, 30*time.Second)
	insert(t, st, "old", nil)
	ctx := context.Background()

	_, err := c.Get(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, st.IncrementClicks(ctx, "old"))

	clk.Advance(31 * time.Second)
	link, err := c.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.Clicks)
	assert.Equal(t, int64(2), st.Gets())
}

func TestCache_LRUEviction(t *testing.T) {
	c, st, _ := setupCache(t, 2, 0)
	ctx := context.Background()
	for _, code := range []string{"c1", "c2", "c3"} {
		insert(t, st, code, nil)
		_, err := c.Get(ctx, code)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	// c1 已被淘汰，需要回源
	_, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Gets())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c, st, _ := setupCache(t, 10, 0)
	insert(t, st, "cp", nil)
	ctx := context.Background()

	link, err := c.Get(ctx, "cp")
	require.NoError(t, err)
	link.LongURL = "https://evil.example"

	again, err := c.Get(ctx, "cp")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cp", again.LongURL)
}
