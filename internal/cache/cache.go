package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"shortlink-service/internal/metrics"
	"shortlink-service/internal/model"
	"shortlink-service/internal/store"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSize         = 10000
	DefaultMaxStaleness = 30 * time.Second
	DefaultLoadTimeout  = 3 * time.Second
)

// Options 缓存配置
type Options struct {
	// Size 最大条目数
	Size int
	// MaxStaleness 条目缓存超过该时长后强制回源，限制点击数的陈旧程度；<= 0 表示不限制
	MaxStaleness time.Duration
	// LoadTimeout 单次回源读取的超时
	LoadTimeout time.Duration
	// Now 时钟，测试中可替换
	Now func() time.Time
}

type entry struct {
	link     *model.ShortLink
	cachedAt time.Time
}

// loadState 单个短码的回源状态，refs 为等待中的调用方数量，归零时删除
type loadState struct {
	version uint64
	refs    int
}

// Cache 短码到记录快照的有界 LRU 缓存
//
// 并发未命中同一短码时合并为一次存储读取。失效只推进该短码自己的 version，
// 回源前记下的 version 与当前不一致时放弃回填，因此删除之后不会被旧的在途读取重新写回。
type Cache struct {
	store        store.Store
	entries      *lru.Cache[string, entry]
	group        singleflight.Group
	mu           sync.Mutex
	loads        map[string]*loadState
	maxStaleness time.Duration
	loadTimeout  time.Duration
	now          func() time.Time
	logger       *zap.SugaredLogger
}

// New 创建缓存层
func New(st store.Store, opts Options, logger *zap.SugaredLogger) (*Cache, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	entries, err := lru.NewWithEvict[string, entry](opts.Size, func(string, entry) {
		metrics.CacheEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("创建 LRU 缓存失败: %w", err)
	}
	return &Cache{
		store:        st,
		entries:      entries,
		loads:        make(map[string]*loadState),
		maxStaleness: opts.MaxStaleness,
		loadTimeout:  opts.LoadTimeout,
		now:          opts.Now,
		logger:       logger.Named("cache"),
	}, nil
}

// Get 返回短码对应记录的副本，未命中时回源
//
// 命中但已过期的条目会被移出缓存并原样返回，由调用方判定过期并清理存储；
// 过期记录从不回填进缓存。
func (c *Cache) Get(ctx context.Context, code string) (*model.ShortLink, error) {
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries.Get(code)
	if ok && e.link.IsExpired(now) {
		c.invalidateLocked(code)
		c.mu.Unlock()
		metrics.CacheMisses.Inc()
		return e.link.Clone(), nil
	}
	if ok && c.maxStaleness > 0 && now.Sub(e.cachedAt) > c.maxStaleness {
		ok = false
	}
	if ok {
		c.mu.Unlock()
		metrics.CacheHits.Inc()
		return e.link.Clone(), nil
	}
	version := c.acquireLocked(code)
	c.mu.Unlock()

	metrics.CacheMisses.Inc()
	return c.load(ctx, code, version)
}

// acquireLocked 登记一个等待回源的调用方并返回该短码当前的 version
func (c *Cache) acquireLocked(code string) uint64 {
	st, ok := c.loads[code]
	if !ok {
		st = &loadState{}
		c.loads[code] = st
	}
	st.refs++
	return st.version
}

// release 在回源结束（含回填）之后注销调用方
func (c *Cache) release(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.loads[code]
	if !ok {
		return
	}
	st.refs--
	if st.refs <= 0 {
		delete(c.loads, code)
	}
}

func (c *Cache) load(ctx context.Context, code string, version uint64) (*model.ShortLink, error) {
	// version 进入合并键，失效之后的请求不会搭上失效之前的在途读取
	key := code + "@" + strconv.FormatUint(version, 10)
	ch := c.group.DoChan(key, func() (any, error) {
		metrics.StoreLoads.Inc()
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		link, err := c.store.GetByCode(loadCtx, code)
		if err != nil {
			return nil, err
		}
		c.fill(code, link, version)
		return link, nil
	})

	select {
	case <-ctx.Done():
		// 在途读取结束前保留登记，避免新请求以相同 version 搭上失效之前的读取
		go func() {
			<-ch
			c.release(code)
		}()
		return nil, ctx.Err()
	case res := <-ch:
		c.release(code)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.ShortLink).Clone(), nil
	}
}

func (c *Cache) fill(code string, link *model.ShortLink, version uint64) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.loads[code]
	if !ok || st.version != version {
		c.logger.Debugf("短码 %s 在回源期间已失效，跳过回填", code)
		return
	}
	if link.IsExpired(now) {
		return
	}
	c.entries.Add(code, entry{link: link.Clone(), cachedAt: now})
}

// Invalidate 移除短码对应的条目并使该短码在途回源的回填失效
func (c *Cache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(code)
}

func (c *Cache) invalidateLocked(code string) {
	if st, ok := c.loads[code]; ok {
		st.version++
	}
	c.entries.Remove(code)
}

// RecordClick 在存储自增成功后同步更新缓存中的点击数
func (c *Cache) RecordClick(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(code)
	if !ok {
		return
	}
	link := e.link.Clone()
	link.Clicks++
	c.entries.Add(code, entry{link: link, cachedAt: e.cachedAt})
}

// Len 返回当前缓存条目数
func (c *Cache) Len() int {
	return c.entries.Len()
}
