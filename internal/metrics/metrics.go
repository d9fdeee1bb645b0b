package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shortlink"

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "缓存命中且记录可用的次数",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "缓存未命中（含过期或过旧条目）的次数",
	})
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_evictions_total",
		Help:      "因容量淘汰或失效而移除的缓存条目数",
	})
	StoreLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_loads_total",
		Help:      "缓存未命中后实际发往存储的读取次数（合并后）",
	})

	ShortenResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shorten_total",
		Help:      "短链接创建结果",
	}, []string{"result"})
	ResolveResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_total",
		Help:      "短码解析结果",
	}, []string{"result"})
	AllocationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocation_retries_total",
		Help:      "生成短码冲突导致的重试次数",
	})
	ClickFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "click_increment_failures_total",
		Help:      "点击计数自增失败次数（不影响跳转）",
	})
	ReaperPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reaper_purged_total",
		Help:      "后台清理删除的过期记录数",
	})
)
