package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"shortlink-service/internal/config"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// 最多跟踪的客户端数量，超出后淘汰最久未访问的限流器
const maxTrackedClients = 10000

// RateLimit 按客户端 IP 的令牌桶限流中间件
func RateLimit(limitConfig *config.Limit) (gin.HandlerFunc, error) {
	if !limitConfig.Enabled || limitConfig.Requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}, nil
	}

	burst := limitConfig.Burst
	if burst <= 0 {
		burst = int(limitConfig.Requests)
	}
	limiters, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, fmt.Errorf("创建限流器缓存失败: %w", err)
	}
	var mu sync.Mutex

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters.Get(ip); ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(limitConfig.Requests), burst)
		limiters.Add(ip, l)
		return l
	}

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !limiterFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}, nil
}
