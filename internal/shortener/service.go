package shortener

import (
	"context"
	"time"

	"shortlink-service/internal/cache"
	"shortlink-service/internal/model"
	"shortlink-service/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts    = 5
	DefaultMinAlias       = 3
	DefaultMaxAlias       = 32
	DefaultMaxURLLength   = 2048
	DefaultCleanupTimeout = 2 * time.Second
)

// DefaultReserved 与路由冲突的保留别名
var DefaultReserved = []string{"api", "auth", "health", "metrics", "swagger", "static"}

// CodeSource 短码来源
type CodeSource interface {
	Generate() (string, error)
}

// Options 引擎配置，零值字段使用默认值
type Options struct {
	MaxAttempts     int
	MinAliasLength  int
	MaxAliasLength  int
	MaxURLLength    int
	ReservedAliases []string
	CleanupTimeout  time.Duration
	Now             func() time.Time
}

func (o *Options) setDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.MinAliasLength <= 0 {
		o.MinAliasLength = DefaultMinAlias
	}
	if o.MaxAliasLength <= 0 {
		o.MaxAliasLength = DefaultMaxAlias
	}
	if o.MaxURLLength <= 0 {
		o.MaxURLLength = DefaultMaxURLLength
	}
	if o.ReservedAliases == nil {
		o.ReservedAliases = DefaultReserved
	}
	if o.CleanupTimeout <= 0 {
		o.CleanupTimeout = DefaultCleanupTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Service 短链接核心：分配引擎与解析引擎
// 存储与缓存通过构造函数注入，缓存必须包装同一个存储
type Service struct {
	store    store.Store
	cache    *cache.Cache
	codes    CodeSource
	opts     Options
	validate *validator.Validate
	reserved map[string]struct{}
	logger   *zap.SugaredLogger
}

// New 创建服务实例
func New(st store.Store, c *cache.Cache, codes CodeSource, opts Options, logger *zap.SugaredLogger) *Service {
	opts.setDefaults()
	reserved := make(map[string]struct{}, len(opts.ReservedAliases))
	for _, r := range opts.ReservedAliases {
		reserved[normalizeReserved(r)] = struct{}{}
	}
	return &Service{
		store:    st,
		cache:    c,
		codes:    codes,
		opts:     opts,
		validate: validator.New(),
		reserved: reserved,
		logger:   logger.Named("shortener"),
	}
}

func (s *Service) now() time.Time {
	return s.opts.Now().UTC()
}

// Expired 按服务时钟判断记录是否已过期
func (s *Service) Expired(link *model.ShortLink) bool {
	return link.IsExpired(s.now())
}

// List 分页列出记录，存储不支持时返回 ErrUnsupported
func (s *Service) List(ctx context.Context, limit, offset int) ([]model.ShortLink, error) {
	catalog, ok := s.store.(store.Catalog)
	if !ok {
		return nil, ErrUnsupported
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	links, err := catalog.List(ctx, limit, offset)
	if err != nil {
		return nil, unavailable(err)
	}
	return links, nil
}

// Summary 返回全局统计，存储不支持时返回 ErrUnsupported
func (s *Service) Summary(ctx context.Context) (*store.Summary, error) {
	catalog, ok := s.store.(store.Catalog)
	if !ok {
		return nil, ErrUnsupported
	}
	sum, err := catalog.Summary(ctx, s.now())
	if err != nil {
		return nil, unavailable(err)
	}
	return sum, nil
}

// PurgeExpired 删除所有已过期的记录
// 缓存中可能残留的过期条目会在命中时被过期检查拦截
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}
