package store

import (
	"context"
	"errors"
	"time"

	"shortlink-service/internal/model"
)

var (
	// ErrAlreadyExists 短码已被占用（唯一约束冲突）
	ErrAlreadyExists = errors.New("store: code already exists")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("store: record not found")
)

// Store 是短链接记录的持久化存储
// InsertIfAbsent 与 IncrementClicks 必须在存储层原子完成
type Store interface {
	// InsertIfAbsent 以 Code 为键条件插入，键已存在时返回 ErrAlreadyExists
	InsertIfAbsent(ctx context.Context, link *model.ShortLink) error
	// GetByCode 按短码读取记录（包括已过期但未清理的记录）
	GetByCode(ctx context.Context, code string) (*model.ShortLink, error)
	// IncrementClicks 原子地将点击数加一，记录不存在时返回 ErrNotFound
	IncrementClicks(ctx context.Context, code string) error
	// Delete 删除记录，记录不存在时返回 ErrNotFound
	Delete(ctx context.Context, code string) error
	// DeleteExpired 仅当记录在 now 时刻已过期时删除它，返回是否删除
	DeleteExpired(ctx context.Context, code string, now time.Time) (bool, error)
	// PurgeExpired 批量删除所有在 now 时刻已过期的记录
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Summary 全局统计
type Summary struct {
	TotalLinks  int64 `json:"total_links"`
	TotalClicks int64 `json:"total_clicks"`
	LiveLinks   int64 `json:"live_links"`
}

// Catalog 是可选能力：支持列表与汇总的存储实现它
type Catalog interface {
	List(ctx context.Context, limit, offset int) ([]model.ShortLink, error)
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}
