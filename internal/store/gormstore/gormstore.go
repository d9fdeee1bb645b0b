package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortlink-service/internal/model"
	"shortlink-service/internal/store"

	"gorm.io/gorm"
)

// Store 基于 gorm 的持久化实现，适用于 MySQL / PostgreSQL / SQLite
// 唯一性由 short_links.code 上的唯一索引保证
type Store struct {
	db *gorm.DB
}

// New 创建存储实例；调用方负责 AutoMigrate
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 创建或更新 short_links 表
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&model.ShortLink{}); err != nil {
		return err
	}
	if stmt, ok := binaryCodeColumn(s.db.Dialector.Name()); ok {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("设置短码列排序规则失败: %w", err)
		}
	}
	return nil
}

// binaryCodeColumn 短码区分大小写；MySQL 默认排序规则不区分，需要改为二进制排序
// PostgreSQL 与 SQLite 默认即按字节比较
func binaryCodeColumn(dialect string) (string, bool) {
	if dialect != "mysql" {
		return "", false
	}
	return "ALTER TABLE short_links MODIFY code VARCHAR(64) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL", true
}

func (s *Store) InsertIfAbsent(ctx context.Context, link *model.ShortLink) error {
	// 使用副本，避免 gorm 回写主键到调用方的记录
	row := link.Clone()
	row.ID = 0
	row.CreatedAt = row.CreatedAt.UTC()
	if row.ExpiresAt != nil {
		t := row.ExpiresAt.UTC()
		row.ExpiresAt = &t
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("插入短链接失败: %w", err)
	}
	return nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	var link model.ShortLink
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("查询短链接失败: %w", err)
	}
	if link.Code != code {
		return nil, store.ErrNotFound
	}
	return &link, nil
}

func (s *Store) IncrementClicks(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).Model(&model.ShortLink{}).
		Where("code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("更新点击数失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).Where("code = ?", code).Delete(&model.ShortLink{})
	if res.Error != nil {
		return fmt.Errorf("删除短链接失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, code string, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("code = ? AND expires_at IS NOT NULL AND expires_at <= ?", code, now.UTC()).
		Delete(&model.ShortLink{})
	if res.Error != nil {
		return false, fmt.Errorf("删除过期短链接失败: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC()).
		Delete(&model.ShortLink{})
	if res.Error != nil {
		return 0, fmt.Errorf("清理过期短链接失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// List 按创建时间倒序分页列出记录
func (s *Store) List(ctx context.Context, limit, offset int) ([]model.ShortLink, error) {
	var links []model.ShortLink
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("获取链接列表失败: %w", err)
	}
	return links, nil
}

// Summary 汇总链接总数、点击总数与未过期链接数
func (s *Store) Summary(ctx context.Context, now time.Time) (*store.Summary, error) {
	var sum store.Summary
	db := s.db.WithContext(ctx).Model(&model.ShortLink{})
	if err := db.Count(&sum.TotalLinks).Error; err != nil {
		return nil, fmt.Errorf("统计链接数失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.ShortLink{}).
		Select("COALESCE(SUM(clicks), 0)").Scan(&sum.TotalClicks).Error; err != nil {
		return nil, fmt.Errorf("统计点击数失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.ShortLink{}).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Count(&sum.LiveLinks).Error; err != nil {
		return nil, fmt.Errorf("统计有效链接数失败: %w", err)
	}
	return &sum, nil
}

// isDuplicate 判断是否为唯一约束冲突
// 开启 TranslateError 时 gorm 会返回 ErrDuplicatedKey，否则退回到驱动错误信息匹配
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Catalog = (*Store)(nil)
)
