package model

import (
	"time"
)

// ShortLink 短链接记录
// Code 在所有记录中唯一（生成的短码与自定义别名共用同一命名空间）
type ShortLink struct {
	ID            uint       `gorm:"primarykey" json:"-"`
	Code          string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	LongURL       string     `gorm:"type:text;not null" json:"long_url"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at,omitempty"`
	Clicks        int64      `gorm:"default:0;not null" json:"clicks"`
	IsCustomAlias bool       `gorm:"default:false" json:"is_custom_alias"`
}

// TableName 指定表名
func (ShortLink) TableName() string {
	return "short_links"
}

// IsExpired 判断记录在 now 时刻是否已过期
func (l *ShortLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// Clone 返回记录的独立副本，缓存与调用方之间不共享可变状态
func (l *ShortLink) Clone() *ShortLink {
	c := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
