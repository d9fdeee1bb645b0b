package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shortlink-service/internal/model"
	"shortlink-service/internal/store"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix 短链接哈希键前缀
const DefaultPrefix = "shortlink:"

// 条件插入：键已存在返回 0，否则写入全部字段并按需设置物理过期时间
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'long_url', ARGV[1], 'created_at', ARGV[2], 'expires_at', ARGV[3], 'clicks', '0', 'custom', ARGV[4])
if ARGV[5] ~= '' then
	redis.call('PEXPIREAT', KEYS[1], ARGV[5])
end
return 1
`)

// 仅当键存在时自增，避免 HINCRBY 凭空创建记录
var incrScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'clicks', 1)
`)

var deleteExpiredScript = redis.NewScript(`
local e = redis.call('HGET', KEYS[1], 'expires_at')
if not e or e == '' then
	return 0
end
if tonumber(e) <= tonumber(ARGV[1]) then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Store 基于 Redis 哈希的持久化实现
// 每条记录一个哈希键，条件插入与自增通过 Lua 脚本在服务端原子执行
type Store struct {
	rdb       *redis.Client
	prefix    string
	retention time.Duration
}

// New 创建 Redis 存储；retention > 0 时过期记录会在 expiresAt+retention 后被 Redis 自动删除
func New(rdb *redis.Client, prefix string, retention time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix, retention: retention}
}

func (s *Store) key(code string) string {
	return s.prefix + code
}

func (s *Store) InsertIfAbsent(ctx context.Context, link *model.ShortLink) error {
	expiresAt, pexpireAt := "", ""
	if link.ExpiresAt != nil {
		expiresAt = strconv.FormatInt(link.ExpiresAt.UnixMilli(), 10)
		if s.retention > 0 {
			pexpireAt = strconv.FormatInt(link.ExpiresAt.Add(s.retention).UnixMilli(), 10)
		}
	}
	custom := "0"
	if link.IsCustomAlias {
		custom = "1"
	}

	n, err := insertScript.Run(ctx, s.rdb, []string{s.key(link.Code)},
		link.LongURL, strconv.FormatInt(link.CreatedAt.UnixMilli(), 10), expiresAt, custom, pexpireAt).Int()
	if err != nil {
		return fmt.Errorf("redis 插入短链接失败: %w", err)
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis 查询短链接失败: %w", err)
	}
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}
	return decode(code, fields)
}

func (s *Store) IncrementClicks(ctx context.Context, code string) error {
	n, err := incrScript.Run(ctx, s.rdb, []string{s.key(code)}).Int64()
	if err != nil {
		return fmt.Errorf("redis 更新点击数失败: %w", err)
	}
	if n < 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, code string) error {
	n, err := s.rdb.Del(ctx, s.key(code)).Result()
	if err != nil {
		return fmt.Errorf("redis 删除短链接失败: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, code string, now time.Time) (bool, error) {
	n, err := deleteExpiredScript.Run(ctx, s.rdb, []string{s.key(code)},
		strconv.FormatInt(now.UnixMilli(), 10)).Int64()
	if err != nil {
		return false, fmt.Errorf("redis 删除过期短链接失败: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired 通过 SCAN 遍历前缀下的键逐个条件删除
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var (
		cursor uint64
		purged int64
	)
	nowMs := strconv.FormatInt(now.UnixMilli(), 10)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+"*", 200).Result()
		if err != nil {
			return purged, fmt.Errorf("redis 扫描短链接失败: %w", err)
		}
		for _, key := range keys {
			n, err := deleteExpiredScript.Run(ctx, s.rdb, []string{key}, nowMs).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return purged, fmt.Errorf("redis 清理过期短链接失败: %w", err)
			}
			purged += n
		}
		cursor = next
		if cursor == 0 {
			return purged, nil
		}
	}
}

func decode(code string, fields map[string]string) (*model.ShortLink, error) {
	link := &model.ShortLink{
		Code:          code,
		LongURL:       fields["long_url"],
		IsCustomAlias: fields["custom"] == "1",
	}
	createdMs, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis 记录 %s 的 created_at 无效: %w", code, err)
	}
	link.CreatedAt = time.UnixMilli(createdMs).UTC()

	if v := fields["expires_at"]; v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis 记录 %s 的 expires_at 无效: %w", code, err)
		}
		t := time.UnixMilli(ms).UTC()
		link.ExpiresAt = &t
	}
	if v := fields["clicks"]; v != "" {
		clicks, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis 记录 %s 的 clicks 无效: %w", code, err)
		}
		link.Clicks = clicks
	}
	return link, nil
}

var _ store.Store = (*Store)(nil)
