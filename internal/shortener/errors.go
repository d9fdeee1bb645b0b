package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest 输入校验失败，未触达存储
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAliasConflict 自定义别名已被未过期的记录占用
	ErrAliasConflict = errors.New("alias already in use")
	// ErrAllocationExhausted 生成短码的重试次数耗尽
	ErrAllocationExhausted = errors.New("code allocation exhausted")
	// ErrNotFound 短码不存在
	ErrNotFound = errors.New("short link not found")
	// ErrExpired 短码存在但已过期
	ErrExpired = errors.New("short link expired")
	// ErrStoreUnavailable 存储故障，调用方可整体重试
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnsupported 当前存储后端不支持该操作
	ErrUnsupported = errors.New("operation not supported by store")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
