package shortener

import (
	"context"
	"errors"
	"time"

	"shortlink-service/internal/metrics"
	"shortlink-service/internal/model"
	"shortlink-service/internal/store"
)

// ShortenRequest 创建短链接请求
type ShortenRequest struct {
	LongURL     string
	CustomAlias string
	ExpiresAt   *time.Time
}

// Shorten 为长链接分配唯一短码并持久化
//
// 自定义别名只做一次条件插入；占用者已过期时回收该别名并重试一次。
// 生成短码在唯一约束冲突时换新候选重试，最多 MaxAttempts 次。
func (s *Service) Shorten(ctx context.Context, req ShortenRequest) (*model.ShortLink, error) {
	now := s.now()
	link, err := s.buildLink(req, now)
	if err != nil {
		metrics.ShortenResults.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if req.CustomAlias != "" {
		link.Code = req.CustomAlias
		err = s.allocateAlias(ctx, link, now)
	} else {
		err = s.allocateGenerated(ctx, link)
	}
	if err != nil {
		metrics.ShortenResults.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	metrics.ShortenResults.WithLabelValues("ok").Inc()
	s.logger.Infow("短链接创建成功", "code", link.Code, "custom", link.IsCustomAlias)
	return link, nil
}

func (s *Service) allocateAlias(ctx context.Context, link *model.ShortLink, now time.Time) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.store.InsertIfAbsent(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return unavailable(err)
		}
		if attempt > 0 {
			break
		}
		reclaimed, err := s.store.DeleteExpired(ctx, link.Code, now)
		if err != nil {
			return unavailable(err)
		}
		if !reclaimed {
			break
		}
		s.cache.Invalidate(link.Code)
		s.logger.Infow("回收已过期的别名", "code", link.Code)
	}
	return ErrAliasConflict
}

func (s *Service) allocateGenerated(ctx context.Context, link *model.ShortLink) error {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			s.logger.Errorw("生成短码失败", "error", err)
			return ErrAllocationExhausted
		}
		if s.isReserved(code) {
			continue
		}

		link.Code = code
		err = s.store.InsertIfAbsent(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return unavailable(err)
		}
		metrics.AllocationRetries.Inc()
		s.logger.Debugw("生成的短码冲突，重试", "code", code, "attempt", attempt)
	}
	s.logger.Warnw("短码分配重试耗尽", "attempts", s.opts.MaxAttempts)
	return ErrAllocationExhausted
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrAliasConflict):
		return "alias_conflict"
	case errors.Is(err, ErrAllocationExhausted):
		return "exhausted"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	default:
		return "unavailable"
	}
}
