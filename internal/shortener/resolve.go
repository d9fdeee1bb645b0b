package shortener

import (
	"context"
	"errors"
	"time"

	"shortlink-service/internal/metrics"
	"shortlink-service/internal/model"
	"shortlink-service/internal/store"
)

// Resolve 将短码解析为长链接并记录一次点击
//
// 点击计数是建议性的：自增失败只记录日志，不影响解析结果。
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.lookup(ctx, code)
	if err != nil {
		metrics.ResolveResults.WithLabelValues(resultLabel(err)).Inc()
		return "", err
	}

	now := s.now()
	if link.IsExpired(now) {
		s.cleanupExpired(ctx, code, now)
		metrics.ResolveResults.WithLabelValues("expired").Inc()
		return "", ErrExpired
	}

	if err := s.store.IncrementClicks(ctx, code); err != nil {
		metrics.ClickFailures.Inc()
		s.logger.Warnw("点击计数失败", "code", code, "error", err)
	} else {
		s.cache.RecordClick(code)
	}

	metrics.ResolveResults.WithLabelValues("ok").Inc()
	return link.LongURL, nil
}

// Stats 返回完整记录（包括已过期但尚未清理的记录），不增加点击数
func (s *Service) Stats(ctx context.Context, code string) (*model.ShortLink, error) {
	return s.lookup(ctx, code)
}

// Remove 删除短码
// 删除前后各失效一次缓存，保证删除返回后不会再解析到该记录
func (s *Service) Remove(ctx context.Context, code string) error {
	if !validCode(code) {
		return ErrNotFound
	}
	s.cache.Invalidate(code)
	err := s.store.Delete(ctx, code)
	s.cache.Invalidate(code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return unavailable(err)
	}
	s.logger.Infow("短链接已删除", "code", code)
	return nil
}

func (s *Service) lookup(ctx context.Context, code string) (*model.ShortLink, error) {
	if !validCode(code) {
		return nil, ErrNotFound
	}
	link, err := s.cache.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return link, nil
}

// cleanupExpired 尽力删除过期记录，失败不对调用方可见
func (s *Service) cleanupExpired(ctx context.Context, code string, now time.Time) {
	s.cache.Invalidate(code)
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CleanupTimeout)
	defer cancel()
	if _, err := s.store.DeleteExpired(cleanupCtx, code, now); err != nil {
		s.logger.Warnw("清理过期短链接失败", "code", code, "error", err)
	}
}
