package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"shortlink-service/internal/model"
	"shortlink-service/internal/store"
)

// Store 进程内存储，用于本地开发与测试
// 所有操作在同一把锁下完成，因此条件插入与计数自增天然原子
type Store struct {
	mu    sync.RWMutex
	links map[string]*model.ShortLink
}

func New() *Store {
	return &Store{links: make(map[string]*model.ShortLink)}
}

func (s *Store) InsertIfAbsent(_ context.Context, link *model.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.Code]; ok {
		return store.ErrAlreadyExists
	}
	s.links[link.Code] = link.Clone()
	return nil
}

func (s *Store) GetByCode(_ context.Context, code string) (*model.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return link.Clone(), nil
}

func (s *Store) IncrementClicks(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[code]
	if !ok {
		return store.ErrNotFound
	}
	link.Clicks++
	return nil
}

func (s *Store) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[code]; !ok {
		return store.ErrNotFound
	}
	delete(s.links, code)
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[code]
	if !ok || !link.IsExpired(now) {
		return false, nil
	}
	delete(s.links, code)
	return true, nil
}

func (s *Store) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for code, link := range s.links {
		if link.IsExpired(now) {
			delete(s.links, code)
			n++
		}
	}
	return n, nil
}

func (s *Store) List(_ context.Context, limit, offset int) ([]model.ShortLink, error) {
	s.mu.RLock()
	all := make([]model.ShortLink, 0, len(s.links))
	for _, link := range s.links {
		all = append(all, *link.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Code < all[j].Code
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []model.ShortLink{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (s *Store) Summary(_ context.Context, now time.Time) (*store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := &store.Summary{TotalLinks: int64(len(s.links))}
	for _, link := range s.links {
		sum.TotalClicks += link.Clicks
		if !link.IsExpired(now) {
			sum.LiveLinks++
		}
	}
	return sum, nil
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Catalog = (*Store)(nil)
)
