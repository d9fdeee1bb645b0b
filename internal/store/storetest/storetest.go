// Package storetest 提供可注入故障、可观测调用次数的存储实现，供测试使用
package storetest

import (
	"context"
	"sync"
	"sync/atomic"

	"shortlink-service/internal/model"
	"shortlink-service/internal/store"
	"shortlink-service/internal/store/memstore"
)

// Store 包装 memstore.Store
type Store struct {
	*memstore.Store

	gets    atomic.Int64
	inserts atomic.Int64

	mu        sync.Mutex
	getErr    error
	insertErr error
	incrErr   error
	deleteErr error
	afterGet  func(code string)
}

func New() *Store {
	return &Store{Store: memstore.New()}
}

// Gets 返回 GetByCode 的调用次数
func (s *Store) Gets() int64 { return s.gets.Load() }

// Inserts 返回 InsertIfAbsent 的调用次数
func (s *Store) Inserts() int64 { return s.inserts.Load() }

func (s *Store) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

func (s *Store) FailInsert(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
}

func (s *Store) FailIncrement(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrErr = err
}

func (s *Store) FailDelete(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// AfterGet 注册在读取完成、返回之前执行的回调，可用来阻塞在途读取
func (s *Store) AfterGet(fn func(code string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterGet = fn
}

func (s *Store) snapshot() (getErr, insertErr, incrErr, deleteErr error, afterGet func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getErr, s.insertErr, s.incrErr, s.deleteErr, s.afterGet
}

func (s *Store) GetByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	s.gets.Add(1)
	getErr, _, _, _, afterGet := s.snapshot()
	if getErr != nil {
		return nil, getErr
	}
	link, err := s.Store.GetByCode(ctx, code)
	if afterGet != nil {
		afterGet(code)
	}
	return link, err
}

func (s *Store) InsertIfAbsent(ctx context.Context, link *model.ShortLink) error {
	s.inserts.Add(1)
	if _, insertErr, _, _, _ := s.snapshot(); insertErr != nil {
		return insertErr
	}
	return s.Store.InsertIfAbsent(ctx, link)
}

func (s *Store) IncrementClicks(ctx context.Context, code string) error {
	if _, _, incrErr, _, _ := s.snapshot(); incrErr != nil {
		return incrErr
	}
	return s.Store.IncrementClicks(ctx, code)
}

func (s *Store) Delete(ctx context.Context, code string) error {
	if _, _, _, deleteErr, _ := s.snapshot(); deleteErr != nil {
		return deleteErr
	}
	return s.Store.Delete(ctx, code)
}

var _ store.Store = (*Store)(nil)
