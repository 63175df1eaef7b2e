package sospeso

import (
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

// Store maps a correlation key to at most one staged Handle. It is the
// only state shared across requests and is safe for concurrent use. The
// store never inspects handle validity; that belongs to the Coordinator.
type Store struct {
	mtx     sync.Mutex
	handles map[string]*Handle
	log     *log.Helper
}

func NewStore(logger log.Logger) *Store {
	return &Store{
		handles: make(map[string]*Handle),
		log:     log.NewHelper(logger),
	}
}

// Put installs the handle for key, taking ownership of it. If a handle
// is already staged under key, the previous one is rolled back before it
// is dropped so its connection is not leaked.
func (s *Store) Put(key string, h *Handle) {
	s.mtx.Lock()
	prev := s.handles[key]
	s.handles[key] = h
	s.mtx.Unlock()

	if prev != nil {
		s.log.Warnf("overwriting staged transaction for key %s, rolling back previous", key)
		if err := prev.Rollback(); err != nil {
			s.log.Errorf("rollback of overwritten transaction for key %s: %v", key, err)
		}
	}
	s.log.Infof("staged transaction registered for key %s", key)
}

// Get returns the handle staged under key, if any. The handle stays
// owned by the store.
func (s *Store) Get(key string) (*Handle, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	h, ok := s.handles[key]
	return h, ok
}

// Remove atomically removes and returns the handle staged under key,
// transferring ownership to the caller.
func (s *Store) Remove(key string) (*Handle, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	h, ok := s.handles[key]
	if ok {
		delete(s.handles, key)
	}
	return h, ok
}

// Len reports how many transactions are currently staged.
func (s *Store) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.handles)
}
