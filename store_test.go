package sospeso

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"

	"github.com/salvavita/sospeso/mock"
)

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func TestStorePutGetRemove(t *testing.T) {
	s := NewStore(testLogger())

	_, ok := s.Get("sess-1")
	assert.False(t, ok)

	h := NewHandle(&mock.Txn{}, "SOGEI_ASP")
	s.Put("sess-1", h)

	got, ok := s.Get("sess-1")
	assert.True(t, ok)
	assert.Same(t, h, got)
	assert.Equal(t, "SOGEI_ASP", got.Schema())
	assert.Equal(t, 1, s.Len())

	removed, ok := s.Remove("sess-1")
	assert.True(t, ok)
	assert.Same(t, h, removed)
	assert.Equal(t, 0, s.Len())

	_, ok = s.Remove("sess-1")
	assert.False(t, ok)
}

func TestStoreOverwriteRollsBackPrevious(t *testing.T) {
	s := NewStore(testLogger())

	prev := &mock.Txn{}
	next := &mock.Txn{}
	s.Put("sess-1", NewHandle(prev, ""))
	s.Put("sess-1", NewHandle(next, ""))

	// the first handle's connection must not leak
	assert.Equal(t, 1, prev.Rollbacks())
	assert.Equal(t, 0, next.Rollbacks())

	got, ok := s.Get("sess-1")
	assert.True(t, ok)
	assert.NoError(t, got.Rollback())
	assert.Equal(t, 1, next.Rollbacks())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("sess-%d", i)
			s.Put(key, NewHandle(&mock.Txn{}, ""))
			_, ok := s.Get(key)
			assert.True(t, ok)
			_, ok = s.Remove(key)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}

func TestSweepReapsOnlyStaleHandles(t *testing.T) {
	s := NewStore(testLogger())

	stale := &mock.Txn{}
	fresh := &mock.Txn{}
	old := NewHandle(stale, "")
	old.createdAt = time.Now().Add(-time.Hour)
	s.Put("old", old)
	s.Put("new", NewHandle(fresh, ""))

	reaped := s.Sweep(30 * time.Minute)

	assert.Equal(t, 1, reaped)
	assert.Equal(t, 1, stale.Rollbacks())
	assert.Equal(t, 0, fresh.Rollbacks())
	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)
}

func TestStartReaper(t *testing.T) {
	s := NewStore(testLogger())
	txn := &mock.Txn{}
	old := NewHandle(txn, "")
	old.createdAt = time.Now().Add(-time.Hour)
	s.Put("abandoned", old)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartReaper(ctx, 5*time.Millisecond, 30*time.Minute)

	assert.Eventually(t, func() bool {
		return s.Len() == 0 && txn.Rollbacks() == 1
	}, time.Second, 5*time.Millisecond)
}
