// Package mock holds hand-rolled fakes shared by tests.
package mock

import (
	"sync"
	"sync/atomic"
)

// Txn records Commit/Rollback calls and returns configured errors.
type Txn struct {
	CommitErr   error
	RollbackErr error

	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commits++
	return t.CommitErr
}

func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollbacks++
	return t.RollbackErr
}

func (t *Txn) Commits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commits
}

func (t *Txn) Rollbacks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollbacks
}

// Dispatcher counts DispatchAll invocations and remembers the last
// target set.
type Dispatcher struct {
	calls int64

	mu   sync.Mutex
	last []string
}

func (d *Dispatcher) DispatchAll(targets []string) {
	atomic.AddInt64(&d.calls, 1)
	d.mu.Lock()
	d.last = append([]string(nil), targets...)
	d.mu.Unlock()
}

func (d *Dispatcher) Calls() int {
	return int(atomic.LoadInt64(&d.calls))
}

func (d *Dispatcher) LastTargets() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
