package sospeso

import (
	"context"
	"time"
)

// Sweep rolls back and removes every handle that has been staged longer
// than maxIdle. It returns the number of handles reaped. An abandoned
// caller otherwise holds a pooled connection forever.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mtx.Lock()
	var stale []*Handle
	for key, h := range s.handles {
		if h.Age() > maxIdle {
			delete(s.handles, key)
			stale = append(stale, h)
			s.log.Warnf("reaping idle staged transaction for key %s, age %s", key, h.Age())
		}
	}
	s.mtx.Unlock()

	for _, h := range stale {
		if err := h.Rollback(); err != nil {
			s.log.Errorf("rollback of reaped transaction: %v", err)
		}
	}
	return len(stale)
}

// StartReaper sweeps the store every interval until ctx is cancelled.
func (s *Store) StartReaper(ctx context.Context, every, maxIdle time.Duration) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep(maxIdle)
			}
		}
	}()
}
