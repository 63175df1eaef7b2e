package sospeso

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/salvavita/sospeso/notify"
)

// Coordinator finalizes staged transactions. Commit and Rollback are
// idempotent against an absent handle: finalizing a key with nothing
// staged is a normal "nothing to do" outcome, not an error.
type Coordinator struct {
	store      *Store
	dispatcher notify.Dispatcher
	targets    []string
	log        *log.Helper
}

func NewCoordinator(store *Store, dispatcher notify.Dispatcher, targets []string, logger log.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		dispatcher: dispatcher,
		targets:    targets,
		log:        log.NewHelper(logger),
	}
}

// Commit removes the handle staged under key and commits it. On success
// the notification fan-out is launched without waiting; its outcome
// never affects the returned Outcome. A failed commit discards the
// handle with no retry.
func (c *Coordinator) Commit(ctx context.Context, key string) Outcome {
	h, ok := c.store.Remove(key)
	if !ok {
		c.log.Infof("commit for key %s: nothing staged", key)
		return Outcome{Reason: ReasonNoPending}
	}
	if err := h.Commit(); err != nil {
		c.log.Errorf("commit for key %s: %v", key, err)
		return Outcome{Reason: err.Error()}
	}
	c.log.Infof("committed staged transaction for key %s", key)
	c.dispatcher.DispatchAll(c.targets)
	return Outcome{Success: true}
}

// Rollback removes the handle staged under key and rolls it back. It
// never triggers notifications.
func (c *Coordinator) Rollback(ctx context.Context, key string) Outcome {
	h, ok := c.store.Remove(key)
	if !ok {
		c.log.Infof("rollback for key %s: nothing staged", key)
		return Outcome{Reason: ReasonNoPending}
	}
	if err := h.Rollback(); err != nil {
		c.log.Errorf("rollback for key %s: %v", key, err)
		return Outcome{Reason: err.Error()}
	}
	c.log.Infof("rolled back staged transaction for key %s", key)
	return Outcome{Success: true}
}
