package sospeso

import (
	"time"
)

// Handle owns one live, uncommitted database transaction. Ownership
// transfers fully into the Store on Put and fully out on Remove; whoever
// holds the handle outside the store is the only component allowed to
// finalize it. Committing or rolling back releases the underlying
// connection back to the pool.
type Handle struct {
	tx        Txn
	schema    string
	createdAt time.Time
}

func NewHandle(tx Txn, schema string) *Handle {
	return &Handle{
		tx:        tx,
		schema:    schema,
		createdAt: time.Now(),
	}
}

// Schema returns the tenant schema the staged statements ran against,
// empty when the work was not tenant-scoped.
func (h *Handle) Schema() string {
	return h.schema
}

// Age reports how long the transaction has been staged.
func (h *Handle) Age() time.Duration {
	return time.Since(h.createdAt)
}

func (h *Handle) Commit() error {
	return h.tx.Commit()
}

func (h *Handle) Rollback() error {
	return h.tx.Rollback()
}
