// Package service implements the semantics behind each HTTP endpoint
// and shapes the JSON envelopes.
package service

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/salvavita/sospeso"
	"github.com/salvavita/sospeso/query"
	"github.com/salvavita/sospeso/tenant"
)

// Maintenance wires the deferred-transaction core and the read services
// behind the HTTP surface. The correlation key is always passed in
// explicitly; this layer never looks it up ambiently.
type Maintenance struct {
	exec    *sospeso.Executor
	coord   *sospeso.Coordinator
	queries *query.Service
	tenants *tenant.Registry
	log     *log.Helper
}

func NewMaintenance(exec *sospeso.Executor, coord *sospeso.Coordinator, queries *query.Service, tenants *tenant.Registry, logger log.Logger) *Maintenance {
	return &Maintenance{
		exec:    exec,
		coord:   coord,
		queries: queries,
		tenants: tenants,
		log:     log.NewHelper(logger),
	}
}

// ListReply is the envelope of the read endpoints.
type ListReply struct {
	Success      bool        `json:"success"`
	TotalRecords int         `json:"totalRecords"`
	Data         interface{} `json:"data"`
}

// StageReply is the envelope of the staging endpoints.
type StageReply struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RecordsAffected int64  `json:"recordsAffected"`
	Queries         int    `json:"queries"`
	Note            string `json:"note,omitempty"`
	Ente            string `json:"ente,omitempty"`
	SequLongID      int64  `json:"sequLongId,omitempty"`
}

// ActionReply is the envelope of commit/rollback and the inline delete.
type ActionReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Health opens and releases a database connection.
func (m *Maintenance) Health(ctx context.Context) error {
	return m.queries.Ping(ctx)
}

func (m *Maintenance) PendingProtocols(ctx context.Context) (*ListReply, error) {
	data, err := m.queries.PendingProtocols(ctx)
	if err != nil {
		return nil, err
	}
	return &ListReply{Success: true, TotalRecords: len(data), Data: data}, nil
}

func (m *Maintenance) ScheduledTasks(ctx context.Context) (*ListReply, error) {
	data, err := m.queries.ScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}
	return &ListReply{Success: true, TotalRecords: len(data), Data: data}, nil
}

// PurgeScheduler stages the scheduler purge under key without
// committing. The notification URLs are only launched when the staged
// work is committed.
func (m *Maintenance) PurgeScheduler(ctx context.Context, key string) *StageReply {
	res := m.exec.Stage(ctx, key, "", schedulerPurgeStatements())
	if !res.Success {
		return &StageReply{Success: false, Message: "Errore: " + res.Err.Error()}
	}
	return &StageReply{
		Success:         true,
		Message:         "Cancellazione dati scheduling in sospeso - In attesa di Commit/Rollback",
		RecordsAffected: res.RowsAffected,
		Queries:         res.Statements,
		Note:            "Le URL verranno lanciate solo al COMMIT",
	}
}

// DeleteTemporary stages the cascade delete of one temporary protocol,
// tenant-scoped, under key without committing.
func (m *Maintenance) DeleteTemporary(ctx context.Context, key, ente string, sequLongID int64) *StageReply {
	d, err := m.tenants.Resolve(ente)
	if err != nil {
		return &StageReply{Success: false, Message: "Errore: " + err.Error()}
	}
	res := m.exec.Stage(ctx, key, ente, temporaryProtocolStatements(d.Schema, sequLongID))
	if !res.Success {
		return &StageReply{Success: false, Message: "Errore: " + res.Err.Error()}
	}
	return &StageReply{
		Success:         true,
		Message:         "Cancellazione in sospeso - In attesa di Commit/Rollback",
		RecordsAffected: res.RowsAffected,
		Queries:         res.Statements,
		Ente:            ente,
		SequLongID:      sequLongID,
	}
}

// DeleteTransitioning deletes the protocols stuck in transition for one
// tenant and commits inline. This endpoint deliberately bypasses the
// deferred protocol.
func (m *Maintenance) DeleteTransitioning(ctx context.Context, ente string) (*ActionReply, error) {
	d, err := m.tenants.Resolve(ente)
	if err != nil {
		return nil, err
	}
	if _, err := m.exec.Run(ctx, ente, transitioningProtocolStatements(d.Schema)); err != nil {
		return nil, err
	}
	return &ActionReply{
		Success: true,
		Message: fmt.Sprintf("Protocolli in transizione eliminati per ente: %s", ente),
	}, nil
}

// Commit finalizes the staged work for key. No pending transaction is a
// normal unsuccessful outcome, not a fault.
func (m *Maintenance) Commit(ctx context.Context, key string) *ActionReply {
	out := m.coord.Commit(ctx, key)
	if !out.Success {
		if out.Reason == sospeso.ReasonNoPending {
			return &ActionReply{Success: false, Message: "Nessuna transazione in sospeso"}
		}
		return &ActionReply{Success: false, Message: "Errore nel commit: " + out.Reason}
	}
	return &ActionReply{Success: true, Message: "COMMIT eseguito con successo - Task lanciati in background"}
}

// Rollback undoes the staged work for key.
func (m *Maintenance) Rollback(ctx context.Context, key string) *ActionReply {
	out := m.coord.Rollback(ctx, key)
	if !out.Success {
		if out.Reason == sospeso.ReasonNoPending {
			return &ActionReply{Success: false, Message: "Nessuna transazione in sospeso"}
		}
		return &ActionReply{Success: false, Message: "Errore nel rollback: " + out.Reason}
	}
	return &ActionReply{Success: true, Message: "ROLLBACK eseguito con successo"}
}
