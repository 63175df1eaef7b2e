package sospeso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/salvavita/sospeso/tenant"
)

// SchemaStmt renders the statement that scopes the session to a tenant
// schema. The form is dialect-dependent.
type SchemaStmt func(schema string) string

func PostgresSchemaStmt(schema string) string {
	return "SET search_path TO " + schema
}

func OracleSchemaStmt(schema string) string {
	return "ALTER SESSION SET CURRENT_SCHEMA=" + schema
}

// Executor runs an ordered DML sequence inside a single transaction
// without committing it, then hands the open transaction to the Store
// under the caller's correlation key.
type Executor struct {
	db         *sql.DB
	tenants    *tenant.Registry
	store      *Store
	schemaStmt SchemaStmt
	log        *log.Helper
}

type ExecutorOption func(*Executor)

func WithSchemaStmt(f SchemaStmt) ExecutorOption {
	return func(e *Executor) {
		e.schemaStmt = f
	}
}

func NewExecutor(db *sql.DB, tenants *tenant.Registry, store *Store, logger log.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		db:         db,
		tenants:    tenants,
		store:      store,
		schemaStmt: PostgresSchemaStmt,
		log:        log.NewHelper(logger),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Stage begins a transaction, scopes it to the tenant schema (ente may
// be empty for work that is not tenant-scoped), executes stmts in order
// summing affected rows, and registers the open transaction under key.
// On any failure the transaction is rolled back, nothing is registered,
// and a handle previously staged under key is left untouched. Stage
// never commits.
func (e *Executor) Stage(ctx context.Context, key, ente string, stmts []string) StagedResult {
	schema, err := e.resolve(ente)
	if err != nil {
		return StagedResult{Err: err}
	}
	if len(stmts) == 0 {
		return StagedResult{Err: ErrNoStatements}
	}

	// The transaction outlives this request: it is committed or rolled
	// back by a later one, or reaped. Begin it detached from the request
	// context so database/sql does not roll it back when the handler
	// returns.
	tx, err := e.db.BeginTx(context.Background(), nil)
	if err != nil {
		return StagedResult{Err: fmt.Errorf("begin transaction: %w", err)}
	}

	total, err := e.runAll(ctx, tx, schema, stmts)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.log.Errorf("rollback after failed staging for key %s: %v", key, rbErr)
		}
		return StagedResult{Err: err}
	}

	// ownership of the open transaction passes to the store
	e.store.Put(key, NewHandle(tx, schema))
	e.log.Infof("staged %d statements for key %s, %d rows affected", len(stmts), key, total)
	return StagedResult{Success: true, RowsAffected: total, Statements: len(stmts)}
}

// Run executes stmts the same way Stage does but commits inline. Used by
// the maintenance paths that do not go through the deferred protocol.
func (e *Executor) Run(ctx context.Context, ente string, stmts []string) (int64, error) {
	schema, err := e.resolve(ente)
	if err != nil {
		return 0, err
	}
	if len(stmts) == 0 {
		return 0, ErrNoStatements
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	total, err := e.runAll(ctx, tx, schema, stmts)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.log.Errorf("rollback: %v", rbErr)
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func (e *Executor) resolve(ente string) (string, error) {
	if ente == "" {
		return "", nil
	}
	d, err := e.tenants.Resolve(ente)
	if err != nil {
		return "", err
	}
	return d.Schema, nil
}

// runAll fires the statements in sequence with no per-statement
// rollback; a failure at statement i aborts the whole sequence.
func (e *Executor) runAll(ctx context.Context, tx *sql.Tx, schema string, stmts []string) (int64, error) {
	if schema != "" {
		if _, err := tx.ExecContext(ctx, e.schemaStmt(schema)); err != nil {
			return 0, fmt.Errorf("set schema %s: %w", schema, err)
		}
	}
	var total int64
	for i, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return 0, fmt.Errorf("statement %d of %d: %w", i+1, len(stmts), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
