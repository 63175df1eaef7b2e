// Package sospeso coordinates deferred database transactions: DML is
// staged in one HTTP request and committed or rolled back by a later
// one, correlated by a session-scoped key.
package sospeso

import (
	"errors"
)

// Txn is the minimal surface of a live database transaction. *sql.Tx
// satisfies it; tests substitute fakes.
type Txn interface {
	Commit() error
	Rollback() error
}

var (
	ErrNoStatements = errors.New("no statements to execute")
)

// ReasonNoPending is the outcome reason reported when commit or rollback
// is invoked for a key with nothing staged. It is a normal outcome, not
// a fault.
const ReasonNoPending = "no pending transaction"

// StagedResult is the synchronous outcome of a stage operation. It is
// returned to the caller and discarded, never persisted.
type StagedResult struct {
	Success      bool
	RowsAffected int64
	Statements   int
	Err          error
}

// Outcome is the result of finalizing a staged transaction.
type Outcome struct {
	Success bool
	Reason  string
}
