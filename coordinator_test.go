package sospeso

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/sospeso/mock"
)

func TestCommitNoPending(t *testing.T) {
	store := NewStore(testLogger())
	dispatcher := &mock.Dispatcher{}
	coord := NewCoordinator(store, dispatcher, nil, testLogger())

	out := coord.Commit(context.Background(), "sess-1")

	assert.False(t, out.Success)
	assert.Equal(t, ReasonNoPending, out.Reason)
	assert.Equal(t, 0, dispatcher.Calls())
}

func TestCommitSuccessDispatchesNotifications(t *testing.T) {
	store := NewStore(testLogger())
	dispatcher := &mock.Dispatcher{}
	targets := []string{"https://scheduler.local/start?task=A", "https://scheduler.local/start?task=B"}
	coord := NewCoordinator(store, dispatcher, targets, testLogger())

	txn := &mock.Txn{}
	store.Put("sess-1", NewHandle(txn, "SOGEI_ASP"))

	out := coord.Commit(context.Background(), "sess-1")

	assert.True(t, out.Success)
	assert.Equal(t, 1, txn.Commits())
	assert.Equal(t, 1, dispatcher.Calls())
	assert.Equal(t, targets, dispatcher.LastTargets())
	_, ok := store.Get("sess-1")
	assert.False(t, ok)
}

func TestCommitFailureDiscardsHandleWithoutDispatch(t *testing.T) {
	store := NewStore(testLogger())
	dispatcher := &mock.Dispatcher{}
	coord := NewCoordinator(store, dispatcher, nil, testLogger())

	txn := &mock.Txn{CommitErr: assert.AnError}
	store.Put("sess-1", NewHandle(txn, ""))

	out := coord.Commit(context.Background(), "sess-1")

	assert.False(t, out.Success)
	assert.Equal(t, assert.AnError.Error(), out.Reason)
	assert.Equal(t, 0, dispatcher.Calls())
	// no retry: the handle is gone
	_, ok := store.Get("sess-1")
	assert.False(t, ok)
}

func TestRollbackNeverDispatches(t *testing.T) {
	store := NewStore(testLogger())
	dispatcher := &mock.Dispatcher{}
	coord := NewCoordinator(store, dispatcher, nil, testLogger())

	txn := &mock.Txn{}
	store.Put("sess-1", NewHandle(txn, ""))

	out := coord.Rollback(context.Background(), "sess-1")

	assert.True(t, out.Success)
	assert.Equal(t, 1, txn.Rollbacks())
	assert.Equal(t, 0, dispatcher.Calls())
	_, ok := store.Get("sess-1")
	assert.False(t, ok)

	out = coord.Rollback(context.Background(), "sess-1")
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNoPending, out.Reason)
}

// Full stage -> commit -> commit-again lifecycle against a mocked
// database.
func TestStageCommitLifecycle(t *testing.T) {
	exec, smock, store := newMockExecutor(t)
	dispatcher := &mock.Dispatcher{}
	coord := NewCoordinator(store, dispatcher, []string{"https://scheduler.local/start"}, testLogger())

	stmts := []string{
		"DELETE FROM ejbsched_entr.sched_arcipelago_lmgr",
		"DELETE FROM ejbsched_entr.sched_arcipelago_lmpr",
		"DELETE FROM ejbsched_entr.sched_arcipelago_task",
		"DELETE FROM ejbsched_entr.sched_arcipelago_treg",
	}
	rows := []int64{10, 3, 0, 2}
	smock.ExpectBegin()
	for i, stmt := range stmts {
		smock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, rows[i]))
	}

	res := exec.Stage(context.Background(), "sess-1", "", stmts)
	require.True(t, res.Success)
	assert.EqualValues(t, 15, res.RowsAffected)
	assert.Equal(t, 4, res.Statements)

	smock.ExpectCommit()
	out := coord.Commit(context.Background(), "sess-1")
	assert.True(t, out.Success)
	assert.Equal(t, 1, dispatcher.Calls())

	out = coord.Commit(context.Background(), "sess-1")
	assert.False(t, out.Success)
	assert.Equal(t, ReasonNoPending, out.Reason)
	assert.Equal(t, 1, dispatcher.Calls())

	assert.NoError(t, smock.ExpectationsWereMet())
}
