package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	errWork := errors.New("task row rejected")
	errDriver := errors.New("connection reset")

	tests := []struct {
		name      string
		expect    func(mock sqlmock.Sqlmock)
		fnErr     error
		wantErrIs []error
		wantMsg   string
	}{
		{
			name: "commits when fn succeeds",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back and returns fn error unchanged",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fnErr:     errWork,
			wantErrIs: []error{errWork},
		},
		{
			name: "begin failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errDriver)
			},
			wantErrIs: []error{errDriver, ErrTransactionFailed},
			wantMsg:   "failed to begin transaction",
		},
		{
			name: "commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errDriver)
			},
			wantErrIs: []error{errDriver, ErrTransactionFailed},
			wantMsg:   "failed to commit transaction",
		},
		{
			name: "rollback failure keeps fn error",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errDriver)
			},
			fnErr:     errWork,
			wantErrIs: []error{errWork},
			wantMsg:   "error rolling back transaction: connection reset",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newSQLMock(t)
			tc.expect(mock)

			called := false
			err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				called = true
				return tc.fnErr
			})

			if len(tc.wantErrIs) == 0 {
				require.NoError(t, err)
				assert.True(t, called)
				return
			}
			require.Error(t, err)
			for _, target := range tc.wantErrIs {
				assert.ErrorIs(t, err, target)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestRunInTransaction_Panic(t *testing.T) {
	for _, rollbackErr := range []error{nil, errors.New("rollback failed")} {
		db, mock := newSQLMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		assert.PanicsWithValue(t, "attachment insert exploded", func() {
			_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
				panic("attachment insert exploded")
			})
		})
	}
}

func TestDBTransactor(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attachments").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	var transactor Transactor = NewDBTransactor(db)
	err := transactor.RunInTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		require.NotNil(t, tx)
		_, err := tx.ExecContext(ctx, "DELETE FROM attachments WHERE task_id = $1", "id")
		return err
	})

	assert.NoError(t, err)
}
