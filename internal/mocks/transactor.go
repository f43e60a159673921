package mocks

import (
	"context"
	"sync/atomic"

	"github.com/phrazzld/taktplan/internal/store"
)

// NoopTransactor runs the function directly with a nil *sql.Tx. Mock stores
// ignore the transaction, so nothing is rolled back when fn fails.
type NoopTransactor struct {
	// Err, when set, is returned after fn succeeds, emulating a failed commit.
	Err   error
	Calls atomic.Int64
}

var _ store.Transactor = (*NoopTransactor)(nil)

// RunInTransaction implements store.Transactor.
func (t *NoopTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	t.Calls.Add(1)
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return t.Err
}
