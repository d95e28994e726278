package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// MockTransactionManager runs the callback without a real transaction.
// CommitError, when set, is returned after a successful callback to
// simulate a commit failure.
type MockTransactionManager struct {
	Calls       int
	CommitError error
}

// NewMockTransactionManager creates a new mock transaction manager
func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

// WithTransaction implements TransactionManager.WithTransaction
func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	m.Calls++
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return m.CommitError
}
