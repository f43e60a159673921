// Package mocks provides centralized mock implementations for testing.
//
// The Mock* stores are small in-memory tables guarded by a mutex, so they can
// back an httptest server as well as a single unit test. Their WithTx methods
// return the receiver and NoopTransactor calls the transaction body directly,
// which means a failing transaction is not rolled back. Tests that depend on
// rollback use sqlmock against the postgres stores instead.
//
// The TestifyMock* types wrap testify/mock for tests that assert on calls.
//
// Usage:
//
//	users := mocks.NewMockUserStore(manager, employee)
//	tasks := mocks.NewMockTaskStore(users)
//	svc, err := service.NewTaskService(tasks, users, attachments, &mocks.NoopTransactor{}, logger)
package mocks
