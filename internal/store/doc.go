// Package store declares the persistence contracts for users, tasks,
// attachment metadata and attachment bytes, together with the sentinel
// errors every implementation returns. Implementations live under
// internal/platform.
package store
