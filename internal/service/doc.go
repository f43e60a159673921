// Package service contains the application use cases: the user directory,
// the task registry and attachment storage. Services orchestrate domain
// objects and the store interfaces, apply the authorization rules of
// package authz and define the transaction boundaries of each operation.
//
// Services receive their dependencies through constructor injection and
// never depend on a concrete storage implementation. Errors are returned as
// *ServiceError values that wrap the sentinel errors of the store, domain
// and authz packages, so callers match them with errors.Is.
package service
