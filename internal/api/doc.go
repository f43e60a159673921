// Package api handles incoming HTTP requests, request validation and
// response formatting for the task service. Handlers translate HTTP
// concerns to calls on the services in internal/service and map their
// errors to status codes in one place, HandleAPIError.
package api
