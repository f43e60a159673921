// Package domain contains the core business entities, value objects, and
// domain logic of the application: users and their roles, tasks with their
// status and priority, and the rules that decide whether an uploaded file
// may become an attachment. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
