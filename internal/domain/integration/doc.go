// Package integration contains the shared domain vocabulary for external
// platform integrations.
//
// Key concepts:
//   - BatchResult: per-item outcome of a batched operation, always one per input
//   - UpsertAck: per-record acknowledgement returned by vendor create/update calls
//   - KeyRotationCounter: port for the externally owned per-credential call counter
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
