// Package domain contains the core domain entities and value objects for graphwal.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (file system, logging) and
// contains only the transaction model and its error vocabulary.
//
// # Entities
//
//   - [WriteOperation]: the desired final content of one file under a root
//   - [Transaction]: an ordered batch of write operations applied as one unit
//   - [WalEntry]: the durable projection of a transaction that is not yet committed
//   - [OpsLogEntry]: the audit record of a transaction that completed
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Serialized as one JSON object per log line
package domain
