// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [FileWriter]: Replaces a file's content without exposing partial writes
//   - [Journal]: The write-ahead log of transactions not yet committed
//   - [AuditLog]: The append-only record of committed transactions
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (file system, zerolog, etc.).
//
// This separation enables:
//   - Simulating crashes mid-transaction with fault-injecting writers
//   - Swapping infrastructure without changing business logic
//   - Clear boundaries and dependency direction
package ports
