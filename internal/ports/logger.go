package ports

import "github.com/bft-labs/graphwal/pkg/log"

// Logger provides structured logging capabilities.
type Logger = log.Logger

// Field represents a key-value pair for structured logging.
type Field = log.Field

// Field constructors re-exported for the application layer.
var (
	TxID     = log.TxID
	RootPath = log.Root
	Path     = log.Path
	String   = log.String
	Strings  = log.Strings
	Int      = log.Int
	Int64    = log.Int64
	Err      = log.Err
)
