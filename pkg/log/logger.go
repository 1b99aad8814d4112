package log

import "time"

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog or any other logging library.
type Logger interface {
	// Debug logs a debug-level message with fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with fields.
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Keys shared by every graphwal component, so log lines about the same
// transaction or root can be correlated.
const (
	KeyTx    = "tx"
	KeyRoot  = "root"
	KeyPath  = "path"
	KeyError = "error"
)

// TxID creates the transaction id field.
func TxID(id string) Field {
	return Field{Key: KeyTx, Value: id}
}

// Root creates the root directory field.
func Root(dir string) Field {
	return Field{Key: KeyRoot, Value: dir}
}

// Path creates a file path field.
func Path(p string) Field {
	return Field{Key: KeyPath, Value: p}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field.
func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: KeyError, Value: err}
}
