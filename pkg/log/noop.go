package log

// NoopLogger discards everything. It is the default Logger of a Graph.
type NoopLogger struct{}

// NewNoopLogger returns a Logger that writes nothing.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

var _ Logger = NoopLogger{}
