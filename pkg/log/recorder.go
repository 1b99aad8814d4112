package log

import "sync"

// Entry is one message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
}

// Field returns the value of the field named key and whether it was set.
func (e Entry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Recorder is a Logger that keeps every message in memory. It is safe for
// concurrent use and meant for tests that assert on what was logged.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Debug(msg string, fields ...Field) { r.record("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.record("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.record("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.record("error", msg, fields) }

func (r *Recorder) record(level, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  append([]Field(nil), fields...),
	})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the first entry with the given level and message.
func (r *Recorder) Find(level, msg string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

var _ Logger = (*Recorder)(nil)
