// Package testlog provides an in-memory logx.Logger for asserting on log
// output in tests.
package testlog

import (
	"sync"

	"dispatch-service/internal/logx"
)

// Entry is one captured log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Recorder collects entries from every logger handed out by Logger.
// Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger writing into the recorder.
func (r *Recorder) Logger() logx.Logger {
	return capturing{rec: r}
}

// Entries returns a snapshot of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) record(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Level:  level,
		Msg:    msg,
		Fields: append([]logx.Field(nil), fields...),
	})
}

type capturing struct {
	rec  *Recorder
	base []logx.Field
}

var _ logx.Logger = capturing{}

func (c capturing) Debug(msg string, f ...logx.Field) { c.emit("debug", msg, f) }
func (c capturing) Info(msg string, f ...logx.Field)  { c.emit("info", msg, f) }
func (c capturing) Warn(msg string, f ...logx.Field)  { c.emit("warn", msg, f) }
func (c capturing) Error(msg string, f ...logx.Field) { c.emit("error", msg, f) }

func (c capturing) emit(level, msg string, f []logx.Field) {
	all := make([]logx.Field, 0, len(c.base)+len(f))
	all = append(all, c.base...)
	all = append(all, f...)
	c.rec.record(level, msg, all)
}

func (c capturing) With(f ...logx.Field) logx.Logger {
	base := append([]logx.Field(nil), c.base...)
	return capturing{rec: c.rec, base: append(base, f...)}
}

func (c capturing) Sync() error { return nil }
