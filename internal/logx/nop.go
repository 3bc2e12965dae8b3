package logx

// Nop returns a Logger that discards everything. Used in tests and as a
// default before the real logger is wired.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

var _ Logger = nopLogger{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) With(...Field) Logger   { return nopLogger{} }
func (nopLogger) Sync() error            { return nil }
