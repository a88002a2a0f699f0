package regioncache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger receives the client's lines: one Info per completed call, Error
// for store failures, Debug for skipped writes. Adapters for zap, logrus and
// slog live under log/. A nil Logger in Options disables logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// Level orders log severities. The zero value lets everything through.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// AtLevel drops lines below floor before they reach l. The per-call Info
// lines are chatty on hot paths; LevelWarn keeps only failures.
func AtLevel(l Logger, floor Level) Logger {
	if floor <= LevelDebug {
		return l
	}
	return levelLogger{next: l, min: floor}
}

type levelLogger struct {
	next Logger
	min  Level
}

func (l levelLogger) Debug(msg string, f Fields) {
	if l.min <= LevelDebug {
		l.next.Debug(msg, f)
	}
}

func (l levelLogger) Info(msg string, f Fields) {
	if l.min <= LevelInfo {
		l.next.Info(msg, f)
	}
}

func (l levelLogger) Warn(msg string, f Fields) {
	if l.min <= LevelWarn {
		l.next.Warn(msg, f)
	}
}

func (l levelLogger) Error(msg string, f Fields) { l.next.Error(msg, f) }
