package tcplb

import "go.uber.org/zap"

// LogLevel mirrors the levels the driver loop and its sub-operations log at.
type LogLevel int8

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is the single-method logging seam the Manager writes trace and
// error events through. Key-value pairs follow msg as alternating
// key/value, the same loose shape franz-go's broker code logs through
// (b.cl.cfg.logger.Log(LogLevelDebug, "...", "addr", b.addr, "id", id)).
//
// The Manager logs only from its own driver goroutine. TCPConnector, by
// contrast, logs from the goroutine each Dial starts, so a Logger given to a
// TCPConnector is called concurrently; NopLogger and ZapLogger are both safe
// for that.
type Logger interface {
	Log(level LogLevel, msg string, keyvals ...interface{})
}

// NopLogger discards every log call. Useful as a default and in tests that
// don't care about trace output.
type NopLogger struct{}

func (NopLogger) Log(LogLevel, string, ...interface{}) {}

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps z. A nil z is replaced with zap.NewNop().
func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

func (l *ZapLogger) Log(level LogLevel, msg string, keyvals ...interface{}) {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}
	switch level {
	case LogLevelDebug:
		l.z.Debug(msg, fields...)
	case LogLevelInfo:
		l.z.Info(msg, fields...)
	case LogLevelWarn:
		l.z.Warn(msg, fields...)
	case LogLevelError:
		l.z.Error(msg, fields...)
	default:
		l.z.Info(msg, fields...)
	}
}
