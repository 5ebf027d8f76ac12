package logx

import (
	"fmt"
	"os"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger behind the logx API.
type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// NewLogger builds a zap-backed logger from config.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := zap.NewAtomicLevelAt(cfg.Level.zap())

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.File != "" {
		rl, err := rotatelogs.New(
			cfg.File,
			rotatelogs.WithMaxAge(cfg.MaxAge),
			rotatelogs.WithRotationTime(cfg.RotationTime),
		)
		if err != nil {
			return nil, fmt.Errorf("open rotating log file: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(rl))
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), level)

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	return &Logger{zl: zap.New(core, opts...), level: level}, nil
}

// NewLoggerWithCore wraps an existing zap core. Used by tests with an observer core.
func NewLoggerWithCore(core zapcore.Core) *Logger {
	return &Logger{zl: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// SetLevel changes the level at runtime
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) WithField(key string, value any) *Entry {
	return (&Entry{logger: l}).WithField(key, value)
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return (&Entry{logger: l}).WithFields(fields)
}

func (l *Logger) WithError(err error) *Entry {
	return (&Entry{logger: l}).WithError(err)
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}

	switch level {
	case LevelDebug:
		l.zl.Debug(msg, zf...)
	case LevelWarn:
		l.zl.Warn(msg, zf...)
	case LevelError:
		l.zl.Error(msg, zf...)
	case LevelFatal:
		l.zl.Fatal(msg, zf...)
	default:
		l.zl.Info(msg, zf...)
	}
}
