package logx

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a logger emits.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levels = [...]struct {
	name string
	zap  zapcore.Level
}{
	LevelDebug: {"debug", zapcore.DebugLevel},
	LevelInfo:  {"info", zapcore.InfoLevel},
	LevelWarn:  {"warn", zapcore.WarnLevel},
	LevelError: {"error", zapcore.ErrorLevel},
	LevelFatal: {"fatal", zapcore.FatalLevel},
}

func (l Level) valid() bool { return l >= LevelDebug && int(l) < len(levels) }

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levels[l].name
}

func (l Level) zap() zapcore.Level {
	if !l.valid() {
		return zapcore.InfoLevel
	}
	return levels[l].zap
}

// ParseLevel accepts the LOG_LEVEL spellings; anything else is info.
func ParseLevel(s string) Level {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "trace":
		return LevelDebug
	case "warning":
		return LevelWarn
	}
	for l := range levels {
		if levels[l].name == s {
			return Level(l)
		}
	}
	return LevelInfo
}
