package logx

import "fmt"

type Fields map[string]any

// Entry is an immutable set of fields; every With* returns a new Entry, so a
// shared base entry (per request, per component) never leaks fields.
type Entry struct {
	logger *Logger
	fields Fields
}

func (e *Entry) with(n int, add func(Fields)) *Entry {
	f := make(Fields, len(e.fields)+n)
	for k, v := range e.fields {
		f[k] = v
	}
	add(f)
	return &Entry{logger: e.logger, fields: f}
}

func (e *Entry) WithField(key string, value any) *Entry {
	return e.with(1, func(f Fields) { f[key] = value })
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return e.with(len(fields), func(f Fields) {
		for k, v := range fields {
			f[k] = v
		}
	})
}

func (e *Entry) WithError(err error) *Entry {
	if err == nil {
		return e
	}
	return e.WithField("error", err.Error())
}

func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields) }
func (e *Entry) Info(msg string)  { e.logger.log(LevelInfo, msg, e.fields) }
func (e *Entry) Warn(msg string)  { e.logger.log(LevelWarn, msg, e.fields) }
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields) }

func (e *Entry) Debugf(format string, args ...any) { e.Debug(fmt.Sprintf(format, args...)) }
func (e *Entry) Infof(format string, args ...any)  { e.Info(fmt.Sprintf(format, args...)) }
func (e *Entry) Warnf(format string, args ...any)  { e.Warn(fmt.Sprintf(format, args...)) }
func (e *Entry) Errorf(format string, args ...any) { e.Error(fmt.Sprintf(format, args...)) }
