package tournament

import (
	"go.uber.org/zap"
)

// Logger is the printf-style logging interface threaded through all systems.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	WithField(key string, v interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	Fields() map[string]interface{}
}

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
}

// NewZapLogger wraps a zap logger for use with the tournament systems.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{
		sugar:  l.Sugar(),
		fields: make(map[string]interface{}),
	}
}

func (l *zapLogger) Debug(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *zapLogger) Info(format string, v ...interface{})  { l.sugar.Infof(format, v...) }
func (l *zapLogger) Warn(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *zapLogger) Error(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }

func (l *zapLogger) WithField(key string, v interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *zapLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &zapLogger{
		sugar:  l.sugar.With(args...),
		fields: merged,
	}
}

func (l *zapLogger) Fields() map[string]interface{} {
	return l.fields
}
