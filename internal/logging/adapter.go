package logging

import (
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

var (
	_ api.Logger                   = (*APILogger)(nil)
	_ retryablehttp.LeveledLogger = (*LeveledLogger)(nil)
)

// APILogger adapts a logrus entry to api.Logger.
type APILogger struct {
	entry *log.Entry
}

// NewAPILogger wraps logger for use by the API client.
func NewAPILogger(logger log.FieldLogger) *APILogger {
	return &APILogger{entry: logger.WithField("component", "api")}
}

// Debug logs at debug level.
func (l *APILogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs at info level.
func (l *APILogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs at warn level.
func (l *APILogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

// Error logs at error level.
func (l *APILogger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}

// LeveledLogger adapts a logrus entry to retryablehttp.LeveledLogger.
type LeveledLogger struct {
	entry *log.Entry
}

// NewLeveledLogger wraps logger for use by the retrying transport.
func NewLeveledLogger(logger log.FieldLogger) *LeveledLogger {
	return &LeveledLogger{entry: logger.WithField("component", "transport")}
}

// Error logs at error level.
func (l *LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Error(msg)
}

// Info logs at info level.
func (l *LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Info(msg)
}

// Debug logs at debug level.
func (l *LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Debug(msg)
}

// Warn logs at warn level.
func (l *LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Warn(msg)
}

// pairs turns alternating key/value arguments into fields. A trailing key
// without a value is kept with a nil value.
func pairs(keysAndValues []interface{}) log.Fields {
	fields := make(log.Fields, len(keysAndValues)/2+1)

	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}

		var value interface{}
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}

		fields[key] = value
	}

	return fields
}
