// Package logging provides the structured logging abstraction used across the
// tracker. Components depend on the Logger interface; the logrus-backed adapter
// is the production implementation and MockLogger captures entries in tests.
package logging

// Logger defines structured logging for every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger with an error field attached
	WithError(err error) Logger
	// WithField returns a logger with a single field attached
	WithField(key string, value interface{}) Logger
	// WithFields returns a logger with multiple fields attached
	WithFields(fields ...Field) Logger

	// Fatal logs a fatal-level message and exits the program
	Fatal(msg string, fields ...Field)
	// Fatalf logs a formatted fatal-level message and exits the program
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

var defaultLogger Logger = NewLogrusAdapter("info", "text")

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide default logger. Nil is ignored.
func SetDefault(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// OrDefault returns logger, or the default logger when logger is nil.
func OrDefault(logger Logger) Logger {
	if logger == nil {
		return defaultLogger
	}
	return logger
}
