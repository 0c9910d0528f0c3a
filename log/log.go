// Package log implements debug-only logging for the vmutils packages. Logging is off by default and the underlying
// logger is a no-op. Use SetLogger to receive guard lifecycle events such as suppressed restore failures.
package log

var logger Interface = noopLogger{}

type Interface interface {
	// Debugf v using a format string.
	Debugf(format string, v ...interface{})
}

// Func adapts a printf style function, e.g. the standard library's log.Printf, to Interface.
type Func func(format string, v ...interface{})

// Debugf calls f.
func (f Func) Debugf(format string, v ...interface{}) {
	f(format, v...)
}

// SetLogger sets the logger used by the vmutils packages and enables debug level logging.
func SetLogger(l Interface) {
	logger = l
}

// Debugf writes to the log using the configured logger.
func Debugf(format string, v ...interface{}) {
	if DebugEnabled() {
		logger.Debugf(format, v...)
	}
}

// DebugEnabled returns true if a logger has been supplied via SetLogger.
func DebugEnabled() bool {
	switch l := logger.(type) {
	case noopLogger, nil:
		return false
	case Func:
		return l != nil
	default:
		return true
	}
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, v ...interface{}) {
	// do nothing
}
