package logger

import (
	"fmt"
	"sync"
)

// TestLogger records messages in memory so tests can assert on them
type TestLogger struct {
	mu       sync.Mutex
	messages map[LogLevel][]string
}

// NewTestLogger creates an empty in-memory logger
func NewTestLogger() *TestLogger {
	return &TestLogger{messages: make(map[LogLevel][]string)}
}

func (l *TestLogger) record(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], fmt.Sprintf(format, args...))
}

// Debug records a debug message
func (l *TestLogger) Debug(format string, args ...interface{}) { l.record(DEBUG, format, args...) }

// Info records an info message
func (l *TestLogger) Info(format string, args ...interface{}) { l.record(INFO, format, args...) }

// Warn records a warning
func (l *TestLogger) Warn(format string, args ...interface{}) { l.record(WARN, format, args...) }

// Error records an error
func (l *TestLogger) Error(format string, args ...interface{}) { l.record(ERROR, format, args...) }

// Messages returns a copy of everything recorded at level
func (l *TestLogger) Messages(level LogLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]string, len(l.messages[level]))
	copy(result, l.messages[level])
	return result
}
