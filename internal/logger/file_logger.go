package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultDir is where the debug log lives unless the caller picks another directory
const DefaultDir = ".testcfg"

// LevelEnv names the environment variable holding the minimum log level
const LevelEnv = "TESTCFG_LOG_LEVEL"

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// parseLogLevel converts a string to LogLevel, case-insensitive
func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return WARN
	}
}

// Logger is the logging surface the generator components depend on
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// FileLogger appends levelled entries to <dir>/debug.log
type FileLogger struct {
	mu       sync.Mutex
	file     *os.File
	minLevel LogLevel
	stderr   io.Writer
}

// NewFileLogger opens the debug log inside dir, creating the directory if needed.
// An empty dir means DefaultDir.
func NewFileLogger(dir string) (*FileLogger, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	logPath := filepath.Join(dir, "debug.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}

	header := fmt.Sprintf("\n=== testcfg Debug Log ===\n"+
		"Session started: %s\n"+
		"Command: %s\n"+
		"Working directory: %s\n"+
		"---\n\n",
		time.Now().Format(time.RFC3339),
		strings.Join(os.Args, " "),
		mustGetwd())

	if _, err := file.WriteString(header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write log header: %w", err)
	}

	return &FileLogger{
		file:     file,
		minLevel: parseLogLevel(os.Getenv(LevelEnv)),
		stderr:   os.Stderr,
	}, nil
}

// Debug writes a debug message to the log file
func (l *FileLogger) Debug(format string, args ...interface{}) {
	if l.minLevel <= DEBUG {
		l.writeLog(DEBUG, format, args...)
	}
}

// Info writes an info message to the log file
func (l *FileLogger) Info(format string, args ...interface{}) {
	if l.minLevel <= INFO {
		l.writeLog(INFO, format, args...)
	}
}

// Warn writes a warning message to the log file
func (l *FileLogger) Warn(format string, args ...interface{}) {
	if l.minLevel <= WARN {
		l.writeLog(WARN, format, args...)
	}
}

// Error writes an error message to the log file and mirrors it to stderr
func (l *FileLogger) Error(format string, args ...interface{}) {
	l.writeLog(ERROR, format, args...)
	if l.stderr != nil {
		fmt.Fprintf(l.stderr, "[ERROR] "+format+"\n", args...)
	}
}

func (l *FileLogger) writeLog(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, level, fmt.Sprintf(format, args...))
	_, _ = l.file.WriteString(line)
}

// Close writes the session footer and closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	footer := fmt.Sprintf("\n--- Session ended: %s ---\n\n", time.Now().Format(time.RFC3339))
	_, _ = l.file.WriteString(footer)

	err := l.file.Close()
	l.file = nil
	return err
}

// Nop discards everything
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return wd
}
