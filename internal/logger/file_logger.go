package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends live signal activity for one instrument to a dated
// file under logs/. The console keeps the human-facing output; this
// file is the durable record of what the bot saw and decided.
type Logger struct {
	instrument string
	logFile    *os.File
	logger     *log.Logger
	mu         sync.Mutex
}

// LogLevel tags a log entry.
type LogLevel string

const (
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSignal LogLevel = "SIGNAL"
)

// NewLogger opens (or creates) today's log file for the instrument.
func NewLogger(instrument string) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.log", instrument, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		instrument: instrument,
		logFile:    file,
		logger:     log.New(file, "", 0),
	}
	l.Log(LogLevelInfo, "session started")
	return l, nil
}

// Log writes one timestamped entry.
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("%s [%s] %s %s", time.Now().UTC().Format(time.RFC3339), level, l.instrument, msg)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.Log(LogLevelInfo, "session ended")

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logFile.Close()
}
