// Package logger provides the process-wide logger for browser-steps.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log     = newLogger(io.Discard)
	logFile *os.File
	mu      sync.Mutex
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

// Init directs log output to the file at logPath (appending), and to any
// extra writers.
func Init(logPath string, extra ...io.Writer) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	if len(extra) == 0 {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(append([]io.Writer{f}, extra...)...))
	}

	return nil
}

// SetOutput directs log output to w, closing any file opened by Init.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	log.SetOutput(w)
}

// SetLevel sets the minimum level (debug, info, warn, error).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// Close closes the log file and discards further output.
func Close() {
	SetOutput(io.Discard)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// GetWriter returns a writer that logs each line at debug level, for
// handing to drivers that print their own output. Close it when done.
func GetWriter() io.WriteCloser {
	return log.WriterLevel(logrus.DebugLevel)
}
