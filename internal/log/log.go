// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

var traceEnabled bool

// InitLogger sets up Apex with a custom handler and a log level from the
// TRACEDIFF_LOG env variable. Log lines go to stderr so they never interleave
// with rendered diffs on stdout.
func InitLogger() {
	InitLoggerTo(os.Stderr, os.Getenv("TRACEDIFF_LOG"))
}

// InitLoggerTo is InitLogger with an explicit writer and level spec.
func InitLoggerTo(w io.Writer, spec string) {
	envLevel := strings.ToLower(strings.TrimSpace(spec))
	if envLevel == "" {
		envLevel = "error"
	}
	traceEnabled = envLevel == "trace"
	var apexLevel log.Level
	switch envLevel {
	case "trace", "debug":
		apexLevel = log.DebugLevel // trace rides on debug with a prefix
	case "info":
		apexLevel = log.InfoLevel
	case "warn":
		apexLevel = log.WarnLevel
	case "fatal":
		apexLevel = log.FatalLevel
	default:
		apexLevel = log.ErrorLevel
	}
	log.SetHandler(&CustomHandler{w: w})
	log.SetLevel(apexLevel)
}

// CustomHandler formats log messages as "timestamp level message [fields]".
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := e.Message
	level := "?"
	if strings.HasPrefix(message, "TRACE: ") {
		level = "T"
		message = message[7:]
	} else {
		switch e.Level {
		case log.DebugLevel:
			level = "D"
		case log.InfoLevel:
			level = "I"
		case log.WarnLevel:
			level = "W"
		case log.ErrorLevel:
			level = "E"
		case log.FatalLevel:
			level = "F"
		}
	}

	var fields strings.Builder
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&fields, " %s=%v", name, e.Fields.Get(name))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.w
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "%s %s %s%s\n", timestamp, level, message, fields.String())
	return nil
}

// Tracef logs at Trace level (below Debug).
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug("TRACE: " + fmt.Sprintf(format, args...))
	}
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Debug logs at Debug level.
func Debug(msg string) {
	log.Debug(msg)
}

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) {
	log.Warn(fmt.Sprintf(format, args...))
}

// WithError returns an entry with error.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}

// WithField returns an entry carrying a single field.
func WithField(key string, value interface{}) *log.Entry {
	return log.WithField(key, value)
}
