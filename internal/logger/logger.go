// Package logger provides verbose logging for the vsync CLI.
// When verbose mode is enabled via the --verbose flag, messages are printed
// to stderr to follow hardware vsync transitions, dispatch wakeups and model
// updates. Nothing is printed otherwise.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "LOG"
	}
}

var (
	mu      sync.RWMutex
	verbose bool
	elapsed bool
	start   = time.Now()
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetElapsed prefixes each line with the seconds since the process started.
func SetElapsed(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	elapsed = enabled
}

// SetOutput sets the output writer for verbose logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(level Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	if elapsed {
		fmt.Fprintf(output, "%12.6f [%s] %s\n", time.Since(start).Seconds(), level, msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(LevelDebug, "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(LevelInfo, "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(LevelWarn, "", format, args...)
}

// Component is a logger that prefixes every message with a component name,
// e.g. "dispatch" or "PhysicalDisplayId{value=0}".
type Component struct {
	name string
}

// For returns a logger for the named component.
func For(name string) Component {
	return Component{name: name}
}

// With returns a logger for a sub-component, named "parent/sub".
func (c Component) With(sub string) Component {
	if c.name == "" {
		return Component{name: sub}
	}
	return Component{name: c.name + "/" + sub}
}

// Name returns the component name.
func (c Component) Name() string {
	return c.name
}

func (c Component) Debug(format string, args ...any) {
	write(LevelDebug, c.name, format, args...)
}

func (c Component) Info(format string, args ...any) {
	write(LevelInfo, c.name, format, args...)
}

func (c Component) Warn(format string, args ...any) {
	write(LevelWarn, c.name, format, args...)
}
