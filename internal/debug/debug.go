// Package debug writes component-tagged diagnostics for wordshift.
//
// Output is off unless EnableDebug is set at build time or the DEBUG
// environment variable is present. DEBUG=1 (or true, all) enables every
// component; a comma list such as DEBUG=search,watch enables only those.
// Nothing is written in MCP mode, where stdout carries the protocol.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode
// go build -ldflags "-X github.com/standardbeagle/wordshift/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by the mcp command.
var MCPMode = false

// Components
const (
	CompDictionary = "DICT"
	CompMapping    = "MAP"
	CompSearch     = "SEARCH"
	CompWatch      = "WATCH"
	CompMCP        = "MCP"
	CompConfig     = "CONFIG"
	CompStore      = "STORE"
)

type sink struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

var out sink

func (s *sink) writer() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}

func (s *sink) set(w io.Writer, f *os.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
	s.file = f
}

// SetMCPMode silences all output while enabled.
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput routes output to w; nil discards it.
func SetDebugOutput(w io.Writer) {
	out.set(w, nil)
}

// InitDebugLogFile sends output to a timestamped file under the temp
// directory and returns its path.
func InitDebugLogFile() (string, error) {
	logDir := filepath.Join(os.TempDir(), "wordshift-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "debug-"+time.Now().Format("2006-01-02T150405")+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	out.set(file, file)
	return logPath, nil
}

// CloseDebugLog closes the file opened by InitDebugLogFile, if any.
func CloseDebugLog() error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.file == nil {
		return nil
	}
	err := out.file.Close()
	out.file = nil
	out.w = nil
	return err
}

// IsDebugEnabled reports whether any component may log.
func IsDebugEnabled() bool {
	return Enabled("")
}

// Enabled reports whether component may log. An empty component asks
// whether debugging is on at all.
func Enabled(component string) bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}

	env := strings.TrimSpace(os.Getenv("DEBUG"))
	switch strings.ToLower(env) {
	case "", "0", "false":
		return false
	case "1", "true", "all":
		return true
	}
	if component == "" {
		return true
	}
	for _, name := range strings.Split(env, ",") {
		if strings.EqualFold(strings.TrimSpace(name), component) {
			return true
		}
	}
	return false
}

func emit(component, format string, args []interface{}) {
	if !Enabled(component) {
		return
	}
	w := out.writer()
	if w == nil {
		return
	}
	tag := "[DEBUG] "
	if component != "" {
		tag = "[DEBUG:" + component + "] "
	}
	fmt.Fprintf(w, tag+format, args...)
}

// Printf writes an untagged debug line.
func Printf(format string, args ...interface{}) {
	emit("", format, args)
}

// Log writes a line tagged with component.
func Log(component, format string, args ...interface{}) {
	emit(component, format, args)
}

func LogDictionary(format string, args ...interface{}) { emit(CompDictionary, format, args) }
func LogMapping(format string, args ...interface{})    { emit(CompMapping, format, args) }
func LogSearch(format string, args ...interface{})     { emit(CompSearch, format, args) }
func LogWatch(format string, args ...interface{})      { emit(CompWatch, format, args) }
func LogMCP(format string, args ...interface{})        { emit(CompMCP, format, args) }

// Fatal records msg in the debug output (unless in MCP mode) and returns it
// as an error for the caller to report.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := out.writer(); w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
