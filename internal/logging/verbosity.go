package logging

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Verbosity selects how much diagnostic output a queue handle emits.
// Each level includes everything below it.
type Verbosity int32

const (
	// VerbositySilent emits nothing
	VerbositySilent Verbosity = iota
	// VerbosityErrors emits errors only
	VerbosityErrors
	// VerbosityWarnings adds warnings such as header resets
	VerbosityWarnings
	// VerbosityInfo adds lifecycle messages
	VerbosityInfo
	// VerbosityDebug adds per-operation diagnostics
	VerbosityDebug
	// VerbosityDebugVerbose adds record-level traces
	VerbosityDebugVerbose
)

// DefaultVerbosity is the verbosity of a newly opened handle.
const DefaultVerbosity = VerbosityErrors

var verbosityNames = [...]string{
	VerbositySilent:       "silent",
	VerbosityErrors:       "errors",
	VerbosityWarnings:     "warnings",
	VerbosityInfo:         "info",
	VerbosityDebug:        "debug",
	VerbosityDebugVerbose: "debug-verbose",
}

// String returns the lower-case name of the verbosity.
func (v Verbosity) String() string {
	if v >= 0 && int(v) < len(verbosityNames) {
		return verbosityNames[v]
	}
	return fmt.Sprintf("verbosity(%d)", int32(v))
}

// Valid reports whether v is one of the defined levels.
func (v Verbosity) Valid() bool {
	return v >= VerbositySilent && v <= VerbosityDebugVerbose
}

// ParseVerbosity accepts a level name (case-insensitive, "trace" is an
// alias for debug-verbose) or its number.
func ParseVerbosity(s string) (Verbosity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range verbosityNames {
		if s == name || s == fmt.Sprint(i) {
			return Verbosity(i), nil //nolint:gosec // G115: bounded by table size
		}
	}
	switch s {
	case "trace", "verbose":
		return VerbosityDebugVerbose, nil
	case "warn", "warning":
		return VerbosityWarnings, nil
	case "error", "":
		return VerbosityErrors, nil
	}
	return VerbositySilent, fmt.Errorf("unknown verbosity %q", s)
}

// Gate filters a Logger by verbosity. The verbosity can be changed at any
// time from any goroutine.
type Gate struct {
	logger    Logger
	verbosity atomic.Int32
}

// NewGate wraps logger. A nil logger discards everything.
func NewGate(logger Logger, v Verbosity) *Gate {
	if logger == nil {
		logger = NoopLogger{}
	}
	g := &Gate{logger: logger}
	g.SetVerbosity(v)
	return g
}

// SetVerbosity changes the active verbosity.
func (g *Gate) SetVerbosity(v Verbosity) {
	g.verbosity.Store(int32(v))
}

// Verbosity returns the active verbosity.
func (g *Gate) Verbosity() Verbosity {
	return Verbosity(g.verbosity.Load())
}

// Enabled reports whether messages at v are emitted.
func (g *Gate) Enabled(v Verbosity) bool {
	return v != VerbositySilent && g.Verbosity() >= v
}

// Error implements Logger.
func (g *Gate) Error(msg string, fields ...Field) {
	if g.Enabled(VerbosityErrors) {
		g.logger.Error(msg, fields...)
	}
}

// Warn implements Logger.
func (g *Gate) Warn(msg string, fields ...Field) {
	if g.Enabled(VerbosityWarnings) {
		g.logger.Warn(msg, fields...)
	}
}

// Info implements Logger.
func (g *Gate) Info(msg string, fields ...Field) {
	if g.Enabled(VerbosityInfo) {
		g.logger.Info(msg, fields...)
	}
}

// Debug implements Logger.
func (g *Gate) Debug(msg string, fields ...Field) {
	if g.Enabled(VerbosityDebug) {
		g.logger.Debug(msg, fields...)
	}
}

// Trace logs at debug level, but only under VerbosityDebugVerbose.
func (g *Gate) Trace(msg string, fields ...Field) {
	if g.Enabled(VerbosityDebugVerbose) {
		g.logger.Debug(msg, fields...)
	}
}
