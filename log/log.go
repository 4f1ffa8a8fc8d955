// Package log is the logging facade every node-owned component (node,
// process, transport, discovery) takes as a dependency instead of calling a
// concrete backend directly: swapping DefaultLogger for DiscardLogger, or a
// Zap instance at a different Level, never touches a call site.
package log

import "os"

// Logger is what a Node, LocalProcess, or transport.Transport logs through.
// There is no request-scoped Context variant here: nothing in this runtime
// carries a context.Context far enough for one to be useful — identifiers
// (NodeID, ProcessID) are passed as ordinary arguments instead.
type Logger interface {
	Debug(...any)
	Debugf(string, ...any)
	Info(...any)
	Infof(string, ...any)
	Warn(...any)
	Warnf(string, ...any)
	Error(...any)
	Errorf(string, ...any)
	// Fatal logs then terminates the OS process with os.Exit(1). Reserved
	// for boot-time failures, before any LocalProcess exists to unwind
	// cleanly via Terminate instead.
	Fatal(...any)
	Fatalf(string, ...any)
	// LogLevel reports the minimum Level this Logger currently emits.
	LogLevel() Level
}

var (
	// DefaultLogger writes InfoLevel and above to os.Stdout; config.New uses
	// it whenever a Node is built without a WithLogger option.
	DefaultLogger = NewZap(InfoLevel, os.Stdout)

	// DiscardLogger drops every call. Tests that need a non-nil log.Logger
	// but don't want log noise pass this instead of DefaultLogger.
	DiscardLogger Logger = discardLogger{}
)

type discardLogger struct{}

func (discardLogger) Debug(...any)          {}
func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Info(...any)           {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Warn(...any)           {}
func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Error(...any)          {}
func (discardLogger) Errorf(string, ...any) {}
func (discardLogger) Fatal(...any)          { os.Exit(1) }
func (discardLogger) Fatalf(string, ...any) { os.Exit(1) }
func (discardLogger) LogLevel() Level       { return InvalidLevel }

var _ Logger = discardLogger{}
