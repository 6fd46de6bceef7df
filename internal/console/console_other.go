//go:build !windows

// Package console detects whether the host was started from a terminal and
// installs a Ctrl+C handler. Outside Windows both are no-ops.
package console

import "go.uber.org/zap"

// IsRunningFromConsole is always true outside Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler returns a no-op; os/signal covers Ctrl+C here.
func SetupConsoleHandler(shutdown chan struct{}, logger *zap.Logger) func() {
	return func() {}
}
