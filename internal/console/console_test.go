//go:build !windows

package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestConsoleStubs(t *testing.T) {
	assert.True(t, IsRunningFromConsole())

	shutdown := make(chan struct{})
	register := SetupConsoleHandler(shutdown, zaptest.NewLogger(t))
	assert.NotPanics(t, register)

	select {
	case <-shutdown:
		t.Fatal("shutdown closed without a console event")
	default:
	}
}
