//go:build nosdl

package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/runner"
)

// startDesktopReader fails: this binary was built without libSDL3.
func startDesktopReader(context.Context, *runner.Runner, func(), *zap.Logger) (chan error, error) {
	return nil, errors.New("source \"sdl\" is unavailable: built with the nosdl tag")
}
