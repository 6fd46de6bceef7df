//go:build !nosdl

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/gamepad/sdlinput"
)

// startDesktopReader runs the SDL gamepad reader until ctx is done.
// afterInit runs once SDL_Init has installed its own console handler.
func startDesktopReader(ctx context.Context, sink sdlinput.Sink, afterInit func(), logger *zap.Logger) (chan error, error) {
	done := make(chan error, 1)
	reader := sdlinput.NewReader(sink, logger)
	reader.AfterInit(afterInit)
	go func() {
		done <- reader.Run(ctx)
	}()
	return done, nil
}
