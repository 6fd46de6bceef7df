package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/config"
	"github.com/soar/VRPawn/internal/console"
	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/gamepad/desktop"
	"github.com/soar/VRPawn/internal/hub"
	"github.com/soar/VRPawn/internal/logging"
	"github.com/soar/VRPawn/internal/pawn"
	"github.com/soar/VRPawn/internal/runner"
	"github.com/soar/VRPawn/internal/server"
	"github.com/soar/VRPawn/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vrpawn:", err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// Must precede the logger: it may rebind os.Stderr.
	interactive := console.IsRunningFromConsole()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)
	consoleShutdown := make(chan struct{})
	reregisterConsole := console.SetupConsoleHandler(consoleShutdown, logger)

	registry := controllermap.NewRegistry()
	if cfg.Profiles.File != "" {
		n, err := registry.LoadFile(cfg.Profiles.File)
		if err != nil {
			return err
		}
		logger.Info("controller profiles loaded", zap.String("file", cfg.Profiles.File), zap.Int("count", n))
	}

	scene, err := cfg.NavScene()
	if err != nil {
		return errors.Wrap(err, "scene")
	}
	visuals, err := pawn.NewURLLoader(cfg.Profiles.AssetBaseURL)
	if err != nil {
		return err
	}

	// The desktop gamepad has no tracking; park both hands in front of the
	// head.
	var fallback map[int]mgl64.Mat4
	if cfg.Source == config.SourceSDL {
		fallback = desktop.EmulatedTransforms()
	}

	rn, err := runner.New(runner.Options{
		Config:    cfg.Pawn(),
		Registry:  registry,
		Raycaster: scene,
		Visuals:   visuals,
		Fallback:  fallback,
		Logger:    logger.Named("runner"),
	})
	if err != nil {
		return err
	}
	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- rn.Run(ctx)
	}()

	// Create and start hub
	h := hub.NewHub(logger.Named("hub"))
	go h.Run(ctx)

	// Create broadcaster
	broadcaster := hub.NewBroadcaster(h, rn.Snapshots(), logger.Named("broadcast"))
	broadcaster.SetFullSyncInterval(cfg.Broadcast.FullSyncInterval)
	go broadcaster.Run(ctx)

	// Create and start HTTP server
	srv, err := server.New(server.Options{
		Addr:        cfg.Server.Addr,
		Hub:         h,
		Broadcaster: broadcaster,
		Controller:  rn,
		Frontend:    getFrontendFS(),
		Minify:      cfg.Server.Minify,
		Logger:      logger.Named("server"),
	})
	if err != nil {
		return err
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	url := viewerURL(cfg.Server.Addr)
	logger.Info("VRPawn started", zap.String("url", url), zap.String("source", cfg.Source))

	var readerDone chan error
	if cfg.Source == config.SourceSDL {
		readerDone, err = startDesktopReader(ctx, rn, reregisterConsole, logger.Named("sdl"))
		if err != nil {
			cancel()
			_ = srv.Shutdown(context.Background())
			return multierr.Append(err, <-runnerDone)
		}
	}

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	// Initialize system tray on Windows only
	var t *tray.Tray
	if runtime.GOOS == "windows" {
		t = tray.New(url, func() { close(shutdownRequested) }, logger.Named("tray"))
		go t.Run(tray.GetIcon())
	} else if interactive {
		logger.Info("press Ctrl+C to exit")
	}

	// Wait for shutdown signal, tray request, or a component failing
	var readerErr error
	select {
	case <-sigCh:
		logger.Info("shutting down")
	case <-consoleShutdown:
		logger.Info("shutting down")
	case <-shutdownRequested:
		logger.Info("shutdown requested from tray")
	case serr := <-serverErrCh:
		err = multierr.Append(err, errors.Wrap(serr, "http server"))
	case readerErr = <-readerDone:
		readerDone = nil
		if readerErr != nil {
			err = multierr.Append(err, errors.Wrap(readerErr, "sdl reader"))
		}
	}
	cancel()
	if t != nil {
		t.Quit()
	}

	// Wait for reader to finish
	if readerDone != nil {
		if rerr := <-readerDone; rerr != nil {
			err = multierr.Append(err, errors.Wrap(rerr, "sdl reader"))
		}
	}

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		err = multierr.Append(err, errors.Wrap(serr, "http server shutdown"))
	}
	err = multierr.Append(err, <-runnerDone)

	if err != nil {
		logger.Error("VRPawn stopped with errors", zap.Error(err))
	} else {
		logger.Info("VRPawn stopped")
	}
	return err
}

// viewerURL is the address a local browser reaches the debug viewer at.
func viewerURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
