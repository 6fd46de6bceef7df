// Package console detects whether the host was started from a terminal or
// double-clicked, and installs a Ctrl+C handler that keeps working while SDL
// holds the main OS thread.
package console

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// IsRunningFromConsole reports whether the process has a terminal to log to.
//
// A console-mode build that was double-clicked frees the console Windows
// created for it; a GUI-mode build started from a terminal allocates its own
// console and points the std streams at it. Call it before building the
// logger so that the logger writes to the right stderr.
func IsRunningFromConsole() bool {
	fromExplorer := launchedFromExplorer()
	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}
	// AllocConsole rather than AttachConsole: a shared parent console mixes
	// the two processes' input.
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams rebinds os.Std* after a console was allocated; Go
// resolved them at startup.
func redirectStdStreams() {
	stdout, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || stdout == 0 {
		return
	}
	stderr, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || stderr == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}
}

func launchedFromExplorer() bool {
	ppid := parentProcessID(uint32(os.Getpid()))
	if ppid == 0 {
		return false
	}
	name := processImageName(ppid)
	return name != "" && strings.EqualFold(filepath.Base(name), "explorer.exe")
}

func parentProcessID(pid uint32) uint32 {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == pid {
			return entry.ParentProcessID
		}
	}
	return 0
}

func processImageName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

type ctrlHandler struct {
	closed   atomic.Bool
	shutdown chan struct{}
	callback uintptr
	logger   *zap.Logger
}

// handler is reachable from the Windows callback, which cannot capture Go
// state through its signature.
var handler *ctrlHandler

// SetupConsoleHandler closes shutdown on Ctrl+C or Ctrl+Break. os/signal is
// unreliable once SDL has locked the main thread.
//
// The returned function registers the handler again; call it after SDL_Init,
// which installs its own handler over ours.
func SetupConsoleHandler(shutdown chan struct{}, logger *zap.Logger) func() {
	handler = &ctrlHandler{shutdown: shutdown, logger: logger}
	handler.callback = windows.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType != ctrlCEvent && ctrlType != ctrlBreakEvent {
			return 0
		}
		if handler.closed.CompareAndSwap(false, true) {
			close(handler.shutdown)
		}
		return 1
	})

	register := func() {
		if ret, _, err := procSetConsoleCtrlHandler.Call(handler.callback, 1); ret == 0 {
			handler.logger.Warn("failed to set console control handler", zap.Error(err))
		}
	}
	register()
	return register
}
