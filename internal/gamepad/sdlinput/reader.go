// Package sdlinput reads a desktop gamepad through SDL3 and reports it as two
// emulated VR controllers. Importing it loads libSDL3.
package sdlinput

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/gamepad/desktop"
	"github.com/soar/VRPawn/internal/xr"
)

const (
	deadzone    = 0.05
	pollDelayNS = 16_000_000 // ~60Hz
)

// Sink receives what the desktop emulation produces. Implementations must
// not block for long; they are called from the SDL thread.
type Sink interface {
	StartSession()
	EndSession()
	SourcesChanged(events []xr.SourceEvent)
	Frame(dt time.Duration, pads map[int]xr.Gamepad)
}

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *desktop.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader drives the pawn from a desktop gamepad through SDL3, splitting it
// into a left and a right VR controller.
type Reader struct {
	logger    *zap.Logger
	sink      Sink
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	lastPoll  time.Time
	afterInit func()
}

// NewReader returns a reader that reports into sink.
func NewReader(sink Sink, logger *zap.Logger) *Reader {
	return &Reader{
		logger:    logger,
		sink:      sink,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// AfterInit registers fn to run on the SDL thread right after SDL_Init.
func (r *Reader) AfterInit(fn func()) {
	r.afterInit = fn
}

// Run initializes SDL and runs the event+polling loop on the current thread
// until ctx is done.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return &SDLError{Op: "init", Msg: sdl.GetError()}
	}
	defer sdl.Quit()
	if r.afterInit != nil {
		r.afterInit()
	}

	r.logger.Info("SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		default:
		}

		r.processEvents()
		r.pollState()
		sdl.DelayNS(pollDelayNS)
	}
}

// SDLError reports a failed SDL call.
type SDLError struct {
	Op  string
	Msg string
}

func (e *SDLError) Error() string {
	return "sdl " + e.Op + ": " + e.Msg
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.logger.Warn("failed to open joystick", zap.Uint32("id", uint32(instanceID)), zap.String("sdl_error", sdl.GetError()))
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := desktop.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	r.logger.Info("joystick connected",
		zap.String("name", name),
		zap.String("vid", fmt.Sprintf("%04X", vendorID)),
		zap.String("pid", fmt.Sprintf("%04X", productID)),
		zap.String("mapping", mapping.Name),
		zap.Int32("axes", sdl.GetNumJoystickAxes(js)),
		zap.Int32("buttons", sdl.GetNumJoystickButtons(js)))

	if !r.hasActive {
		r.activate(jsID)
	}
}

// activate makes a joystick the emulated controller pair and starts a
// session for it.
func (r *Reader) activate(id sdl.JoystickID) {
	r.activeID = id
	r.hasActive = true
	r.lastPoll = time.Time{}
	r.logger.Info("emulating VR controllers", zap.String("joystick", r.joysticks[id].name))
	r.sink.StartSession()
	r.sink.SourcesChanged(desktop.EmulatedSources())
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.logger.Info("joystick disconnected", zap.String("name", info.name))
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false
	r.sink.EndSession()

	// Promote the next available joystick
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activate(id)
			return
		}
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	if r.hasActive {
		r.hasActive = false
		r.sink.EndSession()
	}
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}

	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	js := info.joystick
	var state desktop.PadState

	for _, am := range info.mapping.Axes {
		raw := sdl.GetJoystickAxis(js, am.Index)
		if am.IsTrigger {
			state[am.Target] = desktop.ApplyDeadzone(desktop.NormalizeTrigger(raw, am.RawMin, am.RawMax), deadzone)
		} else {
			state[am.Target] = desktop.ApplyDeadzone(desktop.NormalizeAxis(raw), deadzone)
		}
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range info.mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if sdl.GetJoystickButton(js, bm.Index) {
			state[bm.Target] = 1
		}
	}

	now := time.Now()
	var dt time.Duration
	if !r.lastPoll.IsZero() {
		dt = now.Sub(r.lastPoll)
	}
	r.lastPoll = now

	left, right := state.Split()
	r.sink.Frame(dt, map[int]xr.Gamepad{
		desktop.EmulatedLeftIndex:  left,
		desktop.EmulatedRightIndex: right,
	})
}
