package hub

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/soar/VRPawn/internal/pawn"
	"github.com/soar/VRPawn/internal/runner"
	"github.com/soar/VRPawn/internal/xr"
)

// Message types sent from server to client.
const (
	TypeFull  = "full"
	TypeDelta = "delta"
	TypeEvent = "event"
)

// Message types sent from client to server.
const (
	TypeSessionStart = "session_start"
	TypeSessionEnd   = "session_end"
	TypeInputSources = "input_sources"
	TypeFrame        = "frame"
)

// Event names for type "event".
const (
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string         `json:"type"`            // "full", "delta" or "event"
	Seq       int64          `json:"seq"`             // Sequence number for ordering
	Timestamp int64          `json:"timestamp"`       // Unix timestamp in milliseconds
	Event     string         `json:"event,omitempty"` // Event name for type "event"
	Data      *pawn.Snapshot `json:"data,omitempty"`
}

// NewFullMessage creates a "full" message carrying the complete pawn state.
func NewFullMessage(seq int64, s *pawn.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      s,
	}
}

// NewDeltaMessage creates a "delta" message for a frame that produced events.
func NewDeltaMessage(seq int64, s *pawn.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeDelta,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      s,
	}
}

// NewEventMessage creates an "event" message for session changes.
func NewEventMessage(seq int64, event string, s *pawn.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeEvent,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     event,
		Data:      s,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type       string         `json:"type"`
	Sources    []SourceMsg    `json:"sources,omitempty"`
	DT         float64        `json:"dt,omitempty"` // seconds
	Gamepads   []GamepadMsg   `json:"gamepads,omitempty"`
	Transforms []TransformMsg `json:"transforms,omitempty"`
}

// SourceMsg is one input source as the WebXR page reports it.
type SourceMsg struct {
	Index      int      `json:"index"`
	Handedness string   `json:"handedness"`
	Profiles   []string `json:"profiles"`
	Removed    bool     `json:"removed,omitempty"`
}

// GamepadMsg is the gamepad of one input source.
type GamepadMsg struct {
	Index   int         `json:"index"`
	Buttons []xr.Button `json:"buttons"`
	Axes    []float64   `json:"axes"`
}

// TransformMsg is a column-major 4x4 matrix relative to the rig root.
type TransformMsg struct {
	Index  int       `json:"index"`
	Matrix []float64 `json:"matrix"`
}

// SourceEvents converts an "input_sources" message.
func (m *ClientMessage) SourceEvents() []xr.SourceEvent {
	events := make([]xr.SourceEvent, 0, len(m.Sources))
	for _, s := range m.Sources {
		events = append(events, xr.SourceEvent{
			Index:      s.Index,
			Handedness: xr.ParseHandedness(s.Handedness),
			Profiles:   s.Profiles,
			Removed:    s.Removed,
		})
	}
	return events
}

// Frame converts a "frame" message.
func (m *ClientMessage) Frame() (runner.Frame, error) {
	if m.DT < 0 {
		return runner.Frame{}, errors.Errorf("negative dt %v", m.DT)
	}
	f := runner.Frame{
		DT:   time.Duration(m.DT * float64(time.Second)),
		Pads: make(map[int]xr.Gamepad, len(m.Gamepads)),
	}
	for _, g := range m.Gamepads {
		f.Pads[g.Index] = xr.Gamepad{Buttons: g.Buttons, Axes: g.Axes}
	}
	if len(m.Transforms) > 0 {
		f.Transforms = make(map[int]mgl64.Mat4, len(m.Transforms))
		for _, t := range m.Transforms {
			if len(t.Matrix) != 16 {
				return runner.Frame{}, errors.Errorf("transform %d: want 16 values, got %d", t.Index, len(t.Matrix))
			}
			var mat mgl64.Mat4
			copy(mat[:], t.Matrix)
			f.Transforms[t.Index] = mat
		}
	}
	return f, nil
}
