package gamepad

import "fmt"

// EventKind classifies an edge event.
type EventKind uint8

const (
	Pressed EventKind = iota
	Released
	AxisChanged
)

func (k EventKind) String() string {
	switch k {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	case AxisChanged:
		return "axis_changed"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is a discrete change between two consecutive snapshots. Value and
// Previous are only meaningful for AxisChanged.
type Event struct {
	Kind     EventKind `json:"kind"`
	Key      Key       `json:"key"`
	Value    float64   `json:"value,omitempty"`
	Previous float64   `json:"previous,omitempty"`
}

func (e Event) String() string {
	if e.Kind == AxisChanged {
		return fmt.Sprintf("%s(%s, %.2f <- %.2f)", e.Kind, e.Key, e.Value, e.Previous)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
}

// MarshalText lets keys render by name inside JSON.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalText lets kinds render by name inside JSON.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// History keeps the two most recent snapshots, newest first. It is a fixed
// two slot buffer overwritten on every push.
type History struct {
	buf [2]State
	n   int
}

// Push prepends s and drops anything older than the previous snapshot.
func (h *History) Push(s State) {
	h.buf[1] = h.buf[0]
	h.buf[0] = s
	if h.n < len(h.buf) {
		h.n++
	}
}

// Len is 0, 1 or 2.
func (h *History) Len() int {
	return h.n
}

// Current returns the newest snapshot.
func (h *History) Current() (State, bool) {
	if h.n == 0 {
		return Default, false
	}
	return h.buf[0], true
}

// Previous returns the snapshot before the newest one.
func (h *History) Previous() (State, bool) {
	if h.n < 2 {
		return Default, false
	}
	return h.buf[1], true
}

// Reset empties the history.
func (h *History) Reset() {
	*h = History{}
}

// Diff appends to dst the events that turn prev into next, in key order.
// Comparison is exact: any change of an axis is reported.
func Diff(prev, next State, dst []Event) []Event {
	for k := Key(0); k < KeyCount; k++ {
		nv, pv := next.values[k], prev.values[k]
		if nv == pv {
			continue
		}
		switch {
		case k.IsAxis():
			dst = append(dst, Event{Kind: AxisChanged, Key: k, Value: nv, Previous: pv})
		case nv != Default.values[k]:
			dst = append(dst, Event{Kind: Pressed, Key: k})
		default:
			dst = append(dst, Event{Kind: Released, Key: k})
		}
	}
	return dst
}

// Detector turns a stream of snapshots into edge events.
type Detector struct {
	history History
	events  []Event
}

// NewDetector returns a detector with an empty history.
func NewDetector() *Detector {
	return &Detector{events: make([]Event, 0, KeyCount)}
}

// Push records s and returns the events since the previous snapshot. Nothing
// is emitted until two snapshots exist. The returned slice is reused by the
// next call.
func (d *Detector) Push(s State) []Event {
	d.history.Push(s)
	d.events = d.events[:0]
	prev, ok := d.history.Previous()
	if !ok {
		return d.events
	}
	d.events = Diff(prev, s, d.events)
	return d.events
}

// Current returns the newest snapshot pushed.
func (d *Detector) Current() State {
	s, _ := d.history.Current()
	return s
}

// Previous returns the snapshot before the newest one.
func (d *Detector) Previous() State {
	s, _ := d.history.Previous()
	return s
}

// HistoryLen reports how many snapshots are held.
func (d *Detector) HistoryLen() int {
	return d.history.Len()
}

// Reset forgets every snapshot.
func (d *Detector) Reset() {
	d.history.Reset()
	d.events = d.events[:0]
}
