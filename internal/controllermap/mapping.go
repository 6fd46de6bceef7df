package controllermap

import (
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/soar/VRPawn/internal/xr"
)

// Entry maps one semantic name to a hardware button or axis index.
type Entry struct {
	Name     string
	Index    int
	Category Category
}

// HandMap is the immutable set of entries for one hand of a profile.
type HandMap struct {
	entries []Entry
	byName  map[string]int
}

// NewHandMap builds a HandMap from name → index pairs. Categories are resolved
// here, once.
func NewHandMap(indices map[string]int) (*HandMap, error) {
	m := &HandMap{
		entries: make([]Entry, 0, len(indices)),
		byName:  make(map[string]int, len(indices)),
	}
	for name, idx := range indices {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("empty entry name")
		}
		if idx < 0 {
			return nil, errors.Errorf("entry %q: negative index %d", name, idx)
		}
		m.entries = append(m.entries, Entry{Name: name, Index: idx, Category: Categorize(name)})
	}
	sort.Slice(m.entries, func(i, j int) bool { return m.entries[i].Name < m.entries[j].Name })
	for i, e := range m.entries {
		m.byName[e.Name] = i
	}
	return m, nil
}

func mustHandMap(indices map[string]int) *HandMap {
	m, err := NewHandMap(indices)
	if err != nil {
		panic(err)
	}
	return m
}

// Entries returns the entries sorted by name. The returned slice must not be
// modified.
func (m *HandMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	return m.entries
}

// Index looks up the hardware index of a semantic name.
func (m *HandMap) Index(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.byName[name]
	if !ok {
		return 0, false
	}
	return m.entries[i].Index, true
}

// Len returns the number of entries.
func (m *HandMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Profile holds the complete mapping for a device type.
type Profile struct {
	ID string
	// Asset is the directory holding the per-hand controller models.
	Asset string
	Left  *HandMap
	Right *HandMap
}

// Map returns the hand map for a role.
func (p *Profile) Map(role xr.Role) *HandMap {
	if p == nil {
		return nil
	}
	if role == xr.Left {
		return p.Left
	}
	return p.Right
}

// AssetPath returns the model path for one hand, e.g. "oculus-touch-v3/left.glb".
func (p *Profile) AssetPath(role xr.Role) string {
	if p == nil || p.Asset == "" {
		return ""
	}
	return path.Join(p.Asset, role.String()+".glb")
}

// Built-in profiles for common controllers, in the xr-standard gamepad layout:
// button 0 trigger, 1 squeeze, 3 thumbstick press, 4/5 face buttons; axes 2/3
// thumbstick.

var touchLeft = map[string]int{
	"xr-standard-trigger":          0,
	"xr-standard-squeeze":          1,
	"xr-standard-thumbstick":       3,
	"xr-standard-thumbstick.xAxis": 2,
	"xr-standard-thumbstick.yAxis": 3,
	"x_button":                     4,
	"y_button":                     5,
	"thumbrest":                    6,
}

var touchRight = map[string]int{
	"xr-standard-trigger":          0,
	"xr-standard-squeeze":          1,
	"xr-standard-thumbstick":       3,
	"xr-standard-thumbstick.xAxis": 2,
	"xr-standard-thumbstick.yAxis": 3,
	"a_button":                     4,
	"b_button":                     5,
	"thumbrest":                    6,
}

var oculusTouch = &Profile{
	ID:    "oculus-touch",
	Asset: "oculus-touch",
	Left:  mustHandMap(touchLeft),
	Right: mustHandMap(touchRight),
}

var picoTouch = &Profile{
	ID:    "pico-4",
	Asset: "pico-4",
	Left:  mustHandMap(touchLeft),
	Right: mustHandMap(touchRight),
}

// The Index reports a/b on both hands; the left pair is exposed as x/y.
var valveIndex = &Profile{
	ID:    "valve-index",
	Asset: "valve-index",
	Left: mustHandMap(map[string]int{
		"xr-standard-trigger":          0,
		"xr-standard-squeeze":          1,
		"xr-standard-thumbstick":       3,
		"xr-standard-thumbstick.xAxis": 2,
		"xr-standard-thumbstick.yAxis": 3,
		"x_button":                     4,
		"y_button":                     5,
		"xr-standard-touchpad":         2,
	}),
	Right: mustHandMap(map[string]int{
		"xr-standard-trigger":          0,
		"xr-standard-squeeze":          1,
		"xr-standard-thumbstick":       3,
		"xr-standard-thumbstick.xAxis": 2,
		"xr-standard-thumbstick.yAxis": 3,
		"a_button":                     4,
		"b_button":                     5,
		"xr-standard-touchpad":         2,
	}),
}

var genericThumbstick = &Profile{
	ID:    "generic-trigger-squeeze-thumbstick",
	Asset: "generic-trigger-squeeze-thumbstick",
	Left: mustHandMap(map[string]int{
		"xr-standard-trigger":          0,
		"xr-standard-squeeze":          1,
		"xr-standard-thumbstick":       3,
		"xr-standard-thumbstick.xAxis": 2,
		"xr-standard-thumbstick.yAxis": 3,
	}),
	Right: mustHandMap(map[string]int{
		"xr-standard-trigger":          0,
		"xr-standard-squeeze":          1,
		"xr-standard-thumbstick":       3,
		"xr-standard-thumbstick.xAxis": 2,
		"xr-standard-thumbstick.yAxis": 3,
	}),
}

// knownProfiles maps runtime profile ids to built-in profiles.
var knownProfiles = map[string]*Profile{
	"oculus-touch":                       oculusTouch,
	"oculus-touch-v2":                    oculusTouch,
	"oculus-touch-v3":                    oculusTouch,
	"meta-quest-touch-plus":              oculusTouch,
	"pico-4":                             picoTouch,
	"valve-index":                        valveIndex,
	"generic-trigger-squeeze-thumbstick": genericThumbstick,
}
