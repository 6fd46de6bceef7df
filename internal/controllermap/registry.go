package controllermap

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProfileMissingError is returned when none of a device's profile ids has a
// mapping. Callers fall back to "no input" for that hand.
type ProfileMissingError struct {
	IDs []string
}

func (e *ProfileMissingError) Error() string {
	if len(e.IDs) == 0 {
		return "controller profile missing: device reported no profile ids"
	}
	return "controller profile missing: no mapping for " + strings.Join(e.IDs, ", ")
}

// IsProfileMissing reports whether err is (or wraps) a ProfileMissingError.
func IsProfileMissing(err error) bool {
	var pm *ProfileMissingError
	return errors.As(err, &pm)
}

// Registry resolves runtime profile ids to profiles. It is populated at
// startup and read-only afterwards, so concurrent lookups are safe.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile, len(knownProfiles))}
	for id, p := range knownProfiles {
		r.profiles[id] = p
	}
	return r
}

// NewEmptyRegistry returns a registry with no profiles at all.
func NewEmptyRegistry() *Registry {
	return &Registry{profiles: map[string]*Profile{}}
}

// Register adds a profile under its own id and every alias. Existing ids are
// replaced, so a profile file can override a built-in.
func (r *Registry) Register(p *Profile, aliases ...string) error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id is empty")
	}
	for _, id := range append([]string{p.ID}, aliases...) {
		r.profiles[id] = p
	}
	return nil
}

// Lookup returns the profile of the first id that has one. ids is the
// runtime's list, most specific first.
func (r *Registry) Lookup(ids []string) (*Profile, error) {
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			return p, nil
		}
	}
	return nil, &ProfileMissingError{IDs: append([]string(nil), ids...)}
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type profileFile struct {
	Profiles []profileDoc `yaml:"profiles"`
}

type profileDoc struct {
	ID      string         `yaml:"id"`
	Aliases []string       `yaml:"aliases"`
	Asset   string         `yaml:"asset"`
	Left    map[string]int `yaml:"left"`
	Right   map[string]int `yaml:"right"`
}

// LoadFile reads extra profiles from a YAML file and registers them.
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open profile file")
	}
	defer f.Close()
	n, err := r.Load(f)
	if err != nil {
		return 0, errors.Wrapf(err, "load profiles from %s", path)
	}
	return n, nil
}

// Load reads a YAML profile document and registers every profile in it. The
// document is validated completely before anything is registered.
func (r *Registry) Load(rd io.Reader) (int, error) {
	var doc profileFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "decode yaml")
	}

	type parsed struct {
		profile *Profile
		aliases []string
	}
	seen := map[string]bool{}
	out := make([]parsed, 0, len(doc.Profiles))
	for i, pd := range doc.Profiles {
		if strings.TrimSpace(pd.ID) == "" {
			return 0, errors.Errorf("profile #%d: id is empty", i)
		}
		for _, id := range append([]string{pd.ID}, pd.Aliases...) {
			if seen[id] {
				return 0, errors.Errorf("profile %q: duplicate id %q", pd.ID, id)
			}
			seen[id] = true
		}
		left, err := NewHandMap(pd.Left)
		if err != nil {
			return 0, errors.Wrapf(err, "profile %q left", pd.ID)
		}
		right, err := NewHandMap(pd.Right)
		if err != nil {
			return 0, errors.Wrapf(err, "profile %q right", pd.ID)
		}
		asset := pd.Asset
		if asset == "" {
			asset = pd.ID
		}
		out = append(out, parsed{
			profile: &Profile{ID: pd.ID, Asset: asset, Left: left, Right: right},
			aliases: pd.Aliases,
		})
	}

	for _, p := range out {
		if err := r.Register(p.profile, p.aliases...); err != nil {
			return 0, err
		}
	}
	return len(out), nil
}
