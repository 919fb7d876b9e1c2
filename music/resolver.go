package music

import (
	"fmt"
	"sync"
)

// resolutionKey identifies one cached chord map. A change to any field
// selects a different cache line; override writes clear the cache
// entirely rather than patching entries.
type resolutionKey struct {
	genre Genre
	key   Note
	mode  Mode
	row   FretRow
}

// overrideKey addresses a per-pattern user override.
type overrideKey struct {
	pattern int
	fret    FretButton
	row     FretRow
}

// ChordMap maps each fret button to its resolved chord.
type ChordMap map[FretButton]ChordSpec

// ChordResolver turns (genre, key, mode, role) into concrete chords.
// Resolution is deterministic; results are cached per settings tuple so
// repeated lookups during performance stay cheap. Only the control
// domain calls into the resolver.
type ChordResolver struct {
	mu        sync.RWMutex
	presets   map[Genre]GenrePreset
	cache     map[resolutionKey]ChordMap
	overrides map[overrideKey]ChordSpec
}

// NewChordResolver creates a resolver with the built-in presets for
// every genre. LoadPreset replaces individual genres afterwards.
func NewChordResolver() *ChordResolver {
	r := &ChordResolver{
		presets:   make(map[Genre]GenrePreset, NumGenres),
		cache:     make(map[resolutionKey]ChordMap),
		overrides: make(map[overrideKey]ChordSpec),
	}
	for _, g := range Genres() {
		r.presets[g] = DefaultPreset(g)
	}
	return r
}

// LoadPreset installs a genre preset and drops any cached resolutions
// for it.
func (r *ChordResolver) LoadPreset(g Genre, p GenrePreset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[g] = p
	for k := range r.cache {
		if k.genre == g {
			delete(r.cache, k)
		}
	}
}

// Preset returns the installed preset for a genre.
func (r *ChordResolver) Preset(g Genre) (GenrePreset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[g]
	return p, ok
}

// roleInterval returns the semitone offset of a role's chord root from
// the key root. Only VI is mode-dependent (major sixth in major keys,
// minor sixth in minor keys).
func roleInterval(role HarmonicRole, mode Mode) int {
	switch role {
	case RoleI:
		return 0
	case RoleIV:
		return 5
	case RoleV:
		return 7
	case RoleBVII:
		return 10
	case RoleII:
		return 2
	default: // RoleVI
		if mode == ModeMinor {
			return 8
		}
		return 9
	}
}

// Resolve returns the chord for a single harmonic role. A role the
// genre preset leaves unmapped falls back to a power chord on the
// role's root rather than failing.
func (r *ChordResolver) Resolve(genre Genre, key Note, mode Mode, role HarmonicRole, row FretRow) ChordSpec {
	root := Note((int(key) + roleInterval(role, mode)) % 12)

	r.mu.RLock()
	preset, ok := r.presets[genre]
	r.mu.RUnlock()

	quality := Power5
	if ok {
		if q, mapped := preset.QualityFor(role); mapped {
			quality = q
		}
	}

	spec := ChordSpec{Root: root, Quality: quality}
	if row == RowSolo {
		spec.OctaveOffset = 1
	}
	return spec
}

// ResolveMap resolves the full fret-to-chord map for the given settings
// and pattern, consulting the cache first and applying any per-pattern
// overrides on top. The returned map is a copy; callers may not mutate
// cache state through it.
func (r *ChordResolver) ResolveMap(genre Genre, key Note, mode Mode, row FretRow, pattern int) (ChordMap, error) {
	r.mu.RLock()
	_, ok := r.presets[genre]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no preset for genre %s", genre.Name())
	}

	ck := resolutionKey{genre: genre, key: key, mode: mode, row: row}

	r.mu.RLock()
	cached, hit := r.cache[ck]
	r.mu.RUnlock()

	if !hit {
		cached = make(ChordMap, NumFrets)
		for f := FretButton(0); f < NumFrets; f++ {
			cached[f] = r.Resolve(genre, key, mode, RoleForFret(f), row)
		}
		r.mu.Lock()
		r.cache[ck] = cached
		r.mu.Unlock()
	}

	out := make(ChordMap, len(cached))
	for f, spec := range cached {
		out[f] = spec
	}

	r.mu.RLock()
	for f := FretButton(0); f < NumFrets; f++ {
		if spec, found := r.overrides[overrideKey{pattern: pattern, fret: f, row: row}]; found {
			out[f] = spec
		}
	}
	r.mu.RUnlock()

	return out, nil
}

// SetOverride pins a chord to a (pattern, fret, row) slot, taking
// precedence over the resolved default. The whole cache is invalidated:
// override state is part of the effective resolution result.
func (r *ChordResolver) SetOverride(pattern int, fret FretButton, row FretRow, spec ChordSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[overrideKey{pattern: pattern, fret: fret, row: row}] = spec
	r.cache = make(map[resolutionKey]ChordMap)
}

// ClearOverride removes one override.
func (r *ChordResolver) ClearOverride(pattern int, fret FretButton, row FretRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, overrideKey{pattern: pattern, fret: fret, row: row})
	r.cache = make(map[resolutionKey]ChordMap)
}

// ClearCache drops every cached resolution. Called on settings changes
// that arrive from outside the resolver (e.g. preset file reloads).
func (r *ChordResolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[resolutionKey]ChordMap)
}
