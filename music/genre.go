package music

import "strings"

// FretButton is one of the five chord-selector buttons.
type FretButton uint8

const (
	FretGreen FretButton = iota
	FretRed
	FretYellow
	FretBlue
	FretOrange
	NumFrets
)

var fretNames = [NumFrets]string{"Green", "Red", "Yellow", "Blue", "Orange"}

// Name returns the button's display name.
func (f FretButton) Name() string {
	if f < NumFrets {
		return fretNames[f]
	}
	return "?"
}

// FretRow distinguishes the main neck buttons from the solo row, which
// resolves one octave up.
type FretRow uint8

const (
	RowMain FretRow = iota
	RowSolo
)

// HarmonicRole is the scale-degree function a fret stands for. The
// fret-to-role mapping is fixed and genre-independent; genres only
// change which concrete chord a role resolves to.
type HarmonicRole uint8

const (
	RoleI HarmonicRole = iota
	RoleIV
	RoleV
	RoleBVII
	RoleII // colored ii in major keys
	RoleVI // colored VI/vi, used by some genre tables
)

// RoleForFret returns the harmonic role assigned to a fret button.
// Green=I, Red=IV, Yellow=V, Blue=bVII, Orange=ii (or vi per genre).
func RoleForFret(f FretButton) HarmonicRole {
	switch f {
	case FretGreen:
		return RoleI
	case FretRed:
		return RoleIV
	case FretYellow:
		return RoleV
	case FretBlue:
		return RoleBVII
	default:
		return RoleII
	}
}

// Mode is the musical mode of the active key.
type Mode uint8

const (
	ModeMajor Mode = iota
	ModeMinor
)

// Name returns "major" or "minor".
func (m Mode) Name() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// ParseMode parses "major"/"minor".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return ModeMajor, true
	case "minor":
		return ModeMinor, true
	}
	return ModeMajor, false
}

// Genre selects a chord-mapping flavor.
type Genre uint8

const (
	GenrePunk Genre = iota
	GenreEDM
	GenreRock
	GenrePop
	GenreFolk
	GenreMetal
	NumGenres
)

var genreNames = [NumGenres]string{"Punk", "EDM", "Rock", "Pop", "Folk", "Metal"}

// Genres lists every genre in display order.
func Genres() []Genre {
	return []Genre{GenrePunk, GenreEDM, GenreRock, GenrePop, GenreFolk, GenreMetal}
}

// Name returns the genre's display name.
func (g Genre) Name() string {
	if g < NumGenres {
		return genreNames[g]
	}
	return "?"
}

// ParseGenre parses a genre name, case-insensitively.
func ParseGenre(s string) (Genre, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, g := range Genres() {
		if strings.ToLower(g.Name()) == s {
			return g, true
		}
	}
	return GenreRock, false
}

// DefaultKey returns the genre's customary key root.
func (g Genre) DefaultKey() Note {
	switch g {
	case GenrePunk, GenreMetal:
		return E
	case GenreEDM, GenreRock:
		return A
	case GenrePop:
		return C
	default:
		return G
	}
}

// DefaultMode returns the genre's customary mode.
func (g Genre) DefaultMode() Mode {
	switch g {
	case GenreEDM, GenreMetal:
		return ModeMinor
	default:
		return ModeMajor
	}
}

// WhammySettings are the per-genre whammy defaults.
type WhammySettings struct {
	Enabled        bool    `json:"enabled"`
	RangeSemitones float32 `json:"pitchBendRangeSemitones"`
	VibratoDepth   float32 `json:"vibratoDepth"`
	Smoothing      float32 `json:"smoothingFactor"` // one-pole coefficient, 0-1
}

// SustainSettings are the per-genre sustain defaults.
type SustainSettings struct {
	Enabled       bool    `json:"enabled"`
	ReleaseTimeMs float32 `json:"releaseTimeMs"`
}

// GenrePreset defines how harmonic roles resolve for one genre, plus
// the genre's default key, mode, and expression settings.
type GenrePreset struct {
	Name        string             `json:"name"`
	DefaultKey  Note               `json:"defaultKey"`
	DefaultMode string             `json:"defaultMode"`
	Qualities   map[string]Quality `json:"roleToChordQuality"`
	Whammy      WhammySettings     `json:"whammyDefaults"`
	Sustain     SustainSettings    `json:"sustainDefaults"`
}

// Role serialization names used in preset JSON.
var roleNames = map[HarmonicRole]string{
	RoleI:    "I",
	RoleIV:   "IV",
	RoleV:    "V",
	RoleBVII: "bVII",
	RoleII:   "II",
	RoleVI:   "VI",
}

// QualityFor looks up the chord quality a preset assigns to a role.
func (p *GenrePreset) QualityFor(role HarmonicRole) (Quality, bool) {
	q, ok := p.Qualities[roleNames[role]]
	return q, ok
}

// DefaultPreset returns the built-in preset for a genre, used when no
// preset file exists on disk.
func DefaultPreset(g Genre) GenrePreset {
	p := GenrePreset{
		Name:        g.Name(),
		DefaultKey:  g.DefaultKey(),
		DefaultMode: g.DefaultMode().Name(),
		Sustain:     SustainSettings{Enabled: true, ReleaseTimeMs: 500},
	}

	switch g {
	case GenrePunk:
		p.Qualities = map[string]Quality{
			"I": Power5, "IV": Power5, "V": Power5, "bVII": Power5, "VI": Power5,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 1.0, Smoothing: 0.8}
	case GenreEDM:
		p.Qualities = map[string]Quality{
			"I": Minor, "IV": Minor, "V": Sus2, "bVII": Major, "VI": Major,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 3.0, Smoothing: 0.6}
	case GenreRock:
		p.Qualities = map[string]Quality{
			"I": Major, "IV": Major, "V": Major, "bVII": Major, "II": Minor,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 2.0, VibratoDepth: 0.1, Smoothing: 0.7}
	case GenrePop:
		p.Qualities = map[string]Quality{
			"I": Add9, "IV": Add9, "V": Sus4, "bVII": Major, "VI": Minor,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 0.5, VibratoDepth: 0.05, Smoothing: 0.9}
	case GenreFolk:
		p.Qualities = map[string]Quality{
			"I": Major, "IV": Major, "V": Sus4, "bVII": Major, "VI": Minor,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 0.3, VibratoDepth: 0.2, Smoothing: 0.85}
	default: // Metal
		p.Qualities = map[string]Quality{
			"I": Power5, "IV": Power5, "V": Power5, "bVII": Power5, "II": Power5,
		}
		p.Whammy = WhammySettings{Enabled: true, RangeSemitones: 1.5, Smoothing: 0.75}
	}
	return p
}
