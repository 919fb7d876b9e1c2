package music

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Note is a pitch class, C through B.
type Note uint8

const (
	C Note = iota
	Cs
	D
	Ds
	E
	F
	Fs
	G
	Gs
	A
	As
	B
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the display name ("C#", "E", ...).
func (n Note) Name() string {
	return noteNames[n%12]
}

// MIDI returns the MIDI note number for this pitch class in the given
// octave (octave 0 puts C at 48, so E in octave -1 is E2 = 40, the low
// E of a guitar).
func (n Note) MIDI(octave int) uint8 {
	return uint8((octave+4)*12 + int(n%12))
}

// ParseNote parses "C", "C#", "Db", etc. Returns false if unrecognized.
func ParseNote(s string) (Note, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C":
		return C, true
	case "C#", "CS", "DB":
		return Cs, true
	case "D":
		return D, true
	case "D#", "DS", "EB":
		return Ds, true
	case "E":
		return E, true
	case "F":
		return F, true
	case "F#", "FS", "GB":
		return Fs, true
	case "G":
		return G, true
	case "G#", "GS", "AB":
		return Gs, true
	case "A":
		return A, true
	case "A#", "AS", "BB":
		return As, true
	case "B":
		return B, true
	}
	return C, false
}

// MarshalJSON writes the note as its display name.
func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Name())
}

// UnmarshalJSON accepts "C", "F#", "Bb", etc.
func (n *Note) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseNote(s)
	if !ok {
		return fmt.Errorf("unknown note %q", s)
	}
	*n = parsed
	return nil
}

// Quality is a chord quality.
type Quality uint8

const (
	Power5 Quality = iota
	Major
	Minor
	Sus2
	Sus4
	Add9
)

var qualityNames = map[Quality]string{
	Power5: "power5",
	Major:  "major",
	Minor:  "minor",
	Sus2:   "sus2",
	Sus4:   "sus4",
	Add9:   "add9",
}

var qualitySuffix = map[Quality]string{
	Power5: "5",
	Major:  "",
	Minor:  "m",
	Sus2:   "sus2",
	Sus4:   "sus4",
	Add9:   "add9",
}

// Name returns the serialization name ("power5", "minor", ...).
func (q Quality) Name() string {
	return qualityNames[q]
}

// ParseQuality is the inverse of Name.
func ParseQuality(s string) (Quality, bool) {
	for q, name := range qualityNames {
		if name == s {
			return q, true
		}
	}
	return Power5, false
}

// MarshalJSON writes the quality as its serialization name.
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Name())
}

// UnmarshalJSON accepts "power5", "major", etc.
func (q *Quality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseQuality(s)
	if !ok {
		return fmt.Errorf("unknown chord quality %q", s)
	}
	*q = parsed
	return nil
}

// Intervals returns the chord tones as semitone offsets from the root.
// At most four tones; the second return is the count.
func (q Quality) Intervals() ([4]uint8, int) {
	switch q {
	case Power5:
		return [4]uint8{0, 7}, 2
	case Major:
		return [4]uint8{0, 4, 7}, 3
	case Minor:
		return [4]uint8{0, 3, 7}, 3
	case Sus2:
		return [4]uint8{0, 2, 7}, 3
	case Sus4:
		return [4]uint8{0, 5, 7}, 3
	case Add9:
		return [4]uint8{0, 4, 7, 14}, 4
	}
	return [4]uint8{0, 7}, 2
}

// ChordSpec is a fully resolved chord: root pitch class, quality and
// octave placement. It is a small value type; resolver cache entries are
// never mutated after being computed.
type ChordSpec struct {
	Root         Note    `json:"root"`
	Quality      Quality `json:"quality"`
	OctaveOffset int     `json:"octaveOffset,omitempty"`
}

// MIDINotes writes the chord tones into out (which must hold at least
// four entries) and returns the count. baseOctave 0 places roots around
// the guitar's low register.
func (c ChordSpec) MIDINotes(baseOctave int, out *[4]uint8) int {
	root := c.Root.MIDI(baseOctave + c.OctaveOffset)
	intervals, n := c.Quality.Intervals()
	for i := 0; i < n; i++ {
		out[i] = root + intervals[i]
	}
	return n
}

// DisplayName renders "E5", "Am", "Dsus4", etc.
func (c ChordSpec) DisplayName() string {
	return c.Root.Name() + qualitySuffix[c.Quality]
}
