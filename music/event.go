package music

// EventKind identifies the variant of an Event.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventNoteOn
	EventNoteOff
	EventPitchBend
	EventControlChange
	EventPresetChange
	EventPanic
)

// Control change numbers understood by the audio engine.
// Standard MIDI CC numbers are used where one exists.
const (
	ControlVibratoDepth   uint8 = 1  // mod wheel
	ControlSustainEnable  uint8 = 64 // sustain pedal, value >= 64 enables
	ControlReleaseTime    uint8 = 72 // 0-127 maps to 50ms-2000ms
	ControlReleaseScale   uint8 = 73 // 0-127 maps to 0.1x-10x multiplier
	ControlInstrumentBank uint8 = 0
)

// Event is a single musical event crossing from the control domain to
// the render domain. It is a fixed-size value type: no pointers, no
// strings, trivially copyable. Unused fields are zero for a given kind.
type Event struct {
	Kind     EventKind
	Pitch    uint8   // MIDI note number (NoteOn)
	Velocity uint8   // 1-127 (NoteOn)
	Control  uint8   // CC number (ControlChange)
	Value    uint8   // CC value (ControlChange)
	Preset   uint8   // instrument index (PresetChange)
	Tag      uint16  // voice tag pairing NoteOn with its NoteOff
	Bend     float32 // semitone offset (PitchBend)
}

// NoteOn builds a note-on event. The tag pairs it with a later NoteOff.
func NoteOn(pitch, velocity uint8, tag uint16) Event {
	return Event{Kind: EventNoteOn, Pitch: pitch, Velocity: velocity, Tag: tag}
}

// NoteOff builds the note-off event for the voice started with tag.
func NoteOff(tag uint16) Event {
	return Event{Kind: EventNoteOff, Tag: tag}
}

// PitchBend builds a pitch-bend event in semitones.
func PitchBend(semitones float32) Event {
	return Event{Kind: EventPitchBend, Bend: semitones}
}

// ControlChange builds a control-change event.
func ControlChange(control, value uint8) Event {
	return Event{Kind: EventControlChange, Control: control, Value: value}
}

// PresetChange builds an instrument-preset switch event.
func PresetChange(index uint8) Event {
	return Event{Kind: EventPresetChange, Preset: index}
}

// Panic builds the all-notes-off event. The render side hard-cuts every
// voice, bypassing release envelopes.
func Panic() Event {
	return Event{Kind: EventPanic}
}
