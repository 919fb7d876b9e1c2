package controller

import (
	"time"

	"mityguitar/music"
)

// Button identifies one digital control on a guitar controller.
type Button uint8

const (
	BtnFretGreen Button = iota
	BtnFretRed
	BtnFretYellow
	BtnFretBlue
	BtnFretOrange
	BtnSoloGreen
	BtnSoloRed
	BtnSoloYellow
	BtnSoloBlue
	BtnSoloOrange
	BtnStrumUp
	BtnStrumDown
	BtnDpadUp
	BtnDpadDown
	BtnDpadLeft
	BtnDpadRight
	BtnStart
	BtnSelect
	NumButtons
)

var buttonNames = [NumButtons]string{
	"Green Fret", "Red Fret", "Yellow Fret", "Blue Fret", "Orange Fret",
	"Solo Green", "Solo Red", "Solo Yellow", "Solo Blue", "Solo Orange",
	"Strum Up", "Strum Down",
	"D-Pad Up", "D-Pad Down", "D-Pad Left", "D-Pad Right",
	"Start", "Select",
}

func (b Button) Name() string {
	if b < NumButtons {
		return buttonNames[b]
	}
	return "Unknown"
}

// Snapshot is the complete controller state at one instant. Sources
// emit a fresh snapshot whenever any control changes; the control loop
// diffs consecutive snapshots.
type Snapshot struct {
	Buttons uint32 // bit per Button
	Whammy  float32
	Tilt    float32
	Time    time.Time
}

// Pressed reports whether a button is held.
func (s *Snapshot) Pressed(b Button) bool {
	return s.Buttons&(1<<b) != 0
}

// SetPressed sets or clears a button bit.
func (s *Snapshot) SetPressed(b Button, down bool) {
	if down {
		s.Buttons |= 1 << b
	} else {
		s.Buttons &^= 1 << b
	}
}

// AnyFret reports whether any fret in either row is held.
func (s *Snapshot) AnyFret() bool {
	const fretMask = 0x3FF // ten fret bits
	return s.Buttons&fretMask != 0
}

// Strumming reports whether the strum bar is off center.
func (s *Snapshot) Strumming() bool {
	return s.Pressed(BtnStrumUp) || s.Pressed(BtnStrumDown)
}

// Frame converts the snapshot into the performance engine's input form.
func (s *Snapshot) Frame() music.Frame {
	var f music.Frame
	for i := 0; i < int(music.NumFrets); i++ {
		f.Frets[i] = s.Pressed(BtnFretGreen + Button(i))
		f.SoloFrets[i] = s.Pressed(BtnSoloGreen + Button(i))
	}
	f.StrumUp = s.Pressed(BtnStrumUp)
	f.StrumDown = s.Pressed(BtnStrumDown)
	f.Whammy = s.Whammy
	return f
}
