package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"mityguitar/music"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Fret states
	FretHeld rune // ● held down
	FretIdle rune // ○ up

	// Strum bar
	StrumUp   rune // ▲
	StrumDown rune // ▼
	StrumIdle rune // ─

	// Voice meter
	VoiceOn  rune // ▮ sounding voice
	VoiceOff rune // ▯ free voice

	// Whammy gauge
	GaugeFill  rune // █
	GaugeEmpty rune // ░
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			FretHeld: '●',
			FretIdle: '○',

			StrumUp:   '▲',
			StrumDown: '▼',
			StrumIdle: '─',

			VoiceOn:  '▮',
			VoiceOff: '▯',

			GaugeFill:  '█',
			GaugeEmpty: '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // background
	RoleSurface = 0.1 // panels
	RoleMuted   = 0.2 // inactive text
	RoleFG      = 0.4 // readable text
	RoleAccent  = 0.5 // highlights
	RoleActive  = 0.7 // sounding notes
	RoleWarning = 0.8 // overflow/underrun counters
	RoleSuccess = 1.0 // connected devices
)

// Fret button colors follow the hardware's own coloring rather than the
// palette.
var fretColors = [5]RGB{
	{0, 200, 0},    // green
	{220, 30, 30},  // red
	{230, 200, 0},  // yellow
	{40, 110, 255}, // blue
	{255, 140, 0},  // orange
}

// FretRGB returns the hardware color of a fret button.
func FretRGB(f music.FretButton) RGB {
	if int(f) < len(fretColors) {
		return fretColors[f]
	}
	return RGB{255, 255, 255}
}

// FretColor returns the lipgloss color of a fret button.
func FretColor(f music.FretButton) lipgloss.Color {
	return rgbToLipgloss(FretRGB(f))
}

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
