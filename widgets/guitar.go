package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mityguitar/music"
	"mityguitar/theme"
)

// RenderFretRow renders the five fret buttons in hardware colors, held
// ones solid.
func RenderFretRow(t *theme.Theme, held [5]bool) string {
	var out strings.Builder
	for f := music.FretButton(0); f < music.NumFrets; f++ {
		if f > 0 {
			out.WriteString(" ")
		}
		sym := t.Symbols.FretIdle
		if held[f] {
			sym = t.Symbols.FretHeld
		}
		style := lipgloss.NewStyle().Foreground(theme.FretColor(f))
		out.WriteString(style.Render(string(sym)))
	}
	return out.String()
}

// RenderStrum renders the strum bar indicator.
func RenderStrum(t *theme.Theme, up, down bool) string {
	sym := t.Symbols.StrumIdle
	color := t.Muted()
	switch {
	case up:
		sym = t.Symbols.StrumUp
		color = t.Accent()
	case down:
		sym = t.Symbols.StrumDown
		color = t.Accent()
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(sym))
}

// RenderVoiceMeter renders active voices out of a total as a bar of
// blocks.
func RenderVoiceMeter(t *theme.Theme, active, total int) string {
	var out strings.Builder
	onStyle := lipgloss.NewStyle().Foreground(t.Active())
	offStyle := lipgloss.NewStyle().Foreground(t.Muted())
	for i := 0; i < total; i++ {
		if i < active {
			out.WriteString(onStyle.Render(string(t.Symbols.VoiceOn)))
		} else {
			out.WriteString(offStyle.Render(string(t.Symbols.VoiceOff)))
		}
	}
	return out.String()
}

// RenderGauge renders a 0..1 value as a horizontal bar of the given
// width.
func RenderGauge(t *theme.Theme, value float32, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value * float32(width))
	var out strings.Builder
	fillStyle := lipgloss.NewStyle().Foreground(t.Accent())
	emptyStyle := lipgloss.NewStyle().Foreground(t.Muted())
	for i := 0; i < width; i++ {
		if i < filled {
			out.WriteString(fillStyle.Render(string(t.Symbols.GaugeFill)))
		} else {
			out.WriteString(emptyStyle.Render(string(t.Symbols.GaugeEmpty)))
		}
	}
	return out.String()
}

// RenderChordLabel renders a fret's resolved chord name in the fret's
// color.
func RenderChordLabel(f music.FretButton, spec music.ChordSpec) string {
	style := lipgloss.NewStyle().Foreground(theme.FretColor(f))
	return style.Render(fmt.Sprintf("%-7s", spec.DisplayName()))
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
