package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

// Palette is an ordered color ramp. Roles index into it by normalized
// position, so any ramp from dark to bright works.
type Palette struct {
	Name   string
	Colors []RGB
}

// Default is the built-in stage palette, used when no .gpl file is
// configured. Dark blues up through amber so warnings read hot.
func Default() *Palette {
	return &Palette{
		Name: "stage",
		Colors: []RGB{
			{10, 10, 24},
			{24, 24, 48},
			{60, 56, 90},
			{120, 116, 150},
			{190, 186, 210},
			{120, 170, 255},
			{90, 220, 160},
			{250, 180, 60},
			{255, 120, 70},
			{255, 230, 120},
		},
	}
}

// LoadGPL reads a GIMP palette file. Lines that aren't three leading
// integers are treated as header or comment and skipped, which covers
// the format variants in the wild.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if c, ok := parseGPLColor(line); ok {
			p.Colors = append(p.Colors, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors in palette %s", path)
	}
	return p, nil
}

// parseGPLColor extracts an R G B triple from a palette entry line.
func parseGPLColor(line string) (RGB, bool) {
	if line == "" || line[0] == '#' {
		return RGB{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return RGB{}, false
	}
	var c RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil || v < 0 || v > 255 {
			return RGB{}, false
		}
		c[i] = uint8(v)
	}
	return c, true
}

// Lookup interpolates the ramp at a normalized position 0-1.
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0, c1 := p.Colors[i], p.Colors[i+1]
	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
