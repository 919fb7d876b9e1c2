package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	gpl := `GIMP Palette
Name: smoke
Columns: 3
# comment line
  0   0   0	black
128  64  32	brown
255 255 255	white
300 0 0	out of range
`
	if err := os.WriteFile(path, []byte(gpl), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "smoke" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Colors) != 3 {
		t.Fatalf("parsed %d colors, want 3 (headers, comments, bad values skipped)", len(p.Colors))
	}
	if p.Colors[1] != (RGB{128, 64, 32}) {
		t.Errorf("second color = %v", p.Colors[1])
	}
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGPL(path); err == nil {
		t.Error("palette with no colors loaded without error")
	}
}

func TestLookupClampsAndInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	if p.Lookup(-1) != (RGB{0, 0, 0}) {
		t.Error("below-range lookup did not clamp to first color")
	}
	if p.Lookup(2) != (RGB{200, 100, 50}) {
		t.Error("above-range lookup did not clamp to last color")
	}
	mid := p.Lookup(0.5)
	if mid != (RGB{100, 50, 25}) {
		t.Errorf("midpoint = %v", mid)
	}
}
