package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogListsVirtualInstruments(t *testing.T) {
	c := NewInstrumentCatalog()
	if c.Len() != int(NumInstruments) {
		t.Fatalf("empty-dir catalog has %d entries, want %d", c.Len(), NumInstruments)
	}
	for _, info := range c.Instruments() {
		if info.Kind != KindVirtual {
			t.Errorf("unexpected non-virtual entry %q", info.Name)
		}
	}
}

func TestCatalogFindsSoundFonts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Strat.sf2", "Piano.SF2", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("xx"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	c := NewInstrumentCatalog(dir)
	if got := c.Len() - int(NumInstruments); got != 2 {
		t.Fatalf("found %d soundfonts, want 2", got)
	}

	info, ok := c.Find("Strat")
	if !ok {
		t.Fatal("Strat not in catalog")
	}
	if info.Kind != KindSoundFont || info.SizeBytes != 2 {
		t.Errorf("Strat entry = %+v", info)
	}
}

func TestCatalogDefault(t *testing.T) {
	c := NewInstrumentCatalog()
	if got := c.Default(); got.Kind != KindVirtual || got.Virtual != CleanElectricGuitar {
		t.Errorf("empty catalog default = %+v", got)
	}

	dir := t.TempDir()
	for _, name := range []string{"Piano.sf2", "LesPaul Guitar.sf2"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("xx"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	c = NewInstrumentCatalog(dir)
	if got := c.Default(); got.Kind != KindSoundFont || got.Name != "LesPaul Guitar" {
		t.Errorf("default = %+v, want the guitar soundfont", got)
	}
}

func TestCatalogMissingDirIsNotError(t *testing.T) {
	c := NewInstrumentCatalog("/nonexistent/soundfonts")
	if err := c.Rescan(); err != nil {
		t.Errorf("missing dir returned error: %v", err)
	}
	if c.Len() != int(NumInstruments) {
		t.Errorf("catalog size = %d", c.Len())
	}
}
