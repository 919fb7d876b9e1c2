package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mityguitar/debug"
)

// InstrumentKind distinguishes catalog entries.
type InstrumentKind uint8

const (
	KindVirtual InstrumentKind = iota
	KindSoundFont
)

// InstrumentInfo is one selectable instrument: either a built-in
// program or a .sf2 file found on disk.
type InstrumentInfo struct {
	Name      string
	Path      string // empty for virtual instruments
	SizeBytes int64
	Kind      InstrumentKind
	Virtual   Instrument // valid when Kind == KindVirtual
}

// InstrumentCatalog lists the built-in programs plus any SoundFont
// files found in the configured directories. Scanning happens off the
// render path; readers take the lock briefly.
type InstrumentCatalog struct {
	mu   sync.RWMutex
	dirs []string
	list []InstrumentInfo
}

// NewInstrumentCatalog builds a catalog over the given directories and
// performs the initial scan. Missing directories are skipped, not
// errors; a fresh install has none.
func NewInstrumentCatalog(dirs ...string) *InstrumentCatalog {
	c := &InstrumentCatalog{dirs: dirs}
	if err := c.Rescan(); err != nil {
		debug.Log(debug.Audio, "soundfont scan: %v", err)
	}
	return c
}

// Rescan rebuilds the catalog: virtual instruments first, then every
// .sf2 file across the directories.
func (c *InstrumentCatalog) Rescan() error {
	list := make([]InstrumentInfo, 0, int(NumInstruments))
	for i := Instrument(0); i < NumInstruments; i++ {
		list = append(list, InstrumentInfo{Name: i.Name(), Kind: KindVirtual, Virtual: i})
	}

	var firstErr error
	for _, dir := range c.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("reading soundfont dir %s: %w", dir, err)
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sf2") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			list = append(list, InstrumentInfo{
				Name:      name,
				Path:      filepath.Join(dir, entry.Name()),
				SizeBytes: info.Size(),
				Kind:      KindSoundFont,
			})
			debug.Log(debug.Audio, "found soundfont: %s (%d bytes)", name, info.Size())
		}
	}

	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	return firstErr
}

// Instruments returns a copy of the catalog.
func (c *InstrumentCatalog) Instruments() []InstrumentInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]InstrumentInfo, len(c.list))
	copy(out, c.list)
	return out
}

// Find looks up an instrument by display name.
func (c *InstrumentCatalog) Find(name string) (InstrumentInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, info := range c.list {
		if info.Name == name {
			return info, true
		}
	}
	return InstrumentInfo{}, false
}

// Default picks the startup instrument: a guitar SoundFont when one is
// on disk, the built-in clean guitar otherwise.
func (c *InstrumentCatalog) Default() InstrumentInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, info := range c.list {
		if info.Kind == KindSoundFont && strings.Contains(strings.ToLower(info.Name), "guitar") {
			return info
		}
	}
	return InstrumentInfo{Name: CleanElectricGuitar.Name(), Kind: KindVirtual, Virtual: CleanElectricGuitar}
}

// Len returns the catalog size.
func (c *InstrumentCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}
