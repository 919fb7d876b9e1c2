package perform

import (
	"sync"

	"mityguitar/audio"
	"mityguitar/controller"
	"mityguitar/debug"
	"mityguitar/music"
)

// Manager orchestrates the control domain: controller snapshots in,
// events into the audio ring. All event production happens on one
// goroutine so the ring keeps its single-producer guarantee; UI calls
// are posted into that goroutine as commands.
type Manager struct {
	resolver *music.ChordResolver
	engine   *music.PerformanceEngine
	ring     *audio.EventRing
	stats    *audio.Stats
	catalog  *audio.InstrumentCatalog

	snapshots chan controller.Snapshot
	cmds      chan func()
	stopChan  chan struct{}
	scratch   []music.Event

	mu         sync.RWMutex
	settings   music.Settings
	instrument audio.InstrumentInfo
	lastSnap   controller.Snapshot
	chordMap   music.ChordMap

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wires the control domain together.
func NewManager(resolver *music.ChordResolver, ring *audio.EventRing, stats *audio.Stats, catalog *audio.InstrumentCatalog, settings music.Settings) *Manager {
	m := &Manager{
		resolver:   resolver,
		engine:     music.NewPerformanceEngine(resolver, settings),
		ring:       ring,
		stats:      stats,
		catalog:    catalog,
		snapshots:  make(chan controller.Snapshot, 64),
		cmds:       make(chan func(), 16),
		stopChan:   make(chan struct{}),
		settings:   settings,
		scratch:    make([]music.Event, 0, 32),
		UpdateChan: make(chan struct{}, 1),
	}
	if catalog != nil {
		m.instrument = catalog.Default()
	}
	m.refreshChordMap()
	return m
}

// StartRuntime starts the control loop and pushes the initial preset
// parameters and instrument program to the synth.
func (m *Manager) StartRuntime() {
	go m.controlLoop()
	m.post(func() {
		m.emit(m.engine.SetSettings(m.currentSettings(), m.scratch[:0]))
		m.emit([]music.Event{programEvent(m.Instrument())})
	})
}

// Stop ends the control loop.
func (m *Manager) Stop() {
	close(m.stopChan)
}

// AttachSource forwards a snapshot stream into the control loop. Safe
// to call for every connected guitar plus the keyboard simulator; the
// loop serializes them.
func (m *Manager) AttachSource(src <-chan controller.Snapshot) {
	go func() {
		for snap := range src {
			select {
			case m.snapshots <- snap:
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *Manager) controlLoop() {
	for {
		select {
		case <-m.stopChan:
			return
		case cmd := <-m.cmds:
			cmd()
		case snap := <-m.snapshots:
			prev := m.LastSnapshot()
			m.scratch = m.engine.Process(snap.Frame(), m.scratch[:0])
			m.emit(m.scratch)

			m.mu.Lock()
			m.lastSnap = snap
			m.mu.Unlock()
			m.handleShortcuts(prev, snap)
			m.notify()
		}
	}
}

// post runs fn on the control loop.
func (m *Manager) post(fn func()) {
	select {
	case m.cmds <- fn:
	case <-m.stopChan:
	}
}

func (m *Manager) emit(events []music.Event) {
	for _, ev := range events {
		if !m.ring.TrySend(ev) {
			debug.Log(debug.Music, "ring full, dropped %v", ev.Kind)
		}
	}
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

func (m *Manager) currentSettings() music.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Settings returns the current harmonic context.
func (m *Manager) Settings() music.Settings {
	return m.currentSettings()
}

// LastSnapshot returns the most recent controller state.
func (m *Manager) LastSnapshot() controller.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSnap
}

// ChordMap returns the resolved main-row chords for display.
func (m *Manager) ChordMap() music.ChordMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(music.ChordMap, len(m.chordMap))
	for f, spec := range m.chordMap {
		out[f] = spec
	}
	return out
}

// Instrument returns the selected catalog entry.
func (m *Manager) Instrument() audio.InstrumentInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instrument
}

// Catalog returns the instrument catalog.
func (m *Manager) Catalog() *audio.InstrumentCatalog {
	return m.catalog
}

// Stats returns the audio diagnostics.
func (m *Manager) Stats() audio.Snapshot {
	if m.stats == nil {
		return audio.Snapshot{}
	}
	return m.stats.Read()
}

func (m *Manager) refreshChordMap() {
	s := m.currentSettings()
	cm, err := m.resolver.ResolveMap(s.Genre, s.Key, s.Mode, music.RowMain, s.Pattern)
	if err != nil {
		debug.Log(debug.Music, "chord map refresh: %v", err)
		return
	}
	m.mu.Lock()
	m.chordMap = cm
	m.mu.Unlock()
}

// handleShortcuts maps hardware button edges onto context changes:
// d-pad left/right cycle the pattern, up/down transpose the key,
// select cycles the genre, start is the panic button. Runs on the
// control loop, so changes apply directly instead of being posted.
func (m *Manager) handleShortcuts(prev, cur controller.Snapshot) {
	edge := func(b controller.Button) bool {
		return cur.Pressed(b) && !prev.Pressed(b)
	}

	s := m.currentSettings()
	changed := false
	switch {
	case edge(controller.BtnDpadRight):
		s.Pattern = (s.Pattern + 1) % NumPatterns
		changed = true
	case edge(controller.BtnDpadLeft):
		s.Pattern = (s.Pattern - 1 + NumPatterns) % NumPatterns
		changed = true
	case edge(controller.BtnDpadUp):
		s.Key = music.Note((int(s.Key) + 1) % 12)
		changed = true
	case edge(controller.BtnDpadDown):
		s.Key = music.Note((int(s.Key) + 11) % 12)
		changed = true
	case edge(controller.BtnSelect):
		n := len(music.Genres())
		s.Genre = music.Genre((int(s.Genre) + 1) % n)
		s.Key = s.Genre.DefaultKey()
		s.Mode = s.Genre.DefaultMode()
		changed = true
	case edge(controller.BtnStart):
		m.emit(m.engine.PanicEvents(m.scratch[:0]))
	}
	if changed {
		m.mu.Lock()
		m.settings = s
		m.mu.Unlock()
		m.settingsChanged(s)
	}
}

// settingsChanged pushes a new harmonic context to the synth and the
// display. Must run on the control loop.
func (m *Manager) settingsChanged(s music.Settings) {
	m.emit(m.engine.SetSettings(s, m.scratch[:0]))
	m.refreshChordMap()
	m.notify()
}

// applySettings swaps the harmonic context on the control loop.
func (m *Manager) applySettings(s music.Settings) {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()

	m.post(func() { m.settingsChanged(s) })
}

// CycleGenre advances to the next genre, adopting its default key and
// mode.
func (m *Manager) CycleGenre(dir int) {
	s := m.currentSettings()
	n := len(music.Genres())
	s.Genre = music.Genre((int(s.Genre) + dir + n) % n)
	s.Key = s.Genre.DefaultKey()
	s.Mode = s.Genre.DefaultMode()
	m.applySettings(s)
}

// CycleKey transposes the key root by dir semitones.
func (m *Manager) CycleKey(dir int) {
	s := m.currentSettings()
	s.Key = music.Note((int(s.Key) + dir + 12) % 12)
	m.applySettings(s)
}

// ToggleMode flips between major and minor.
func (m *Manager) ToggleMode() {
	s := m.currentSettings()
	if s.Mode == music.ModeMajor {
		s.Mode = music.ModeMinor
	} else {
		s.Mode = music.ModeMajor
	}
	m.applySettings(s)
}

// NumPatterns is how many override slots the d-pad can reach.
const NumPatterns = 8

// CyclePattern switches the active override pattern.
func (m *Manager) CyclePattern(dir int) {
	s := m.currentSettings()
	s.Pattern = (s.Pattern + dir + NumPatterns) % NumPatterns
	m.applySettings(s)
}

// programEvent maps a catalog entry to the synth program that sounds
// it. SoundFont entries play through the clean guitar program until a
// sample backend carries their data.
func programEvent(info audio.InstrumentInfo) music.Event {
	if info.Kind == audio.KindVirtual {
		return music.PresetChange(uint8(info.Virtual))
	}
	return music.PresetChange(uint8(audio.CleanElectricGuitar))
}

// SelectInstrument switches to a specific catalog entry.
func (m *Manager) SelectInstrument(info audio.InstrumentInfo) {
	m.mu.Lock()
	m.instrument = info
	m.mu.Unlock()

	m.post(func() {
		m.emit([]music.Event{programEvent(info)})
		m.notify()
	})
}

// CycleInstrument steps through the instrument catalog, virtual
// programs and discovered SoundFonts alike.
func (m *Manager) CycleInstrument(dir int) {
	list := m.catalog.Instruments()
	if len(list) == 0 {
		return
	}

	m.mu.Lock()
	idx := 0
	for i, info := range list {
		if info.Name == m.instrument.Name {
			idx = i
			break
		}
	}
	idx = ((idx+dir)%len(list) + len(list)) % len(list)
	m.instrument = list[idx]
	info := m.instrument
	m.mu.Unlock()

	m.post(func() {
		m.emit([]music.Event{programEvent(info)})
		m.notify()
	})
}

// RescanInstruments refreshes the catalog, keeping the current
// selection when it survives the rescan.
func (m *Manager) RescanInstruments() {
	if err := m.catalog.Rescan(); err != nil {
		debug.Log(debug.Audio, "instrument rescan: %v", err)
	}
	if _, ok := m.catalog.Find(m.Instrument().Name); !ok {
		m.SelectInstrument(m.catalog.Default())
		return
	}
	m.notify()
}

// Panic silences the synth immediately.
func (m *Manager) Panic() {
	m.post(func() {
		m.emit(m.engine.PanicEvents(m.scratch[:0]))
		m.notify()
	})
	debug.Log(debug.Music, "panic requested")
}
