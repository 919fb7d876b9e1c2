package perform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mityguitar/audio"
	"mityguitar/controller"
	"mityguitar/music"
)

func newTestManager() (*Manager, *audio.EventRing) {
	ring := audio.NewEventRing(256)
	resolver := music.NewChordResolver()
	m := NewManager(resolver, ring, audio.NewStats(ring), audio.NewInstrumentCatalog(),
		music.Settings{Genre: music.GenrePunk, Key: music.E, Mode: music.ModeMajor})
	m.StartRuntime()
	return m, ring
}

func drain(ring *audio.EventRing) []music.Event {
	var out []music.Event
	for {
		ev, ok := ring.TryRecv()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never held")
}

func TestManagerStrumProducesEvents(t *testing.T) {
	m, ring := newTestManager()
	defer m.Stop()

	sim := controller.NewSimulator()
	m.AttachSource(sim.Snapshots())

	// Startup pushes preset controls and the instrument program.
	waitFor(t, func() bool { return ring.Len() >= 4 })
	drain(ring)

	sim.SetButton(controller.BtnFretGreen, true)
	sim.Strum(false)

	waitFor(t, func() bool { return ring.Len() >= 2 })
	events := drain(ring)
	ons := 0
	for _, ev := range events {
		if ev.Kind == music.EventNoteOn {
			ons++
		}
	}
	if ons != 2 {
		t.Errorf("strum produced %d NoteOns, want 2: %v", ons, events)
	}
}

func TestManagerSettingsChange(t *testing.T) {
	m, ring := newTestManager()
	defer m.Stop()

	waitFor(t, func() bool { return ring.Len() >= 4 })
	drain(ring)

	m.CycleGenre(1)
	waitFor(t, func() bool { return m.Settings().Genre == music.GenreEDM })
	if m.Settings().Mode != music.ModeMinor {
		t.Errorf("EDM default mode = %v, want minor", m.Settings().Mode)
	}

	// Settings change re-emits preset controls.
	waitFor(t, func() bool { return ring.Len() >= 3 })

	cm := m.ChordMap()
	if len(cm) != int(music.NumFrets) {
		t.Errorf("chord map has %d entries", len(cm))
	}
	if cm[music.FretGreen].Quality != music.Minor {
		t.Errorf("EDM I quality = %v", cm[music.FretGreen].Quality.Name())
	}
}

func TestManagerControllerShortcuts(t *testing.T) {
	m, ring := newTestManager()
	defer m.Stop()

	sim := controller.NewSimulator()
	m.AttachSource(sim.Snapshots())

	waitFor(t, func() bool { return ring.Len() >= 4 })
	drain(ring)

	// D-pad right advances the pattern.
	sim.SetButton(controller.BtnDpadRight, true)
	waitFor(t, func() bool { return m.Settings().Pattern == 1 })

	// Held button is not an edge; nothing changes until re-pressed.
	sim.SetButton(controller.BtnDpadRight, false)
	sim.SetButton(controller.BtnDpadRight, true)
	waitFor(t, func() bool { return m.Settings().Pattern == 2 })

	// D-pad up transposes up a semitone.
	sim.SetButton(controller.BtnDpadUp, true)
	waitFor(t, func() bool { return m.Settings().Key == music.F })

	// Select cycles the genre and adopts its defaults.
	sim.SetButton(controller.BtnSelect, true)
	waitFor(t, func() bool { return m.Settings().Genre == music.GenreEDM })
	if m.Settings().Mode != music.ModeMinor {
		t.Errorf("mode = %v after genre shortcut, want minor", m.Settings().Mode)
	}
}

func TestManagerPanic(t *testing.T) {
	m, ring := newTestManager()
	defer m.Stop()

	waitFor(t, func() bool { return ring.Len() >= 4 })
	drain(ring)

	m.Panic()
	waitFor(t, func() bool { return ring.Len() >= 1 })
	events := drain(ring)
	if events[len(events)-1].Kind != music.EventPanic {
		t.Errorf("expected panic event, got %v", events)
	}
}

func TestManagerInstrumentCycle(t *testing.T) {
	m, ring := newTestManager()
	defer m.Stop()

	waitFor(t, func() bool { return ring.Len() >= 4 })
	drain(ring)

	m.CycleInstrument(1)
	if got := m.Instrument(); got.Virtual != audio.DistortedGuitar {
		t.Errorf("instrument = %+v", got)
	}
	m.CycleInstrument(-2)
	if got := m.Instrument(); got.Virtual != audio.BrassSection {
		t.Errorf("wraparound instrument = %+v", got)
	}

	waitFor(t, func() bool { return ring.Len() >= 2 })
	for _, ev := range drain(ring) {
		if ev.Kind != music.EventPresetChange {
			t.Errorf("unexpected event %v", ev.Kind)
		}
	}
}

func TestManagerInstrumentCatalog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Strat Guitar.sf2"), []byte("xx"), 0644); err != nil {
		t.Fatal(err)
	}
	ring := audio.NewEventRing(256)
	catalog := audio.NewInstrumentCatalog(dir)
	m := NewManager(music.NewChordResolver(), ring, audio.NewStats(ring), catalog,
		music.Settings{Genre: music.GenrePunk, Key: music.E, Mode: music.ModeMajor})
	m.StartRuntime()
	defer m.Stop()

	// Startup adopts the catalog default: the guitar soundfont.
	if got := m.Instrument(); got.Kind != audio.KindSoundFont || got.Name != "Strat Guitar" {
		t.Fatalf("startup instrument = %+v", got)
	}

	waitFor(t, func() bool { return ring.Len() >= 4 })
	events := drain(ring)
	last := events[len(events)-1]
	if last.Kind != music.EventPresetChange || last.Preset != uint8(audio.CleanElectricGuitar) {
		t.Errorf("soundfont entry mapped to program %d", last.Preset)
	}

	// Cycling continues past the virtuals into the soundfont entry.
	m.CycleInstrument(1)
	if got := m.Instrument(); got.Virtual != audio.CleanElectricGuitar {
		t.Errorf("cycle from soundfont = %+v, want first virtual", got)
	}

	// A rescan that loses the selection falls back to the default.
	if err := os.Remove(filepath.Join(dir, "Strat Guitar.sf2")); err != nil {
		t.Fatal(err)
	}
	m.SelectInstrument(audio.InstrumentInfo{Name: "Strat Guitar", Kind: audio.KindSoundFont})
	m.RescanInstruments()
	if got := m.Instrument(); got.Kind != audio.KindVirtual || got.Virtual != audio.CleanElectricGuitar {
		t.Errorf("post-rescan instrument = %+v", got)
	}
}
