package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"mityguitar/audio"
	"mityguitar/config"
	"mityguitar/controller"
	"mityguitar/debug"
	"mityguitar/music"
	"mityguitar/perform"
	"mityguitar/theme"
	"mityguitar/tui"
)

func main() {
	if os.Getenv("MITYGUITAR_DEBUG") != "" {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Load theme: palette file if present, built-in otherwise
	palette := theme.Default()
	if dir, err := config.ConfigDir(); err == nil {
		if p, err := theme.LoadGPL(filepath.Join(dir, "palette.gpl")); err == nil {
			palette = p
		}
	}
	th := theme.New(palette)

	// Chord resolution with user presets layered over the defaults
	resolver := music.NewChordResolver()
	if err := music.LoadPresets(resolver); err != nil {
		fmt.Fprintf(os.Stderr, "presets: %v\n", err)
	}
	applyWhammyOverrides(resolver, cfg.Whammy)

	settings := startupSettings(cfg)

	// Audio pipeline: ring -> engine -> output
	ring := audio.NewEventRing(audio.DefaultRingCapacity)
	stats := audio.NewStats(ring)
	synth := audio.NewFallbackSynth(cfg.Audio.SampleRate)
	synth.SetReleaseScale(float32(cfg.Audio.ReleaseScale))
	engine := audio.NewEngine(ring, synth, stats)

	output, err := audio.NewOutput(cfg.Audio.SampleRate, cfg.Audio.BufferFrames, stats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		os.Exit(1)
	}
	defer output.Close()
	output.Attach(engine)
	output.Start()

	catalog := audio.NewInstrumentCatalog(cfg.SoundFonts.Dirs...)

	// Control domain
	manager := perform.NewManager(resolver, ring, stats, catalog, settings)
	manager.StartRuntime()

	// Resume the last session's instrument when it is still available.
	if info, ok := catalog.Find(cfg.UI.LastInstrument); ok {
		manager.SelectInstrument(info)
	}

	// Keyboard simulator is always attached; hardware joins on hot-plug
	sim := controller.NewSimulator()
	manager.AttachSource(sim.Snapshots())

	deviceMgr := controller.NewDeviceManager(cfg.Controller.PortHints...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	fmt.Println("mityguitar")
	fmt.Println("Connect a guitar controller any time - it will be detected automatically")
	fmt.Println("")

	m := tui.NewModel(manager, deviceMgr, sim, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	saveSession(cfg, manager)
}

// startupSettings resumes the last session's context when the config
// carries one.
func startupSettings(cfg *config.Config) music.Settings {
	genre := music.GenrePunk
	if g, ok := music.ParseGenre(cfg.UI.LastGenre); ok {
		genre = g
	}
	s := music.Settings{
		Genre: genre,
		Key:   genre.DefaultKey(),
		Mode:  genre.DefaultMode(),
	}
	if k, ok := music.ParseNote(cfg.UI.LastKey); ok {
		s.Key = k
	}
	if m, ok := music.ParseMode(cfg.UI.LastMode); ok {
		s.Mode = m
	}
	if cfg.UI.LastPattern >= 0 && cfg.UI.LastPattern < perform.NumPatterns {
		s.Pattern = cfg.UI.LastPattern
	}
	return s
}

// applyWhammyOverrides pushes config-level whammy trims into every
// genre preset. Zero values leave the presets as loaded.
func applyWhammyOverrides(resolver *music.ChordResolver, w config.WhammyConfig) {
	if w.RangeSemitones <= 0 && w.Smoothing <= 0 {
		return
	}
	for _, g := range music.Genres() {
		p, ok := resolver.Preset(g)
		if !ok {
			continue
		}
		if w.RangeSemitones > 0 {
			p.Whammy.RangeSemitones = float32(w.RangeSemitones)
		}
		if w.Smoothing > 0 && w.Smoothing < 1 {
			p.Whammy.Smoothing = float32(w.Smoothing)
		}
		resolver.LoadPreset(g, p)
	}
}

func saveSession(cfg *config.Config, manager *perform.Manager) {
	s := manager.Settings()
	cfg.UI.LastGenre = s.Genre.Name()
	cfg.UI.LastKey = s.Key.Name()
	cfg.UI.LastMode = s.Mode.Name()
	cfg.UI.LastPattern = s.Pattern
	cfg.UI.LastInstrument = manager.Instrument().Name
	if err := cfg.Save(); err != nil {
		debug.Log(debug.UI, "save config: %v", err)
	}
}
