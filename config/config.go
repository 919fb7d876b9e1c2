package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// AudioConfig sets up the output device and global synth trims
type AudioConfig struct {
	SampleRate   int     `json:"sampleRate,omitempty"`
	BufferFrames int     `json:"bufferFrames,omitempty"`
	ReleaseScale float64 `json:"releaseScale,omitempty"` // multiplier on non-sustained release times
}

// WhammyConfig overrides the genre presets' whammy response when set;
// zero values leave the presets alone
type WhammyConfig struct {
	RangeSemitones float64 `json:"rangeSemitones,omitempty"`
	Smoothing      float64 `json:"smoothing,omitempty"`
}

// ControllerConfig identifies guitar controllers to accept
type ControllerConfig struct {
	PortHints []string `json:"portHints,omitempty"` // extra MIDI port name substrings
}

// SoundFontConfig lists directories scanned for .sf2 files
type SoundFontConfig struct {
	Dirs []string `json:"dirs,omitempty"`
}

// UIConfig stores the last performance context so a session resumes
// where it left off
type UIConfig struct {
	LastGenre      string `json:"lastGenre,omitempty"`
	LastKey        string `json:"lastKey,omitempty"`
	LastMode       string `json:"lastMode,omitempty"`
	LastPattern    int    `json:"lastPattern,omitempty"`
	LastInstrument string `json:"lastInstrument,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio      AudioConfig      `json:"audio,omitempty"`
	Whammy     WhammyConfig     `json:"whammy,omitempty"`
	Controller ControllerConfig `json:"controller,omitempty"`
	SoundFonts SoundFontConfig  `json:"soundfonts,omitempty"`
	UI         UIConfig         `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Audio: AudioConfig{
			SampleRate:   48000,
			BufferFrames: 512,
			ReleaseScale: 1.0,
		},
		SoundFonts: SoundFontConfig{
			Dirs: []string{filepath.Join(home, ".config", "mityguitar", "soundfonts")},
		},
		UI: UIConfig{
			LastGenre: "Punk",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mityguitar"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	return cfg, nil
}

// fillDefaults backfills zero values so a sparse hand-edited file still
// yields a working setup.
func (c *Config) fillDefaults() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.BufferFrames <= 0 {
		c.Audio.BufferFrames = 512
	}
	if c.Audio.ReleaseScale <= 0 {
		c.Audio.ReleaseScale = 1.0
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
