package music

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PresetFile is the on-disk form of a genre preset collection. Genres
// missing from the file keep their built-in defaults.
type PresetFile struct {
	Presets map[string]GenrePreset `json:"presets"`
}

// PresetDir returns the directory preset files live in.
func PresetDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mityguitar", "presets"), nil
}

// PresetPath returns the full path to presets.json.
func PresetPath() (string, error) {
	dir, err := PresetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "presets.json"), nil
}

// LoadPresets reads presets.json and installs every recognized genre
// into the resolver. Missing file is not an error; the built-in
// defaults stay in place. Unknown genre names are reported so a typo in
// a hand-edited file does not silently vanish.
func LoadPresets(r *ChordResolver) error {
	path, err := PresetPath()
	if err != nil {
		return nil
	}
	return LoadPresetsFrom(r, path)
}

// LoadPresetsFrom installs presets from an explicit file path.
func LoadPresetsFrom(r *ChordResolver, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading presets: %w", err)
	}

	var file PresetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing presets: %w", err)
	}

	var unknown []string
	for name, preset := range file.Presets {
		g, ok := ParseGenre(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if preset.Name == "" {
			preset.Name = g.Name()
		}
		r.LoadPreset(g, preset)
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown genres in presets: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// SavePresets writes the resolver's current presets to presets.json,
// creating the directory if needed.
func SavePresets(r *ChordResolver) error {
	dir, err := PresetDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := PresetPath()
	if err != nil {
		return err
	}

	file := PresetFile{Presets: make(map[string]GenrePreset, NumGenres)}
	for _, g := range Genres() {
		if p, ok := r.Preset(g); ok {
			file.Presets[g.Name()] = p
		}
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
