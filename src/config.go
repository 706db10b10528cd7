package main

import (
	"encoding/json"
	"errors"
	"os"
)

// Settings holds the user preferences consulted by the data views and the
// main window. Highlight controls whether a selection change in a data view
// triggers a plot redraw.
type Settings struct {
	Highlight    bool   `json:"highlight"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	ProjectPath  string `json:"project_path"`
}

// defaultSettings returns the settings used when no config file exists yet.
func defaultSettings() *Settings {
	return &Settings{
		Highlight:    true,
		WindowWidth:  900,
		WindowHeight: 640,
		ProjectPath:  "./project.db",
	}
}

// loadSettings reads the JSON settings file. A missing file is not an
// error: defaults are returned so first launch works without setup.
func loadSettings(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	s := defaultSettings()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	// normalize nonsense window sizes back to defaults
	if s.WindowWidth <= 0 {
		s.WindowWidth = 900
	}
	if s.WindowHeight <= 0 {
		s.WindowHeight = 640
	}
	if s.ProjectPath == "" {
		s.ProjectPath = "./project.db"
	}
	return s, nil
}

// save writes the settings back to disk.
func (s *Settings) save(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// GetHighlight reports whether highlight mode is enabled. Data views consult
// this on every selection change.
func (s *Settings) GetHighlight() bool {
	return s.Highlight
}
