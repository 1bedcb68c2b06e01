package knob

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dump is the on-disk form of a knob table
type Dump struct {
	Version  string   `yaml:"version"`
	Frames   int      `yaml:"frames"`
	Basename string   `yaml:"basename"`
	Knobs    []Values `yaml:"knobs"` // Indexed by frame
}

// GenerateDumpPath creates a timestamped knob dump filename inside dir
func GenerateDumpPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("knobs_%s.yaml", timestamp))
}

// WriteTable writes a knob table to a YAML file
func WriteTable(path string, p Params, t Table) error {
	d := Dump{
		Version:  "1.0",
		Frames:   p.Frames,
		Basename: p.Basename,
		Knobs:    t.frames,
	}

	data, err := yaml.Marshal(&d)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readTable reads back a table written by WriteTable.
func readTable(path string) (Params, Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, Table{}, err
	}

	var d Dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Params{}, Table{}, err
	}

	frames := make([]Values, len(d.Knobs))
	for i, v := range d.Knobs {
		frames[i] = v.Clone()
	}

	p := Params{Frames: d.Frames, Basename: d.Basename, Animated: d.Frames > 0}
	return p, Table{frames: frames}, nil
}
