// Package config loads the optional refsweep configuration file. Flags
// always win; the file supplies defaults for anything left unset.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Duration parses from the usual "30s" / "2m" notation in both YAML and JSON.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// File is the single-file configuration schema. Nested sections map
// naturally to the subcommand flags.
type File struct {
	Corpus struct {
		Dir       string `yaml:"dir" json:"dir"`
		BackupDir string `yaml:"backupDir" json:"backupDir"`
		Pattern   string `yaml:"pattern" json:"pattern"`
	} `yaml:"corpus" json:"corpus"`

	Fetch struct {
		UserAgent string   `yaml:"userAgent" json:"userAgent"`
		Timeout   Duration `yaml:"timeout" json:"timeout"`
		Attempts  int      `yaml:"attempts" json:"attempts"`
		MaxHops   int      `yaml:"maxHops" json:"maxHops"`
		Delay     Duration `yaml:"delay" json:"delay"`
	} `yaml:"fetch" json:"fetch"`

	Thresholds struct {
		MinWebChars   int `yaml:"minWebChars" json:"minWebChars"`
		MinCleanChars int `yaml:"minCleanChars" json:"minCleanChars"`
		MinRawChars   int `yaml:"minRawChars" json:"minRawChars"`
	} `yaml:"thresholds" json:"thresholds"`

	Dataset struct {
		CSV string `yaml:"csv" json:"csv"`
	} `yaml:"dataset" json:"dataset"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Defaults returns the values used when neither flag nor file sets a field.
func Defaults() File {
	var f File
	f.Corpus.Dir = "."
	f.Corpus.Pattern = "web_*.txt"
	f.Fetch.Timeout = Duration(30 * time.Second)
	f.Fetch.Attempts = 2
	f.Fetch.MaxHops = 5
	f.Fetch.Delay = Duration(2 * time.Second)
	f.Thresholds.MinWebChars = 150
	f.Thresholds.MinCleanChars = 200
	f.Thresholds.MinRawChars = 100
	return f
}

// Load reads YAML or JSON into File, judged by extension with a permissive
// fallback that tries both.
func Load(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &f); err != nil {
			return f, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &f); err != nil {
			return f, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &f); err != nil {
			if jerr := json.Unmarshal(b, &f); jerr != nil {
				return f, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return f, nil
}

// Overlay fills zero-valued fields of f from other. Parsed flag values stay
// untouched; only unset fields inherit from the file or from Defaults.
func Overlay(f *File, other File) {
	if f.Corpus.Dir == "" {
		f.Corpus.Dir = other.Corpus.Dir
	}
	if f.Corpus.BackupDir == "" {
		f.Corpus.BackupDir = other.Corpus.BackupDir
	}
	if f.Corpus.Pattern == "" {
		f.Corpus.Pattern = other.Corpus.Pattern
	}
	if f.Fetch.UserAgent == "" {
		f.Fetch.UserAgent = other.Fetch.UserAgent
	}
	if f.Fetch.Timeout == 0 {
		f.Fetch.Timeout = other.Fetch.Timeout
	}
	if f.Fetch.Attempts == 0 {
		f.Fetch.Attempts = other.Fetch.Attempts
	}
	if f.Fetch.MaxHops == 0 {
		f.Fetch.MaxHops = other.Fetch.MaxHops
	}
	if f.Fetch.Delay == 0 {
		f.Fetch.Delay = other.Fetch.Delay
	}
	if f.Thresholds.MinWebChars == 0 {
		f.Thresholds.MinWebChars = other.Thresholds.MinWebChars
	}
	if f.Thresholds.MinCleanChars == 0 {
		f.Thresholds.MinCleanChars = other.Thresholds.MinCleanChars
	}
	if f.Thresholds.MinRawChars == 0 {
		f.Thresholds.MinRawChars = other.Thresholds.MinRawChars
	}
	if f.Dataset.CSV == "" {
		f.Dataset.CSV = other.Dataset.CSV
	}
	if other.Verbose {
		f.Verbose = true
	}
}
