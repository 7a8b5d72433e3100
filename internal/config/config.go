/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are treated as read-only overrides
// at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type NotationConfig struct {
	// Language selects the pitch spelling system: sargam, western, number.
	Language string `yaml:"language"`
	Beats    int    `yaml:"beats"`
	BeatType int    `yaml:"beat_type"`
}

type ExportConfig struct {
	// PitchLanguage is the spelling written into MusicXML lyrics.
	PitchLanguage string `yaml:"pitch_language"`
	// ElideRedundantAccidentals drops repeated accidentals within a measure.
	ElideRedundantAccidentals bool `yaml:"elide_redundant_accidentals"`
}

type MIDIConfig struct {
	// TPQ is the tick resolution; 0 keeps the document's native divisions.
	TPQ      int     `yaml:"tpq"`
	Tempo    float64 `yaml:"tempo"`
	Velocity int     `yaml:"velocity"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Notation      NotationConfig `yaml:"notation"`
	Export        ExportConfig   `yaml:"export"`
	MIDI          MIDIConfig     `yaml:"midi"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Notation:      NotationConfig{Language: "sargam", Beats: 4, BeatType: 4},
		Export:        ExportConfig{PitchLanguage: "sargam", ElideRedundantAccidentals: false},
		MIDI:          MIDIConfig{TPQ: 0, Tempo: 120, Velocity: 96},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvNotationLanguage = "SWL_NOTATION_LANGUAGE"
	EnvExportLanguage   = "SWL_EXPORT_LANGUAGE"
	EnvExportElide      = "SWL_EXPORT_ELIDE_ACCIDENTALS"
	EnvMIDITPQ          = "SWL_MIDI_TPQ"
	EnvMIDITempo        = "SWL_MIDI_TEMPO"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SWL_LOG_LEVEL"
	EnvLogFormat = "SWL_LOG_FORMAT"
	EnvLogSource = "SWL_LOG_SOURCE"
	EnvLogFile   = "SWL_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Swaralipi")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Swaralipi")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "swaralipi")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Notation.Language) != "" {
		dst.Notation.Language = strings.ToLower(strings.TrimSpace(src.Notation.Language))
	}
	if src.Notation.Beats != 0 {
		dst.Notation.Beats = src.Notation.Beats
	}
	if src.Notation.BeatType != 0 {
		dst.Notation.BeatType = src.Notation.BeatType
	}
	if strings.TrimSpace(src.Export.PitchLanguage) != "" {
		dst.Export.PitchLanguage = strings.ToLower(strings.TrimSpace(src.Export.PitchLanguage))
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Export.ElideRedundantAccidentals = src.Export.ElideRedundantAccidentals
	if src.MIDI.TPQ != 0 {
		dst.MIDI.TPQ = src.MIDI.TPQ
	}
	if src.MIDI.Tempo != 0 {
		dst.MIDI.Tempo = src.MIDI.Tempo
	}
	if src.MIDI.Velocity != 0 {
		dst.MIDI.Velocity = src.MIDI.Velocity
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvNotationLanguage)); v != "" {
		cfg.Notation.Language = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportLanguage)); v != "" {
		cfg.Export.PitchLanguage = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportElide)); v != "" {
		lv := strings.ToLower(v)
		cfg.Export.ElideRedundantAccidentals = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvMIDITPQ)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MIDI.TPQ = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMIDITempo)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.MIDI.Tempo = f
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "notation.language":
		if os.Getenv(EnvNotationLanguage) != "" {
			return EnvNotationLanguage, true
		}
	case "export.pitch_language":
		if os.Getenv(EnvExportLanguage) != "" {
			return EnvExportLanguage, true
		}
	case "export.elide_redundant_accidentals":
		if os.Getenv(EnvExportElide) != "" {
			return EnvExportElide, true
		}
	case "midi.tpq":
		if os.Getenv(EnvMIDITPQ) != "" {
			return EnvMIDITPQ, true
		}
	case "midi.tempo":
		if os.Getenv(EnvMIDITempo) != "" {
			return EnvMIDITempo, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
