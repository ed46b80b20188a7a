package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

const (
	appName     = "go-dmg"
	cfgFilename = "config.toml"
)

type Settings struct {
	Emulation EmulationSettings `toml:"emulation"`
	Audio     AudioSettings     `toml:"audio"`
	Video     VideoSettings     `toml:"video"`
}

type EmulationSettings struct {
	Speed     int    `toml:"speed"`
	Bootstrap string `toml:"bootstrap"`
}

type AudioSettings struct {
	Muted          bool `toml:"muted"`
	PollIntervalMS int  `toml:"poll_interval_ms"`
}

type VideoSettings struct {
	Scale   int    `toml:"scale"`
	Limiter string `toml:"limiter"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Emulation: EmulationSettings{Speed: 1},
		Audio:     AudioSettings{PollIntervalMS: 10},
		Video:     VideoSettings{Scale: 2, Limiter: "adaptive"},
	}
}

// PollInterval is the audio monitor period.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.Audio.PollIntervalMS) * time.Millisecond
}

// DefaultPath is config.toml inside the user's configuration directory.
func DefaultPath() string {
	return filepath.Join(configdir.LocalConfig(appName), cfgFilename)
}

// Load reads settings from path. A missing file yields the defaults, keys
// absent from the file keep their default values.
func Load(path string) (Settings, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No settings file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("Unknown settings ignored", "path", path, "keys", strings.Join(keys, ","))
	}

	cfg.Normalize()
	return cfg, nil
}

// Save writes settings to path, creating its directory if needed.
func Save(path string, cfg Settings) error {
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return f.Close()
}

// Normalize clamps out of range values. Call it again after applying overrides.
func (s *Settings) Normalize() {
	s.Emulation.Speed = max(s.Emulation.Speed, 1)
	s.Video.Scale = max(s.Video.Scale, 1)
	if s.Audio.PollIntervalMS <= 0 {
		s.Audio.PollIntervalMS = Default().Audio.PollIntervalMS
	}
}
