// Package settings manages persisted user preferences: preferred
// reader, scene handling, memory thresholds for the in-memory vs lazy
// loading decision, and the catalog overlay location.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Scene handling modes for multi-scene files.
const (
	SceneFirstOnly = "first"
	SceneAll       = "all"
)

// Settings holds the user-configurable preferences.
//
// The memory thresholds are deliberately configuration, not constants:
// their values are empirical (how large a file is comfortable to hold
// decoded in RAM), so users with unusual machines can tune them.
type Settings struct {
	Reader  ReaderSettings  `mapstructure:"reader"`
	Memory  MemorySettings  `mapstructure:"memory"`
	Catalog CatalogSettings `mapstructure:"catalog"`
	Log     LogSettings     `mapstructure:"log"`
}

// ReaderSettings control reader selection and scene handling.
type ReaderSettings struct {
	// PreferredReader is tried before catalog priority order. Empty
	// means no preference.
	PreferredReader string `mapstructure:"preferred_reader"`

	// SceneHandling is "first" or "all".
	SceneHandling string `mapstructure:"scene_handling"`
}

// MemorySettings bound eager in-memory loading.
type MemorySettings struct {
	// MaxInMemBytes is the largest file loaded eagerly, in bytes.
	MaxInMemBytes int64 `mapstructure:"max_in_mem_bytes"`

	// MaxInMemPercent is the largest share of available RAM a file may
	// occupy and still be loaded eagerly, in [0, 1].
	MaxInMemPercent float64 `mapstructure:"max_in_mem_percent"`
}

// CatalogSettings point at an optional user catalog overlay.
type CatalogSettings struct {
	OverlayPath string `mapstructure:"overlay_path"`
}

// LogSettings control logging verbosity.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// Load reads settings from file and environment. The config file lives
// at $BIOIMG_CONFIG or ~/.config/bioimg/config.yaml; environment
// overrides use the BIOIMG_ prefix (e.g. BIOIMG_READER_PREFERRED_READER).
// A missing config file yields the defaults.
func Load() (Settings, error) {
	v := newViper()
	_ = v.ReadInConfig()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Watch loads settings and re-invokes onChange with fresh values every
// time the config file changes on disk. Invalid edits are logged and
// skipped, keeping the last good settings in effect.
func Watch(onChange func(Settings)) (Settings, error) {
	v := newViper()
	_ = v.ReadInConfig()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var next Settings
		if err := v.Unmarshal(&next); err != nil {
			logrus.WithError(err).Warn("ignoring invalid settings change")
			return
		}
		if err := next.validate(); err != nil {
			logrus.WithError(err).Warn("ignoring invalid settings change")
			return
		}
		onChange(next)
	})
	v.WatchConfig()

	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("reader.preferred_reader", "")
	v.SetDefault("reader.scene_handling", SceneFirstOnly)
	v.SetDefault("memory.max_in_mem_bytes", int64(4e9))
	v.SetDefault("memory.max_in_mem_percent", 0.30)
	v.SetDefault("catalog.overlay_path", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")

	if cfgPath := os.Getenv("BIOIMG_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "bioimg"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BIOIMG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func (s Settings) validate() error {
	switch s.Reader.SceneHandling {
	case SceneFirstOnly, SceneAll:
	default:
		return fmt.Errorf("invalid scene_handling %q (want %q or %q)",
			s.Reader.SceneHandling, SceneFirstOnly, SceneAll)
	}

	if s.Memory.MaxInMemBytes <= 0 {
		return fmt.Errorf("max_in_mem_bytes must be positive, got %d", s.Memory.MaxInMemBytes)
	}
	if s.Memory.MaxInMemPercent <= 0 || s.Memory.MaxInMemPercent > 1 {
		return fmt.Errorf("max_in_mem_percent must be in (0, 1], got %g", s.Memory.MaxInMemPercent)
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info on garbage.
func (s Settings) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(s.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
