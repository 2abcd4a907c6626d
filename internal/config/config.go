package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lazypower/aria/internal/aria"
)

// Config holds all aria configuration: the HTTP server bind address, the
// database path, and the [core] table overriding the learning engine's
// tuning constants (spec §6).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Core     CoreConfig     `mapstructure:"core"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TierConfig overrides one strength tier's decay interval and rate.
type TierConfig struct {
	Interval uint64  `mapstructure:"interval"`
	Rate     float64 `mapstructure:"rate"`
}

// GeneratorConfig overrides the response generator's scalar knobs. The
// category-keyed maps (start weights, transitions, promotion modifiers)
// are not exposed here — they encode the generator's shape, not a tuning
// dial, and stay at their spec-literal defaults.
type GeneratorConfig struct {
	MaxWords          int     `mapstructure:"max_words"`
	MinWords          int     `mapstructure:"min_words"`
	StrengthThreshold float64 `mapstructure:"strength_threshold"`
	Randomness        float64 `mapstructure:"randomness"`
	MaxLengthChars    int     `mapstructure:"max_length_chars"`
}

// CoreConfig mirrors every configuration constant enumerated in spec §6,
// plus the aging hook's rate limit from §4.6. Load fills any key the
// TOML/env source leaves unset from Default() (via applyDefaults);
// Config.ToTuning then copies every field as is, zero values included.
type CoreConfig struct {
	ShortMax  float64 `mapstructure:"short_max"`
	MediumMax float64 `mapstructure:"medium_max"`
	DecayMin  float64 `mapstructure:"decay_min"`

	ReinforcementBase float64 `mapstructure:"reinforcement_base"`
	ReinforcementMax  float64 `mapstructure:"reinforcement_max"`

	AdjacencyWindow int `mapstructure:"adjacency_window"`

	CategoryFloor        float64 `mapstructure:"category_floor"`
	MinOccurrencesForCat uint64  `mapstructure:"min_occurrences_for_category"`
	InertiaThreshold     int     `mapstructure:"inertia_threshold"`

	TierShort  TierConfig `mapstructure:"tier_short"`
	TierMedium TierConfig `mapstructure:"tier_medium"`
	TierLong   TierConfig `mapstructure:"tier_long"`

	AgingHookIntervalMillis int64 `mapstructure:"aging_hook_interval_millis"`

	Generator GeneratorConfig `mapstructure:"generator"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	d := aria.DefaultTuning()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37777,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Core: CoreConfig{
			ShortMax:  d.ShortMax,
			MediumMax: d.MediumMax,
			DecayMin:  d.DecayMin,

			ReinforcementBase: d.ReinforcementBase,
			ReinforcementMax:  d.ReinforcementMax,

			AdjacencyWindow: d.AdjacencyWindow,

			CategoryFloor:        d.CategoryFloor,
			MinOccurrencesForCat: d.MinOccurrencesForCat,
			InertiaThreshold:     d.InertiaThreshold,

			TierShort:  TierConfig{Interval: d.TierIntervals[aria.TierShort].Interval, Rate: d.TierIntervals[aria.TierShort].Rate},
			TierMedium: TierConfig{Interval: d.TierIntervals[aria.TierMedium].Interval, Rate: d.TierIntervals[aria.TierMedium].Rate},
			TierLong:   TierConfig{Interval: d.TierIntervals[aria.TierLong].Interval, Rate: d.TierIntervals[aria.TierLong].Rate},

			AgingHookIntervalMillis: d.AgingHookIntervalMillis,

			Generator: GeneratorConfig{
				MaxWords:          d.Generator.MaxWords,
				MinWords:          d.Generator.MinWords,
				StrengthThreshold: d.Generator.StrengthThreshold,
				Randomness:        d.Generator.Randomness,
				MaxLengthChars:    d.Generator.MaxLengthChars,
			},
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ToTuning projects the [core] table onto aria.DefaultTuning(), leaving
// the category-keyed maps (start weights, transitions, promotion
// modifiers) at their spec-literal defaults.
func (c *Config) ToTuning() aria.Tuning {
	t := aria.DefaultTuning()

	t.ShortMax = c.Core.ShortMax
	t.MediumMax = c.Core.MediumMax
	t.DecayMin = c.Core.DecayMin

	t.ReinforcementBase = c.Core.ReinforcementBase
	t.ReinforcementMax = c.Core.ReinforcementMax

	t.AdjacencyWindow = c.Core.AdjacencyWindow

	t.CategoryFloor = c.Core.CategoryFloor
	t.MinOccurrencesForCat = c.Core.MinOccurrencesForCat
	t.InertiaThreshold = c.Core.InertiaThreshold

	t.TierIntervals = map[aria.Tier]aria.TierSettings{
		aria.TierShort:  {Interval: c.Core.TierShort.Interval, Rate: c.Core.TierShort.Rate},
		aria.TierMedium: {Interval: c.Core.TierMedium.Interval, Rate: c.Core.TierMedium.Rate},
		aria.TierLong:   {Interval: c.Core.TierLong.Interval, Rate: c.Core.TierLong.Rate},
	}

	t.AgingHookIntervalMillis = c.Core.AgingHookIntervalMillis

	t.Generator.MaxWords = c.Core.Generator.MaxWords
	t.Generator.MinWords = c.Core.Generator.MinWords
	t.Generator.StrengthThreshold = c.Core.Generator.StrengthThreshold
	t.Generator.Randomness = c.Core.Generator.Randomness
	t.Generator.MaxLengthChars = c.Core.Generator.MaxLengthChars

	return t
}

// Load reads configuration from path (if non-empty) or the default
// search locations (./aria.toml, ~/.aria/aria.toml, /etc/aria/aria.toml),
// layering ARIA_-prefixed environment variables on top, and falling back
// to Default() for anything unset.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	applyDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("aria")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.aria")
		v.AddConfigPath("/etc/aria")
	}

	v.SetEnvPrefix("ARIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// applyDefaults seeds viper with every field of d so an unset TOML key or
// env var falls back to the spec-literal default rather than a zero
// value.
func applyDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.bind", d.Server.Bind)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("core.short_max", d.Core.ShortMax)
	v.SetDefault("core.medium_max", d.Core.MediumMax)
	v.SetDefault("core.decay_min", d.Core.DecayMin)
	v.SetDefault("core.reinforcement_base", d.Core.ReinforcementBase)
	v.SetDefault("core.reinforcement_max", d.Core.ReinforcementMax)
	v.SetDefault("core.adjacency_window", d.Core.AdjacencyWindow)
	v.SetDefault("core.category_floor", d.Core.CategoryFloor)
	v.SetDefault("core.min_occurrences_for_category", d.Core.MinOccurrencesForCat)
	v.SetDefault("core.inertia_threshold", d.Core.InertiaThreshold)
	v.SetDefault("core.tier_short.interval", d.Core.TierShort.Interval)
	v.SetDefault("core.tier_short.rate", d.Core.TierShort.Rate)
	v.SetDefault("core.tier_medium.interval", d.Core.TierMedium.Interval)
	v.SetDefault("core.tier_medium.rate", d.Core.TierMedium.Rate)
	v.SetDefault("core.tier_long.interval", d.Core.TierLong.Interval)
	v.SetDefault("core.tier_long.rate", d.Core.TierLong.Rate)
	v.SetDefault("core.aging_hook_interval_millis", d.Core.AgingHookIntervalMillis)
	v.SetDefault("core.generator.max_words", d.Core.Generator.MaxWords)
	v.SetDefault("core.generator.min_words", d.Core.Generator.MinWords)
	v.SetDefault("core.generator.strength_threshold", d.Core.Generator.StrengthThreshold)
	v.SetDefault("core.generator.randomness", d.Core.Generator.Randomness)
	v.SetDefault("core.generator.max_length_chars", d.Core.Generator.MaxLengthChars)
}
