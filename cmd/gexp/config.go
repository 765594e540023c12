package main

import (
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stevenktruong/graph-expansion/gexp"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a leading-term run.  Values come from the
// --config file first and are then overridden by any flags given.
type Config struct {
	Seed          string        `mapstructure:"seed"`
	Order         int           `mapstructure:"order"` // -1: the seed's usual order
	MaxTerms      int           `mapstructure:"max_terms"`
	MaxExpansions int           `mapstructure:"max_expansions"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Workers       int           `mapstructure:"workers"`
	DropDupes     bool          `mapstructure:"drop_dupes"`

	Catalog gexp.CatalogOpts `mapstructure:"catalog"`
	Redis   RedisConfig      `mapstructure:"redis"`

	Tex         bool   `mapstructure:"tex"`
	Tally       bool   `mapstructure:"tally"`
	Markdown    bool   `mapstructure:"markdown"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

func DefaultConfig() Config {
	return Config{
		Seed:    "g-loop-2",
		Order:   -1,
		Workers: 1,
	}
}

// LoadConfig reads a YAML config file over the defaults.  An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, errors.Wrapf(err, "decoding %s", path)
	}
	return cfg, nil
}

// ApplyFlags overrides cfg with every flag set on the command line.
func (cfg *Config) ApplyFlags(flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed, _ = flags.GetString(f.Name)
		case "order":
			cfg.Order, _ = flags.GetInt(f.Name)
		case "max-terms":
			cfg.MaxTerms, _ = flags.GetInt(f.Name)
		case "max-expansions":
			cfg.MaxExpansions, _ = flags.GetInt(f.Name)
		case "timeout":
			cfg.Timeout, _ = flags.GetDuration(f.Name)
		case "workers":
			cfg.Workers, _ = flags.GetInt(f.Name)
		case "drop-dupes":
			cfg.DropDupes, _ = flags.GetBool(f.Name)
		case "catalog":
			cfg.Catalog.DbPathName, _ = flags.GetString(f.Name)
		case "redis":
			cfg.Redis.Addr, _ = flags.GetString(f.Name)
		case "tex":
			cfg.Tex, _ = flags.GetBool(f.Name)
		case "tally":
			cfg.Tally, _ = flags.GetBool(f.Name)
		case "markdown":
			cfg.Markdown, _ = flags.GetBool(f.Name)
		case "metrics-addr":
			cfg.MetricsAddr, _ = flags.GetString(f.Name)
		}
	})
}
