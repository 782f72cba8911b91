package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if path is not empty
//  3. env (prefix HITSCOPE_)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "can't load config file %s", path)
		}
	}

	// Environment variables: HITSCOPE_VIDEO_PATH, HITSCOPE_MIN_REPUTATION, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("HITSCOPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hitscope_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "can't load environment overrides")
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "can't unmarshal config")
	}

	if cfg.VideoPath == "" {
		return nil, errors.New("video_path must not be empty")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("model_path must not be empty")
	}
	if cfg.InnerDiameterPx <= 0 {
		return nil, errors.New("inner_diameter_px must be positive")
	}
	if cfg.RingsAmount < 1 || cfg.RingsAmount > 10 {
		return nil, errors.New("rings_amount must be between 1 and 10")
	}
	if cfg.MinReputation < 1 {
		return nil, errors.New("min_reputation must be positive")
	}
	return cfg, nil
}
