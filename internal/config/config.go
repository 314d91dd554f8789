package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Lihaila/pixelperfect"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "PIXELPERFECT_"

// Config is the processing and logging configuration of the CLI.
type Config struct {
	Quality             int    `yaml:"quality" env:"QUALITY"`
	Format              string `yaml:"format" env:"FORMAT"`
	MaxWidth            int    `yaml:"max_width" env:"MAX_WIDTH"`
	MaxHeight           int    `yaml:"max_height" env:"MAX_HEIGHT"`
	MaintainAspectRatio bool   `yaml:"maintain_aspect_ratio" env:"MAINTAIN_ASPECT_RATIO"`
	Kernel              string `yaml:"kernel" env:"KERNEL"`
	MirroredOrientation bool   `yaml:"mirrored_orientation" env:"MIRRORED_ORIENTATION"`

	Log LogConfig `yaml:"log" envPrefix:"LOG_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := pixelperfect.DefaultOptions()
	return Config{
		Quality:             opts.Quality,
		Format:              "jpeg",
		MaintainAspectRatio: opts.MaintainAspectRatio,
		Kernel:              opts.Kernel.String(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty) and PIXELPERFECT_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "failed to parse config")
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, errors.Wrap(err, "failed to read environment")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate rejects names the processor would otherwise replace silently.
// Numeric values are left to the processor's clamping.
func (c *Config) Validate() error {
	if _, ok := pixelperfect.ParseFormat(c.Format); !ok {
		return errors.Errorf("format %q is not one of jpeg, png, svg", c.Format)
	}
	if _, ok := pixelperfect.ParseKernel(c.Kernel); !ok {
		return errors.Errorf("kernel %q is not one of lanczos, catmullrom, bicubic, linear", c.Kernel)
	}
	return nil
}

// Options converts the config to processing options.
func (c Config) Options() pixelperfect.Options {
	format, _ := pixelperfect.ParseFormat(c.Format)
	kernel, _ := pixelperfect.ParseKernel(c.Kernel)
	return pixelperfect.Options{
		Quality:             c.Quality,
		Format:              format,
		MaxWidth:            c.MaxWidth,
		MaxHeight:           c.MaxHeight,
		MaintainAspectRatio: c.MaintainAspectRatio,
		Kernel:              kernel,
		MirroredOrientation: c.MirroredOrientation,
	}
}
