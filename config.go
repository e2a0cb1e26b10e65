package nestgen

import (
	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/kralicky/nestgen/pkg/plugins/nestjs"
)

// Config holds the settings of a standalone generation run, as loaded from
// a nestgen.toml file.
type Config struct {
	nestjs.Options

	ImportPaths []string `toml:"import_paths"`
	Output      string   `toml:"output"`
	LogLevel    string   `toml:"log_level"`

	// When set, the external plugin is run before the nestjs generator.
	ES *ESConfig `toml:"es"`
}

type ESConfig struct {
	// Plugin command line, defaults to protoc-gen-es from PATH.
	Command []string `toml:"command"`
	// Parameter string passed to the plugin.
	Opt string `toml:"opt"`
}

func DefaultConfig() Config {
	return Config{
		Options:  nestjs.DefaultOptions(),
		Output:   ".",
		LogLevel: "warn",
	}
}

func DefaultESConfig() *ESConfig {
	return &ESConfig{
		Command: []string{"protoc-gen-es"},
		Opt:     "target=ts",
	}
}

// LoadConfig reads a TOML config file on top of DefaultConfig. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return Config{}, errors.WithDetails(errors.Errorf("%s: unknown config keys", path), "keys", keys)
	}
	if cfg.ES != nil && len(cfg.ES.Command) == 0 {
		cfg.ES.Command = DefaultESConfig().Command
	}
	return cfg, nil
}
