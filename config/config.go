package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/hep/planner"
)

type Config struct {
	Planner  PlannerConfig            `yaml:"planner"`
	Logging  LoggingConfig            `yaml:"logging"`
	Programs map[string]ProgramConfig `yaml:"programs"`
}

type PlannerConfig struct {
	MaxPasses int `yaml:"maxPasses"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn and error.
	Level string `yaml:"level"`
	// Format is either console or json.
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxPasses: planner.DefaultMaxPasses,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath is ~/.hep/config.yml.
func DefaultPath() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't get user home directory")
	}
	return filepath.Join(dir, ".hep", "config.yml"), nil
}

// Read reads the configuration from path, or from the default path if path is empty.
// A missing file at the default path yields the default configuration.
func Read(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	config := Default()
	if err := yaml.NewDecoder(f).Decode(config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in %s", path)
	}
	return config, nil
}

func (config *Config) Validate() error {
	if config.Planner.MaxPasses <= 0 {
		return errors.Errorf("planner.maxPasses must be positive, got %d", config.Planner.MaxPasses)
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		return errors.Errorf("unknown logging format '%s'", config.Logging.Format)
	}
	for name := range config.Programs {
		if _, err := config.Program(name); err != nil {
			return err
		}
	}
	return nil
}
