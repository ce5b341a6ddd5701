package config

import (
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "FB2SHELF_"

type Config struct {
	Environment string `koanf:"environment" default:"development" validate:"oneof=development test production"`

	ServerHost string `koanf:"server_host" default:"0.0.0.0"`
	ServerPort int    `koanf:"server_port" default:"3690" validate:"min=0,max=65535"`

	// WorkingDirectory is the root of the FB2 library to scan.
	WorkingDirectory string `koanf:"working_directory"`

	// RulesFilePath points at the JSON rule bundle (name lists, blacklist,
	// conversions, patterns) consumed by the inference pipeline.
	RulesFilePath string `koanf:"rules_file_path" default:"rules.json"`

	DatabaseFilePath    string        `koanf:"database_file_path" default:"fb2shelf.db"`
	DatabaseDebug       bool          `koanf:"database_debug"`
	DatabaseBusyTimeout time.Duration `koanf:"database_busy_timeout" default:"5s"`

	WorkerProcesses    int           `koanf:"worker_processes" default:"1" validate:"min=1,max=8"`
	WorkerPollInterval time.Duration `koanf:"worker_poll_interval" default:"2s"`

	Hostname string `koanf:"-"`
}

// NewForTest returns a config with defaults only, suitable for unit tests.
func NewForTest() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	cfg.Environment = "test"
	cfg.Hostname = "test"
	return cfg
}

// New loads configuration from the given YAML file (if it exists) with
// environment variables layered on top. An empty path skips the file and
// uses defaults plus environment only.
func New(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "failed to load config file: %s", path)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.WithStack(err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	return cfg, nil
}
