// Package config loads pgen settings from .pgen.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unix-beard/pgen/charset"
)

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = ".pgen.yaml"

var ErrPatternNotFound = errors.New("pattern not found in configuration")

// Config is the content of a configuration file: named patterns plus
// optional character class overrides.
type Config struct {
	Name     string            `yaml:"name"`
	Charset  *charset.Spec     `yaml:"charset,omitempty"`
	Patterns map[string]string `yaml:"patterns"`
}

// Default returns the configuration written by `pgen init`.
func Default() Config {
	spec := charset.DefaultSpec()
	return Config{
		Name:    "pgen",
		Charset: &spec,
		Patterns: map[string]string{
			"token":    "{C}{v}{c}{v}{d}{2}",
			"word":     "{{c}{v}}{2:4}",
			"id":       "{'id-'}{Alpha}{3}{d}{4}",
			"greeting": "{{'hello'}{'hi'}{'hey'}}{@}, {C}{v}{c}{v}!",
		},
	}
}

// Load reads and decodes the configuration file at path.
func Load(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as YAML into path, replacing any existing file.
func Write(path string, cfg Config) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(d); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Pattern returns the source of the named pattern.
func (c Config) Pattern(name string) (string, error) {
	src, ok := c.Patterns[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrPatternNotFound)
	}
	return src, nil
}

// Names returns the pattern names in sorted order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Patterns))
	for name := range c.Patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table builds the character classes. A charset file, when given, takes
// precedence over the configuration's own charset section.
func (c Config) Table(charsetPath string) (*charset.Table, error) {
	if charsetPath != "" {
		return charset.Load(charsetPath)
	}
	if c.Charset == nil {
		return charset.Default(), nil
	}
	return charset.New(*c.Charset)
}

// Env holds the defaults the CLI reads from the environment. Unset
// variables stay empty or nil so they never shadow a command's own flag
// defaults.
type Env struct {
	Config  string  `env:"PGEN_CONFIG"`
	Charset string  `env:"PGEN_CHARSET"`
	Count   *int    `env:"PGEN_COUNT"`
	Seed    *uint64 `env:"PGEN_SEED"`
	Mode    string  `env:"PGEN_MODE"`
	Verbose bool    `env:"PGEN_VERBOSE"`
}

var dotenvLoaded sync.Once

// LoadEnv reads Env from the process environment after loading a .env file
// from the working directory, if there is one.
func LoadEnv() (Env, error) {
	dotenvLoaded.Do(func() {
		// a missing .env file is fine
		_ = godotenv.Load()
	})
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// ParseEnv reads Env from the given variables instead of the process
// environment.
func ParseEnv(environment map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: environment}); err != nil {
		return e, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}
