// Package config loads interpreter settings from ecp.yml, a .env file and
// ECP_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ecp/internal/runtime"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "ecp.yml"

// Environment variables overriding the file settings.
const (
	EnvPath     = "ECP_PATH"
	EnvMaxDepth = "ECP_MAX_DEPTH"
	EnvSeed     = "ECP_SEED"
	EnvTrace    = "ECP_TRACE"
	EnvPreload  = "ECP_PRELOAD"
)

// Config holds the interpreter settings.
type Config struct {
	SearchPath []string `yaml:"search_path"`
	MaxDepth   int      `yaml:"max_depth"`
	Seed       int64    `yaml:"seed"` // 0 leaves RANDOM_INT unseeded
	Trace      bool     `yaml:"trace"`
	Preload    []string `yaml:"preload"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{MaxDepth: runtime.DefaultMaxDepth}
}

// Load reads the configuration for a project rooted at dir. Missing files
// are not errors. Variables from dir/.env apply only where the process
// environment does not set them.
func Load(dir string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(filepath.Join(dir, FileName)); err != nil {
		return nil, err
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("config: max_depth must be positive, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative module directories are relative to the file.
	base := filepath.Dir(path)
	for i, dir := range c.SearchPath {
		if !filepath.IsAbs(dir) {
			c.SearchPath[i] = filepath.Join(base, dir)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPath); ok {
		c.SearchPath = nil
		for _, dir := range filepath.SplitList(v) {
			if dir != "" {
				c.SearchPath = append(c.SearchPath, dir)
			}
		}
	}
	if v, ok := lookup(EnvMaxDepth); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: invalid integer %q", EnvMaxDepth, v)
		}
		c.MaxDepth = n
	}
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: invalid integer %q", EnvSeed, v)
		}
		c.Seed = n
	}
	if v, ok := lookup(EnvTrace); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: invalid boolean %q", EnvTrace, v)
		}
		c.Trace = b
	}
	if v, ok := lookup(EnvPreload); ok {
		c.Preload = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Preload = append(c.Preload, name)
			}
		}
	}
	return nil
}

// Options converts the settings into interpreter options. Trace is left to
// the caller, which owns the output stream.
func (c *Config) Options() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithMaxDepth(c.MaxDepth),
		runtime.WithSearchPath(c.SearchPath...),
	}
	if c.Seed != 0 {
		opts = append(opts, runtime.WithSeed(c.Seed))
	}
	if len(c.Preload) > 0 {
		opts = append(opts, runtime.WithPreload(c.Preload...))
	}
	return opts
}
