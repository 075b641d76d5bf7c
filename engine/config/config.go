// Package config loads the oxyshaderc configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the configuration file name looked up in the working directory.
const DefaultFile = "oxyshader.toml"

const (
	defaultAssetDir  = "assets"
	defaultOutputDir = "build/shaders"
	defaultLogLevel  = "info"
	defaultWorkers   = 4
)

// Config holds the settings shared by the compiler and the CLI.
type Config struct {
	// AssetDirs are the directories scanned for .shader files.
	AssetDirs []string `toml:"asset_dirs"`

	// SharedLibrary is a path to a GLSL file replacing the embedded shared library.
	SharedLibrary string `toml:"shared_library"`

	// Backends are the targets compiled by default.
	Backends []string `toml:"backends"`

	Workers  int    `toml:"workers"`
	LogLevel string `toml:"log_level"`

	// Watch keeps the process alive and recompiles on asset changes.
	Watch bool `toml:"watch"`

	OutputDir string `toml:"output_dir"`
}

// Default returns the configuration used when no file is present.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		AssetDirs: []string{defaultAssetDir},
		Backends:  backendNames(emitter.Backends),
		Workers:   defaultWorkers,
		LogLevel:  defaultLogLevel,
		OutputDir: defaultOutputDir,
	}
}

// Load reads the TOML file at path and fills missing fields from Default. A missing file is not
// an error when path is DefaultFile.
//
// Parameters:
//   - path: the configuration file path, empty means DefaultFile
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read or decoded, or a field is invalid
func Load(path string) (Config, error) {
	name := common.Coalesce(path, DefaultFile)
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == "" {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Decode(data)
}

// Decode parses TOML bytes and fills missing fields from Default.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if the document is malformed, has unknown keys, or a field is invalid
func Decode(data []byte) (Config, error) {
	var c Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c = c.withDefaults()
	return c, c.Validate()
}

// Encode renders the configuration as TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: error if encoding fails
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func (c Config) withDefaults() Config {
	d := Default()
	if len(c.AssetDirs) == 0 {
		c.AssetDirs = d.AssetDirs
	}
	if len(c.Backends) == 0 {
		c.Backends = d.Backends
	}
	c.Workers = common.Coalesce(c.Workers, d.Workers)
	c.LogLevel = common.Coalesce(c.LogLevel, d.LogLevel)
	c.OutputDir = common.Coalesce(c.OutputDir, d.OutputDir)
	return c
}

// Validate checks the backend names, worker count and log level.
//
// Returns:
//   - error: the first invalid field, or nil
func (c Config) Validate() error {
	if _, err := c.ParsedBackends(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ParsedBackends converts Backends to emitter backends, dropping duplicates.
//
// Returns:
//   - []emitter.Backend: the configured backends in file order
//   - error: error if a name is not a known backend
func (c Config) ParsedBackends() ([]emitter.Backend, error) {
	out := make([]emitter.Backend, 0, len(c.Backends))
	seen := make(map[emitter.Backend]bool)
	for _, name := range c.Backends {
		b, err := emitter.ParseBackend(name)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out, nil
}

// Level maps LogLevel to a slog level.
//
// Returns:
//   - slog.Level: the level
//   - error: error if LogLevel is not debug, info, warn or error
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// Logger builds a text logger writing to stderr at the configured level.
//
// Returns:
//   - *slog.Logger: the logger
func (c Config) Logger() *slog.Logger {
	level, _ := c.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func backendNames(backends []emitter.Backend) []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.String()
	}
	return names
}
