// Package config holds dis86 settings. Values are layered: built-in
// defaults, then a JSON file, then DIS86_* environment variables, then
// command-line flags (applied by the cmd package).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"dis86/internal/labels"
)

// DefaultInput is decoded when no input file is named.
const DefaultInput = "listing_0042_completionist_decode"

// Stdout as an output path writes the listing to standard output.
const Stdout = "-"

// Config represents configuration for the dis86 tool
type Config struct {
	Input       string `json:"input,omitempty" jsonschema:"title=Input,description=Raw 8086 binary to decode"`
	Output      string `json:"output,omitempty" jsonschema:"title=Output,description=Destination file; defaults to the input path plus .asm; - writes stdout"`
	Labels      string `json:"labels,omitempty" jsonschema:"title=Label Strategy,enum=two-pass,enum=padded,default=two-pass"`
	Debug       bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor     bool   `json:"noColor,omitempty" jsonschema:"title=No Color,description=Disable syntax colouring in terminal output"`
	ProfilePath string `json:"profilePath,omitempty" jsonschema:"title=Profile Path,description=Path for CPU profile output"`
	LogDir      string `json:"logDir,omitempty" jsonschema:"title=Log Directory,description=Directory for debug log files"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Input:  DefaultInput,
		Labels: labels.TwoPass,
	}
}

// Load returns defaults overlaid with the JSON file at path (if path is not
// empty) and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays DIS86_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("DIS86_INPUT", &c.Input)
	str("DIS86_OUTPUT", &c.Output)
	str("DIS86_LABELS", &c.Labels)
	str("DIS86_PROFILE", &c.ProfilePath)
	str("DIS86_LOG_DIR", &c.LogDir)
	if getenv("DIS86_LOG_LEVEL") == "debug" {
		c.Debug = true
	}
	return errors.Join(
		boolean("DIS86_DEBUG", &c.Debug),
		boolean("DIS86_NO_COLOR", &c.NoColor),
	)
}

// Validate rejects settings no session could run with.
func (c Config) Validate() error {
	if c.Labels != "" && !slices.Contains(labels.Strategies, c.Labels) {
		return fmt.Errorf("labels: unknown strategy %q (want one of %v)", c.Labels, labels.Strategies)
	}
	if c.Input == "" {
		return errors.New("input: empty path")
	}
	return nil
}

// OutputPath resolves the destination for the listing of Input.
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return c.Input + ".asm"
}
