// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the layout configuration of the formatter.
//
// Configuration is layered: [Default] values, then a configuration file
// found with [Find] and read with [Load], then environment variables read
// with [FromEnv]. Command line flags, if any, go on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxWidth   = 80
	DefaultIndentSize = 2
)

// FileNames are the names [Find] looks for, in order of preference.
var FileNames = []string{"afmt.toml", ".afmt.toml", ".afmt.yaml"}

// ErrInvalid is wrapped by every [*FieldError].
var ErrInvalid = errors.New("invalid configuration")

// Config is the layout configuration.
type Config struct {
	// The column limit that rendering tries to stay within.
	MaxWidth int `toml:"max_width" yaml:"max_width" env:"AFMT_MAX_WIDTH"`
	// The number of columns of one indentation level.
	IndentSize int `toml:"indent_size" yaml:"indent_size" env:"AFMT_INDENT_SIZE"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxWidth:   DefaultMaxWidth,
		IndentSize: DefaultIndentSize,
	}
}

// FieldError is returned by [Config.Validate] for a field with an invalid
// value.
type FieldError struct {
	Field string // The name of the field in configuration files.
	Value int
}

// Error implements [error].
func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s must be positive, got %d", ErrInvalid, e.Field, e.Value)
}

// Unwrap returns [ErrInvalid].
func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Validate checks that every field has a usable value.
func (c Config) Validate() error {
	if c.MaxWidth < 1 {
		return &FieldError{Field: "max_width", Value: c.MaxWidth}
	}
	if c.IndentSize < 1 {
		return &FieldError{Field: "indent_size", Value: c.IndentSize}
	}
	return nil
}

// Load reads the configuration file at path on top of [Default], and
// validates the result. The format is chosen by the file's extension: YAML
// for .yaml and .yml, TOML otherwise.
//
// Keys missing from the file keep their default values; unknown keys are an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("parsing %s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find searches for a configuration file starting from dir and walking up to
// parent directories, stopping at the root of a git repository. Returns "" if
// there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		// Stop at .git boundary.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// FromEnv overlays the AFMT_* variables in environ onto cfg, and validates
// the result. A nil environ means the process environment.
func FromEnv(cfg *Config, environ map[string]string) error {
	if err := env.Parse(cfg, env.Options{Environment: environ}); err != nil {
		return err
	}
	return cfg.Validate()
}
