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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkozuchowski/afmt/config"
)

func write(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())

	err := config.Config{MaxWidth: 0, IndentSize: 2}.Validate()
	require.ErrorIs(t, err, config.ErrInvalid)
	var fieldErr *config.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "max_width", fieldErr.Field)

	err = config.Config{MaxWidth: 80, IndentSize: -1}.Validate()
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "indent_size", fieldErr.Field)
	assert.Equal(t, -1, fieldErr.Value)
	assert.EqualError(t, err, "invalid configuration: indent_size must be positive, got -1")
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "afmt.toml")
	write(t, tomlPath, "max_width = 100\n")
	cfg, err := config.Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, config.Config{MaxWidth: 100, IndentSize: 2}, cfg)

	yamlPath := filepath.Join(dir, ".afmt.yaml")
	write(t, yamlPath, "indent_size: 4\n")
	cfg, err = config.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, config.Config{MaxWidth: 80, IndentSize: 4}, cfg)

	emptyPath := filepath.Join(dir, "empty.yaml")
	write(t, emptyPath, "")
	cfg, err = config.Load(emptyPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	badPath := filepath.Join(dir, "bad.toml")
	write(t, badPath, "max_width = 0\n")
	_, err = config.Load(badPath)
	assert.ErrorIs(t, err, config.ErrInvalid)

	unknownPath := filepath.Join(dir, "unknown.toml")
	write(t, unknownPath, "tab_width = 8\n")
	_, err = config.Load(unknownPath)
	assert.ErrorContains(t, err, "tab_width")

	unknownYAML := filepath.Join(dir, "unknown.yaml")
	write(t, unknownYAML, "tab_width: 8\n")
	_, err = config.Load(unknownYAML)
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := config.Find(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	write(t, filepath.Join(root, "a", ".afmt.yaml"), "max_width: 60\n")
	path, err = config.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", ".afmt.yaml"), path)

	// afmt.toml is preferred within the same directory.
	write(t, filepath.Join(root, "a", "afmt.toml"), "max_width = 60\n")
	path, err = config.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "afmt.toml"), path)

	// The closest directory wins.
	write(t, filepath.Join(nested, ".afmt.toml"), "")
	path, err = config.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, ".afmt.toml"), path)
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, config.FromEnv(&cfg, map[string]string{"AFMT_MAX_WIDTH": "120"}))
	assert.Equal(t, config.Config{MaxWidth: 120, IndentSize: 2}, cfg)

	require.NoError(t, config.FromEnv(&cfg, map[string]string{}))
	assert.Equal(t, config.Config{MaxWidth: 120, IndentSize: 2}, cfg)

	assert.Error(t, config.FromEnv(&cfg, map[string]string{"AFMT_INDENT_SIZE": "two"}))
	cfg = config.Default()
	assert.ErrorIs(t, config.FromEnv(&cfg, map[string]string{"AFMT_INDENT_SIZE": "0"}), config.ErrInvalid)
}
