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

// Package golden provides a framework for writing file-based golden tests.
//
// A corpus is a directory of input files. Each input file is handed to a test
// function, which produces one string per configured output; each output is
// compared with the file named after the input plus the output's extension.
// A missing golden file is the same as an empty one.
//
// Setting the corpus's Refresh environment variable to a glob rewrites the
// golden files of every input matching it instead of comparing them.
package golden

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// Corpus describes a test data corpus.
type Corpus struct {
	// The root of the corpus, relative to the test's working directory.
	Root string
	// The name of an environment variable holding a glob. Inputs whose paths
	// match it have their golden files rewritten.
	Refresh string

	// File extensions, without the dot, of the input files.
	Extensions []string
	// The outputs each test produces.
	Outputs []Output
}

// Output is one output of a golden test.
type Output struct {
	// The extension, without the dot, appended to the input's path to form
	// the golden file's path.
	Extension string

	// The comparison function for this output. Defaults to [Diff].
	Compare Compare
}

// Compare is a comparison function between strings, used in [Output].
//
// Returns "" if the strings match, otherwise a description of the
// difference.
type Compare func(got, want string) string

// Run executes a golden test.
//
// test is run once per input file, in parallel subtests named after the
// file's path relative to Root. It must fill in outputs, which has one
// element per [Output]; elements left empty are compared with empty golden
// files.
func (c Corpus) Run(t *testing.T, test func(t *testing.T, path, text string, outputs []string)) {
	t.Helper()

	refresh := ""
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}

	paths := c.inputs(t)
	if len(paths) == 0 {
		t.Fatalf("golden: no inputs found in %q", c.Root)
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(c.Root, filepath.FromSlash(path))
			text, err := os.ReadFile(file)
			require.NoError(t, err)

			outputs := make([]string, len(c.Outputs))
			test(t, path, string(text), outputs)

			if refresh != "" {
				if ok, _ := doublestar.Match(refresh, path); ok {
					c.refresh(t, file, outputs)
					return
				}
			}
			c.compare(t, file, outputs)
		})
	}
}

func (c Corpus) inputs(t *testing.T) []string {
	t.Helper()

	root := os.DirFS(c.Root)
	var paths []string
	for _, ext := range c.Extensions {
		matches, err := doublestar.Glob(root, "**/*."+ext)
		require.NoError(t, err)
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}

func (c Corpus) compare(t *testing.T, file string, outputs []string) {
	t.Helper()

	for i, output := range c.Outputs {
		golden := file + "." + output.Extension
		want, err := os.ReadFile(golden)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("golden: reading %s: %v", golden, err)
			continue
		}

		compare := output.Compare
		if compare == nil {
			compare = Diff
		}
		if diff := compare(outputs[i], string(want)); diff != "" {
			t.Errorf("output mismatch for %s:\n%s", golden, diff)
		}
	}
}

func (c Corpus) refresh(t *testing.T, file string, outputs []string) {
	t.Helper()

	for i, output := range c.Outputs {
		golden := file + "." + output.Extension
		if outputs[i] == "" {
			if err := os.Remove(golden); err != nil && !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("golden: removing %s: %v", golden, err)
			}
			continue
		}
		if err := os.WriteFile(golden, []byte(outputs[i]), 0o600); err != nil {
			t.Errorf("golden: writing %s: %v", golden, err)
		}
	}
}

// Diff returns a unified diff from want to got, or "" if they are equal.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil || diff == "" {
		// Differences that are invisible to a line diff, such as a missing
		// final newline.
		return "want:\n" + want + "\ngot:\n" + got
	}
	return diff
}
