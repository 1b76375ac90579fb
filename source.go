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

package afmt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/btree"
)

// Extension is the file extension of notation files, which [Expand] looks
// for in directories.
const Extension = ".afd"

// ErrNoMatch is returned by [Expand] for a glob that matches no files.
var ErrNoMatch = errors.New("no matching files")

// SourceAccessor opens the file at path for reading.
type SourceAccessor func(path string) (io.ReadCloser, error)

// SourceAccessorFromMap returns a SourceAccessor that serves the given file
// contents. Paths not in srcs report [os.ErrNotExist].
func SourceAccessorFromMap(srcs map[string]string) SourceAccessor {
	return func(path string) (io.ReadCloser, error) {
		src, ok := srcs[path]
		if !ok {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		return io.NopCloser(strings.NewReader(src)), nil
	}
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Expand turns command line arguments into a sorted, deduplicated list of
// files.
//
// Patterns may use doublestar globs, such as "src/**/*.afd". A pattern naming
// a directory stands for every notation file beneath it. Other patterns are
// kept as they are, whether or not they exist, so that reading them reports
// the error.
func Expand(patterns ...string) ([]string, error) {
	var paths btree.Set[string]
	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			pattern = filepath.Join(pattern, "**", "*"+Extension)
		} else if !hasMeta(pattern) {
			paths.Insert(filepath.Clean(pattern))
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
		}
		for _, match := range matches {
			paths.Insert(match)
		}
	}

	out := make([]string, 0, paths.Len())
	paths.Scan(func(path string) bool {
		out = append(out, path)
		return true
	})
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
