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
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result is the outcome of formatting one file.
type Result struct {
	Path   string // The notation file.
	Source string // The notation that was read.
	Output string // The rendered text.

	Target   string // Where Output belongs; see [Target].
	Previous string // The contents of Target before formatting, if any.
}

// Target returns the path that the rendering of the notation file at path is
// written to: path without its [Extension], or path plus ".out" if it does
// not have one.
func Target(path string) string {
	if target, ok := strings.CutSuffix(path, Extension); ok && target != "" {
		return target
	}
	return path + ".out"
}

// Changed returns whether writing Output to Target would change it.
func (r Result) Changed() bool {
	return r.Previous != r.Output
}

// Diff returns a unified diff from the target's contents to the output, or
// "" if there is no change.
func (r Result) Diff() (string, error) {
	if !r.Changed() {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Previous),
		B:        difflib.SplitLines(r.Output),
		FromFile: "a/" + r.Target,
		ToFile:   "b/" + r.Target,
		Context:  3,
	})
}
