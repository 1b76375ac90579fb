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

// Package stringsx contains extensions to Go's package strings.
package stringsx

import (
	"iter"
	"strings"
)

// Split is like [strings.Split], but returning an iterator instead of a slice.
func Split[Sep string | rune](s string, sep Sep) iter.Seq[string] {
	r := string(sep)
	return func(yield func(string) bool) {
		for {
			chunk, rest, found := strings.Cut(s, r)
			s = rest
			if !yield(chunk) || !found {
				return
			}
		}
	}
}

// Lines returns an iterator over the lines in the given string, with any
// trailing carriage return removed from each line.
//
// Unlike [strings.Lines], the line terminators are not yielded, and a string
// with n newlines always yields n+1 lines.
func Lines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range Split(s, '\n') {
			if !yield(strings.TrimSuffix(line, "\r")) {
				return
			}
		}
	}
}

// HasBareCR reports whether s contains a carriage return that is not
// immediately followed by a newline.
func HasBareCR(s string) bool {
	for {
		i := strings.IndexByte(s, '\r')
		if i < 0 {
			return false
		}
		if i+1 == len(s) || s[i+1] != '\n' {
			return true
		}
		s = s[i+2:]
	}
}

// HasLineBreak reports whether s contains a newline or carriage return.
func HasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\n\r")
}
