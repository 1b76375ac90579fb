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

// Package slicesx contains extensions to Go's package slices.
package slicesx

// Pop removes and returns the last element of *s, unless it is empty, in
// which case it returns the zero value and false.
//
// The popped slot is zeroed so that the backing array does not keep the
// value alive.
func Pop[S ~[]E, E any](s *S) (element E, ok bool) {
	n := len(*s)
	if n == 0 {
		return element, false
	}
	element = (*s)[n-1]
	var zero E
	(*s)[n-1] = zero
	*s = (*s)[:n-1]
	return element, true
}
