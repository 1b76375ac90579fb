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

// Package arena defines an append-only Arena type addressed by compressed,
// index-based pointers.
//
// Arenas are used to hold large numbers of small immutable values that all
// share one lifetime, such as the nodes of a layout document. Values are
// never freed individually; the whole arena is dropped at once.
package arena

import (
	"fmt"
	"math/bits"
	"strings"
)

// slabShift is the log2 of the size of the first slab in an [Arena].
const (
	slabShift = 4
	slabMin   = 1 << slabShift
)

// Pointer is a compressed pointer into an [Arena][T].
//
// The value of a non-nil pointer is one plus the number of values allocated
// before it. The zero value is nil.
type Pointer[T any] uint32

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return p == 0
}

// In looks up this pointer in the given arena.
//
// a must be the arena that allocated p; otherwise the result is an arbitrary
// value or a panic. Panics if p is nil.
func (p Pointer[T]) In(a *Arena[T]) *T {
	return a.At(p)
}

// Arena is a slice-like collection of T whose elements never move once
// allocated.
//
// Storage is a table of slabs, each twice the size of the previous one, so
// that lookups stay O(1) while growth never copies existing values.
//
// A zero Arena is empty and ready to use.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(slabs[0]) == slabMin.
	// 2. cap(slabs[n]) == 2*cap(slabs[n-1]).
	// 3. len(slabs[n]) == cap(slabs[n]) for all but the last slab.
	slabs [][]T
}

// New allocates value on the arena and returns a pointer to it.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.slabs == nil {
		a.slabs = [][]T{make([]T, 0, slabMin)}
	}

	last := &a.slabs[len(a.slabs)-1]
	if len(*last) == cap(*last) {
		a.slabs = append(a.slabs, make([]T, 0, 2*cap(*last)))
		last = &a.slabs[len(a.slabs)-1]
	}

	*last = append(*last, value)
	if a.Len() > int(^uint32(0)) {
		panic("arena: too many values allocated")
	}
	return Pointer[T](a.Len())
}

// At dereferences p.
//
// Panics if p is nil or was not allocated by this arena.
func (a *Arena[T]) At(p Pointer[T]) *T {
	if p.Nil() {
		panic("arena: nil pointer dereference")
	}
	slab, idx := a.locate(int(p) - 1)
	return &a.slabs[slab][idx]
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	if len(a.slabs) == 0 {
		return 0
	}
	n := len(a.slabs) - 1
	return slabsLen(n) + len(a.slabs[n])
}

// String implements [fmt.Stringer]. Slab boundaries are shown with a |.
func (a *Arena[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, slab := range a.slabs {
		if i != 0 {
			b.WriteByte('|')
		}
		for j, v := range slab {
			if j != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteByte(']')
	return b.String()
}

// slabsLen returns the total capacity of the first n slabs.
//
// Because capacities double, slabMin + 2*slabMin + ... + 2^(n-1)*slabMin
// equals 2^n*slabMin - slabMin.
func slabsLen(n int) int {
	return max(0, slabMin<<n-slabMin)
}

// locate converts a zero-based index into slab coordinates, performing a
// bounds check.
func (a *Arena[T]) locate(idx int) (slab, offset int) {
	if idx < 0 || idx >= a.Len() {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", idx+1))
	}

	// Slab n starts at index (2^n - 1) * slabMin, so idx + slabMin lies in
	// [2^n * slabMin, 2^(n+1) * slabMin). Its bit length is therefore
	// n + slabShift + 1.
	slab = bits.Len(uint(idx)+slabMin) - slabShift - 1
	return slab, idx - slabsLen(slab)
}
