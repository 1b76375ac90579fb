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

// Package doc is a document layout engine in the Wadler/Lindig tradition.
//
// A document is an immutable tree of layout primitives: literal text,
// mandatory and optional line breaks, indentation, alignment and choices
// between a flat and a broken alternative. Documents are built bottom-up with
// a [Builder], which owns every node it allocates, and turned into text with
// [Render], which picks one alternative for every choice so that lines stay
// within a maximum width whenever possible.
//
// The central combinator is [Builder.Group]: it offers the fully flattened
// rendering of a document, and falls back to the document's own layout when
// the flat rendering would overflow the current line. Combined with
// [Builder.Softline] and [Builder.Maybeline], which are a space or nothing
// when flat and a newline otherwise, this yields the familiar "fit on one
// line or break every element" behavior of code formatters.
//
// Rendering never recurses, so arbitrarily deep documents can be rendered
// without exhausting the goroutine stack.
package doc

import (
	"fmt"
	"iter"

	"github.com/pkozuchowski/afmt/internal/arena"
)

const (
	KindText            Kind = iota // See [Builder.Text].
	KindNewline                     // See [Builder.Newline].
	KindNewlineNoIndent             // See [Builder.NewlineNoIndent].
	KindSoftline                    // See [Builder.Softline].
	KindMaybeline                   // See [Builder.Maybeline].
	KindFlat                        // See [Builder.Flat].
	KindIndent                      // See [Builder.Indent].
	KindDedent                      // See [Builder.Dedent].
	KindAlign                       // See [Builder.Align].
	KindConcat                      // See [Builder.Concat].
	KindChoice                      // See [Builder.Choice].
)

// Kind is the variant of a document node.
type Kind byte

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindNewline:
		return "Newline"
	case KindNewlineNoIndent:
		return "NewlineNoIndent"
	case KindSoftline:
		return "Softline"
	case KindMaybeline:
		return "Maybeline"
	case KindFlat:
		return "Flat"
	case KindIndent:
		return "Indent"
	case KindDedent:
		return "Dedent"
	case KindAlign:
		return "Align"
	case KindConcat:
		return "Concat"
	case KindChoice:
		return "Choice"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// nodes is the arena that backs the documents of one [Builder].
type nodes = arena.Arena[node]

// node is a single document node. Nodes are never mutated once allocated.
type node struct {
	kind Kind
	text string

	// For KindText, the display width of text. For KindIndent, KindDedent
	// and KindAlign, the number of columns.
	n int

	// For KindFlat, KindIndent, KindDedent and KindAlign, a is the child.
	// For KindChoice, a is the flat alternative and b the broken one.
	a, b arena.Pointer[node]

	seq []arena.Pointer[node] // Used by KindConcat.
}

// Doc is a reference to an immutable document node.
//
// A Doc is a small value: copying it does not copy the document, and the
// same Doc may appear any number of times in other documents. A Doc is only
// valid together with documents from the [Builder] that created it, and only
// for as long as that builder is reachable.
//
// The zero Doc is the empty document, equivalent to Text("").
type Doc struct {
	nodes *nodes
	ptr   arena.Pointer[node]
}

// IsZero returns whether this is the zero Doc.
func (d Doc) IsZero() bool {
	return d.ptr.Nil()
}

// Kind returns the variant of this document's root node.
func (d Doc) Kind() Kind {
	if d.IsZero() {
		return KindText
	}
	return d.raw().kind
}

// Text returns the contents of a [KindText] document, or "" for any other
// kind.
func (d Doc) Text() string {
	if d.Kind() != KindText || d.IsZero() {
		return ""
	}
	return d.raw().text
}

// Width returns the display width of a [KindText] document, or zero for any
// other kind.
func (d Doc) Width() int {
	if d.Kind() != KindText || d.IsZero() {
		return 0
	}
	return d.raw().n
}

// Amount returns the number of columns of a [KindIndent], [KindDedent] or
// [KindAlign] document, or zero for any other kind.
func (d Doc) Amount() int {
	switch d.Kind() {
	case KindIndent, KindDedent, KindAlign:
		return d.raw().n
	default:
		return 0
	}
}

// Child returns the wrapped document of a [KindFlat], [KindIndent],
// [KindDedent] or [KindAlign] document, or the zero Doc for any other kind.
func (d Doc) Child() Doc {
	switch d.Kind() {
	case KindFlat, KindIndent, KindDedent, KindAlign:
		return d.wrap(d.raw().a)
	default:
		return Doc{}
	}
}

// Alternatives returns the flat and broken alternatives of a [KindChoice]
// document, or two zero Docs for any other kind.
func (d Doc) Alternatives() (flat, broken Doc) {
	if d.Kind() != KindChoice {
		return Doc{}, Doc{}
	}
	n := d.raw()
	return d.wrap(n.a), d.wrap(n.b)
}

// Children returns an iterator over the elements of a [KindConcat] document.
// For any other kind, it yields nothing.
func (d Doc) Children() iter.Seq[Doc] {
	return func(yield func(Doc) bool) {
		if d.Kind() != KindConcat {
			return
		}
		for _, p := range d.raw().seq {
			if !yield(d.wrap(p)) {
				return
			}
		}
	}
}

// String implements [fmt.Stringer] by dumping the document structure.
//
// See [Dump].
func (d Doc) String() string {
	return Dump(d)
}

func (d Doc) raw() *node {
	return d.ptr.In(d.nodes)
}

func (d Doc) wrap(p arena.Pointer[node]) Doc {
	return Doc{nodes: d.nodes, ptr: p}
}
