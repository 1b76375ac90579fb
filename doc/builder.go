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

package doc

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/rivo/uniseg"

	"github.com/pkozuchowski/afmt/internal/arena"
	"github.com/pkozuchowski/afmt/internal/ext/stringsx"
)

// ErrInvalidIndent is returned (wrapped in an [*IndentError]) when a
// [Builder] is configured with an indentation unit smaller than one column.
var ErrInvalidIndent = errors.New("indent size must be at least 1")

// IndentError is returned by [NewBuilder] for an invalid indentation unit.
type IndentError struct {
	Size int
}

// Error implements [error].
func (e *IndentError) Error() string {
	return fmt.Sprintf("doc: invalid indent size %d: %v", e.Size, ErrInvalidIndent)
}

// Unwrap returns [ErrInvalidIndent].
func (e *IndentError) Unwrap() error {
	return ErrInvalidIndent
}

// Builder constructs documents.
//
// A Builder owns every node it creates; the documents it returns stay valid
// for as long as the builder is reachable. Documents from different builders
// must not be mixed.
//
// Every method returns a new document and leaves its arguments untouched.
// Methods panic when handed malformed input (text containing a line break,
// negative amounts, documents from another builder), naming the method at
// fault.
//
// A Builder must not be copied after first use, and is not safe for
// concurrent use.
type Builder struct {
	nodes      nodes
	indentSize int

	// Shared leaves. Nodes are immutable, so one of each suffices.
	empty, space, newline, newlineNoIndent, softline, maybeline arena.Pointer[node]
}

// NewBuilder returns a builder whose [Builder.Indent], [Builder.Dedent] and
// [Builder.Align] move by indentSize columns.
//
// Returns an [*IndentError] if indentSize is less than one.
func NewBuilder(indentSize int) (*Builder, error) {
	if indentSize < 1 {
		return nil, &IndentError{Size: indentSize}
	}
	return &Builder{indentSize: indentSize}, nil
}

// IndentSize returns the indentation unit of this builder.
func (b *Builder) IndentSize() int {
	return b.indentSize
}

// Len returns the number of nodes allocated by this builder.
func (b *Builder) Len() int {
	return b.nodes.Len()
}

// Empty returns the empty document. It is the zero [Doc].
func (b *Builder) Empty() Doc {
	return Doc{}
}

// Text returns a document that renders s verbatim.
//
// s must not contain a line break; use [Builder.Lines] for multi-line text.
// The display width of s is computed once, here.
func (b *Builder) Text(s string) Doc {
	if stringsx.HasLineBreak(s) {
		panic(fmt.Sprintf("doc: Text: text contains a line break: %q", s))
	}
	if s == "" {
		return b.doc(b.leaf(&b.empty, KindText))
	}
	if s == " " {
		if b.space.Nil() {
			b.space = b.nodes.New(node{kind: KindText, text: s, n: 1})
		}
		return b.doc(b.space)
	}
	return b.alloc(node{kind: KindText, text: s, n: uniseg.StringWidth(s)})
}

// Textf is like [Builder.Text], but formats its arguments first.
func (b *Builder) Textf(format string, args ...any) Doc {
	return b.Text(fmt.Sprintf(format, args...))
}

// Lines returns a document that renders each line of s as text, separated by
// [Builder.Newline]s. Carriage returns before newlines are dropped, and empty
// lines carry no indentation.
//
// Panics if s contains a carriage return that is not followed by a newline.
func (b *Builder) Lines(s string) Doc {
	if !stringsx.HasLineBreak(s) {
		return b.Text(s)
	}
	if stringsx.HasBareCR(s) {
		panic(fmt.Sprintf("doc: Lines: carriage return without newline: %q", s))
	}
	var parts []Doc
	for i, line := range slices.Collect(stringsx.Lines(s)) {
		switch {
		case i == 0:
		case line == "":
			parts = append(parts, b.NewlineNoIndent())
		default:
			parts = append(parts, b.Newline())
		}
		if line != "" {
			parts = append(parts, b.Text(line))
		}
	}
	return b.Concat(parts...)
}

// Newline returns a mandatory line break. The next line starts at the
// current indentation plus alignment.
func (b *Builder) Newline() Doc {
	return b.doc(b.leaf(&b.newline, KindNewline))
}

// NewlineNoIndent returns a mandatory line break after which the column is
// reset to zero. It is intended for blank separator lines, which must not
// carry trailing indentation.
func (b *Builder) NewlineNoIndent() Doc {
	return b.doc(b.leaf(&b.newlineNoIndent, KindNewlineNoIndent))
}

// Softline returns an optional break that renders as a single space when
// flat and as a [Builder.Newline] otherwise.
//
// The break follows the flat flag of its context rather than deciding on
// its own, so a softline outside any [Builder.Group] or [Builder.Flat]
// always breaks. For the self-deciding Choice(Text(" "), Newline) form, use
// [Builder.SoftlineFill].
func (b *Builder) Softline() Doc {
	return b.doc(b.leaf(&b.softline, KindSoftline))
}

// Maybeline returns an optional break that renders as nothing when flat and
// as a [Builder.Newline] otherwise.
//
// Like [Builder.Softline], it always breaks outside a flat context. The
// Choice(Text(""), Newline) form is [Builder.MaybelineFill].
func (b *Builder) Maybeline() Doc {
	return b.doc(b.leaf(&b.maybeline, KindMaybeline))
}

// Flat returns a document that renders d, and everything beneath it, in
// flat mode.
func (b *Builder) Flat(d Doc) Doc {
	b.own("Flat", d)
	if d.IsZero() || d.Kind() == KindFlat {
		return d
	}
	return b.alloc(node{kind: KindFlat, a: d.ptr})
}

// Indent adds one indentation unit to the block indentation of every line
// break inside d.
func (b *Builder) Indent(d Doc) Doc {
	return b.wrap("Indent", KindIndent, b.indentSize, d)
}

// IndentBy is like [Builder.Indent], but by n columns.
func (b *Builder) IndentBy(n int, d Doc) Doc {
	return b.wrap("IndentBy", KindIndent, n, d)
}

// Dedent removes one indentation unit from the block indentation of every
// line break inside d. The indentation never drops below zero.
func (b *Builder) Dedent(d Doc) Doc {
	return b.wrap("Dedent", KindDedent, b.indentSize, d)
}

// DedentBy is like [Builder.Dedent], but by n columns.
func (b *Builder) DedentBy(n int, d Doc) Doc {
	return b.wrap("DedentBy", KindDedent, n, d)
}

// Align adds one indentation unit to the alignment offset of every line
// break inside d.
//
// The alignment offset is tracked separately from block indentation: it is
// unaffected by [Builder.Dedent], and is used to line up continuation lines
// under a token rather than to nest blocks.
func (b *Builder) Align(d Doc) Doc {
	return b.wrap("Align", KindAlign, b.indentSize, d)
}

// AlignBy is like [Builder.Align], but by n columns.
func (b *Builder) AlignBy(n int, d Doc) Doc {
	return b.wrap("AlignBy", KindAlign, n, d)
}

// Concat returns a document that renders each of ds in order, with nothing
// in between.
func (b *Builder) Concat(ds ...Doc) Doc {
	return b.concat("Concat", slices.Values(ds))
}

// ConcatSeq is like [Builder.Concat], but takes an iterator.
func (b *Builder) ConcatSeq(ds iter.Seq[Doc]) Doc {
	return b.concat("ConcatSeq", ds)
}

// Choice returns the fundamental decision point: the renderer emits flat if
// it fits on the current line (or if the choice is already inside a flat
// context), and broken otherwise.
//
// The first line of flat must be no longer than the first line of broken.
// This is not checked; violating it makes for worse line breaking, but
// never for a failure.
func (b *Builder) Choice(flat, broken Doc) Doc {
	b.own("Choice", flat)
	b.own("Choice", broken)
	return b.alloc(node{kind: KindChoice, a: b.ref(flat), b: b.ref(broken)})
}

func (b *Builder) wrap(op string, kind Kind, n int, d Doc) Doc {
	if n < 0 {
		panic(fmt.Sprintf("doc: %s: negative amount %d", op, n))
	}
	b.own(op, d)
	if n == 0 || d.IsZero() {
		return d
	}
	return b.alloc(node{kind: kind, n: n, a: d.ptr})
}

func (b *Builder) concat(op string, ds iter.Seq[Doc]) Doc {
	var seq []arena.Pointer[node]
	for d := range ds {
		b.own(op, d)
		if !d.IsZero() {
			seq = append(seq, d.ptr)
		}
	}
	switch len(seq) {
	case 0:
		return Doc{}
	case 1:
		return b.doc(seq[0])
	default:
		return b.alloc(node{kind: KindConcat, seq: seq})
	}
}

// own panics if d was created by a different builder.
func (b *Builder) own(op string, d Doc) {
	if d.nodes != nil && d.nodes != &b.nodes {
		panic(fmt.Sprintf("doc: %s: document belongs to a different builder", op))
	}
}

// ref returns the node pointer for d, materializing the empty document for
// the zero Doc.
func (b *Builder) ref(d Doc) arena.Pointer[node] {
	if d.IsZero() {
		return b.leaf(&b.empty, KindText)
	}
	return d.ptr
}

func (b *Builder) leaf(p *arena.Pointer[node], kind Kind) arena.Pointer[node] {
	if p.Nil() {
		*p = b.nodes.New(node{kind: kind})
	}
	return *p
}

func (b *Builder) alloc(n node) Doc {
	return b.doc(b.nodes.New(n))
}

func (b *Builder) doc(p arena.Pointer[node]) Doc {
	return Doc{nodes: &b.nodes, ptr: p}
}
