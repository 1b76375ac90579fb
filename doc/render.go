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
	"math"
	"slices"
	"strings"

	"github.com/pkozuchowski/afmt/internal/arena"
	"github.com/pkozuchowski/afmt/internal/ext/slicesx"
)

// spaces is used to write indentation without allocating.
const spaces = "                                                                "

// Render renders root, breaking lines so that they do not exceed maxWidth
// columns wherever the document allows it. A maxWidth of zero or less means
// unlimited width.
//
// Rendering is deterministic and cannot fail.
func Render(root Doc, maxWidth int) string {
	if root.IsZero() {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = math.MaxInt
	}

	r := renderer{
		nodes:    root.nodes,
		maxWidth: maxWidth,
		chunks:   []chunk{{ptr: root.ptr}},
	}
	r.render()
	return r.out.String()
}

// chunk is a pending document together with the context it inherits from
// its ancestors.
type chunk struct {
	ptr    arena.Pointer[node]
	indent int  // Block indentation.
	align  int  // Alignment offset, added to indent on each new line.
	flat   bool // Whether optional breaks collapse.
}

func (c chunk) with(p arena.Pointer[node]) chunk {
	c.ptr = p
	return c
}

// enter returns the chunk for the child of a wrapper node n.
func (c chunk) enter(n *node) chunk {
	c.ptr = n.a
	switch n.kind {
	case KindFlat:
		c.flat = true
	case KindIndent:
		c.indent += n.n
	case KindDedent:
		c.indent = max(0, c.indent-n.n)
	case KindAlign:
		c.align += n.n
	}
	return c
}

// renderer holds the state for rendering one document.
type renderer struct {
	nodes    *nodes
	maxWidth int

	column int
	chunks []chunk // Worklist; the top of the stack is rendered next.

	// Scratch stack for fits, retained across calls.
	lookahead []chunk

	out strings.Builder
}

func (r *renderer) render() {
	for {
		c, ok := slicesx.Pop(&r.chunks)
		if !ok {
			return
		}

		n := c.ptr.In(r.nodes)
		switch n.kind {
		case KindText:
			r.out.WriteString(n.text)
			r.column += n.n

		case KindNewline:
			r.newline(c.indent + c.align)

		case KindNewlineNoIndent:
			r.out.WriteByte('\n')
			r.column = 0

		case KindSoftline:
			if c.flat {
				r.out.WriteByte(' ')
				r.column++
			} else {
				r.newline(c.indent + c.align)
			}

		case KindMaybeline:
			if !c.flat {
				r.newline(c.indent + c.align)
			}

		case KindFlat, KindIndent, KindDedent, KindAlign:
			r.chunks = append(r.chunks, c.enter(n))

		case KindConcat:
			r.chunks = pushAll(r.chunks, c, n.seq)

		case KindChoice:
			switch {
			case c.flat, r.fits(c.with(n.a)):
				r.chunks = append(r.chunks, c.with(n.a))
			default:
				broken := c.with(n.b)
				broken.flat = false
				r.chunks = append(r.chunks, broken)
			}
		}
	}
}

// newline starts a new line indented by indent columns.
func (r *renderer) newline(indent int) {
	r.out.WriteByte('\n')
	r.column = indent
	for indent > 0 {
		n := min(indent, len(spaces))
		r.out.WriteString(spaces[:n])
		indent -= n
	}
}

// fits reports whether rendering candidate, followed by whatever is pending
// on the chunk stack, keeps the current line within the maximum width.
//
// The walk ends successfully at the first line break that would actually be
// emitted, or when there is nothing left to render. Choices met on the way
// resolve to their flat alternative in a flat context and to their broken
// alternative otherwise; this relies on the first line of a broken
// alternative being no shorter than that of the flat one.
//
// Each call is linear in the length of the current line's remainder, so a
// document can take quadratic time in the worst case.
func (r *renderer) fits(candidate chunk) bool {
	remaining := max(0, r.maxWidth-r.column)
	stack := append(r.lookahead[:0], candidate)
	rest := r.chunks
	defer func() { r.lookahead = stack[:0] }()

	for {
		c, ok := slicesx.Pop(&stack)
		if !ok {
			if len(rest) == 0 {
				return true
			}
			c = rest[len(rest)-1]
			rest = rest[:len(rest)-1]
		}

		n := c.ptr.In(r.nodes)
		switch n.kind {
		case KindText:
			if n.n > remaining {
				return false
			}
			remaining -= n.n

		case KindNewline, KindNewlineNoIndent:
			return true

		case KindSoftline:
			if !c.flat {
				return true
			}
			if remaining < 1 {
				return false
			}
			remaining--

		case KindMaybeline:
			if !c.flat {
				return true
			}

		case KindFlat, KindIndent, KindDedent, KindAlign:
			stack = append(stack, c.enter(n))

		case KindConcat:
			stack = pushAll(stack, c, n.seq)

		case KindChoice:
			if c.flat {
				stack = append(stack, c.with(n.a))
			} else {
				stack = append(stack, c.with(n.b))
			}
		}
	}
}

// pushAll pushes a chunk for each of seq onto stack, in reverse, so that
// they are popped in order.
func pushAll(stack []chunk, c chunk, seq []arena.Pointer[node]) []chunk {
	for _, p := range slices.Backward(seq) {
		stack = append(stack, c.with(p))
	}
	return stack
}
