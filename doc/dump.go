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
	"fmt"
	"strings"

	"github.com/pkozuchowski/afmt/internal/arena"
)

// Dump renders the structure of d in an HTML-like format. Intended for
// debugging.
//
// A compound node that is referenced more than once is printed in full the
// first time, tagged with an id, and as <ref id=N/> thereafter. The output is
// therefore linear in the number of distinct nodes, even though every
// [Builder.Group] refers to its contents twice.
func Dump(d Doc) string {
	p := dumper{refs: make(map[arena.Pointer[node]]int), ids: make(map[arena.Pointer[node]]int)}
	p.count(d)
	p.dump(d, 0)
	return p.out.String()
}

type dumper struct {
	out  strings.Builder
	refs map[arena.Pointer[node]]int // Reference counts of compound nodes.
	ids  map[arena.Pointer[node]]int // Ids of shared nodes already printed.
}

// compound reports whether d has children. Leaves are always printed
// inline.
func compound(d Doc) bool {
	switch d.Kind() {
	case KindFlat, KindIndent, KindDedent, KindAlign, KindConcat, KindChoice:
		return true
	default:
		return false
	}
}

// children yields the direct children of d in print order.
func children(d Doc, yield func(Doc)) {
	switch d.Kind() {
	case KindFlat, KindIndent, KindDedent, KindAlign:
		yield(d.Child())
	case KindConcat:
		for child := range d.Children() {
			yield(child)
		}
	case KindChoice:
		flat, broken := d.Alternatives()
		yield(flat)
		yield(broken)
	}
}

// count visits every distinct compound node once, recording how often it is
// referenced.
func (p *dumper) count(d Doc) {
	if !compound(d) {
		return
	}
	p.refs[d.ptr]++
	if p.refs[d.ptr] > 1 {
		return
	}
	children(d, p.count)
}

func (p *dumper) dump(d Doc, depth int) {
	indent := strings.Repeat("    ", depth)
	line := func(format string, args ...any) {
		p.out.WriteString(indent)
		fmt.Fprintf(&p.out, format, args...)
		p.out.WriteByte('\n')
	}

	var id string
	if compound(d) && p.refs[d.ptr] > 1 {
		if n, ok := p.ids[d.ptr]; ok {
			line("<ref id=%d/>", n)
			return
		}
		n := len(p.ids) + 1
		p.ids[d.ptr] = n
		id = fmt.Sprintf(" id=%d", n)
	}

	switch d.Kind() {
	case KindText:
		line("%q", d.Text())
	case KindNewline:
		line("<nl>")
	case KindNewlineNoIndent:
		line("<nl noindent>")
	case KindSoftline:
		line("<softline>")
	case KindMaybeline:
		line("<maybeline>")

	case KindFlat:
		line("<flat%s>", id)
		p.dump(d.Child(), depth+1)
		line("</flat>")

	case KindIndent, KindDedent, KindAlign:
		name := strings.ToLower(d.Kind().String())
		line("<%s by=%d%s>", name, d.Amount(), id)
		p.dump(d.Child(), depth+1)
		line("</%s>", name)

	case KindConcat:
		line("<concat%s>", id)
		for child := range d.Children() {
			p.dump(child, depth+1)
		}
		line("</concat>")

	case KindChoice:
		flat, broken := d.Alternatives()
		line("<choice%s>", id)
		p.dump(flat, depth+1)
		line("<or>")
		p.dump(broken, depth+1)
		line("</choice>")
	}
}
