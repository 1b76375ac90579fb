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

package notation

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pkozuchowski/afmt/doc"
	"github.com/pkozuchowski/afmt/internal/ext/stringsx"
	"github.com/pkozuchowski/afmt/reporter"
)

// builtins lists every predeclared name. They cannot be rebound by let.
var builtins = map[string]bool{
	// Identifiers.
	"nl": true, "nl_no_indent": true, "softline": true, "maybeline": true,
	"softline_fill": true, "maybeline_fill": true, "empty": true, "blank": true,

	// Functions.
	"text": true, "concat": true, "flat": true, "choice": true,
	"indent": true, "dedent": true, "align": true,
	"indent_by": true, "dedent_by": true, "align_by": true,
	"group": true, "group_indent": true, "tok": true,
	"intersperse": true, "surround": true, "body": true,
}

// Compile compiles the notation in src into a document allocated by b.
//
// Errors and warnings are sent to rep; a nil rep stops at the first error.
// If any error was reported, the returned error is non-nil: either the error
// returned by rep, or [reporter.ErrInvalidSource].
func Compile(filename, src string, b *doc.Builder, rep reporter.Reporter) (doc.Doc, error) {
	h := reporter.NewHandler(rep)
	file, err := Parse(filename, src)
	if err != nil {
		if err := h.HandleError(err); err != nil {
			return doc.Doc{}, err
		}
		return doc.Doc{}, h.Error()
	}

	c := &compiler{b: b, h: h, scope: make(map[string]*binding)}
	root := c.file(file)
	if err := h.Error(); err != nil {
		return doc.Doc{}, err
	}
	return root, nil
}

type compiler struct {
	b *doc.Builder
	h *reporter.Handler

	scope map[string]*binding
	order []*binding // In declaration order, for warnings.

	abort bool // Set once the reporter asks to stop.
}

type binding struct {
	name string
	pos  reporter.SourcePos
	val  value
	used bool
}

func (c *compiler) errorf(pos reporter.SourcePos, format string, args ...any) value {
	if err := c.h.HandleErrorf(pos, format, args...); err != nil {
		c.abort = true
	}
	return invalid(pos)
}

func (c *compiler) file(f *File) doc.Doc {
	var parts []doc.Doc
	for _, stmt := range f.Stmts {
		if c.abort {
			return doc.Doc{}
		}
		switch {
		case stmt.Let != nil:
			c.let(stmt.Let)
		case stmt.Expr != nil:
			parts = append(parts, c.asDoc(c.expr(stmt.Expr)))
		}
	}

	for _, bind := range c.order {
		if !bind.used {
			c.h.HandleWarningf(bind.pos, "%s declared and not used", bind.name)
		}
	}
	return c.b.Concat(parts...)
}

func (c *compiler) let(l *Let) {
	pos := position(l.Pos)
	if builtins[l.Name] {
		c.errorf(pos, "cannot redefine predeclared %s", l.Name)
		return
	}
	if prev, ok := c.scope[l.Name]; ok {
		c.errorf(pos, "%s redeclared; previous declaration at %v", l.Name, prev.pos)
		return
	}

	// The name is not in scope in its own definition.
	val := c.expr(l.Value)
	bind := &binding{name: l.Name, pos: pos, val: val}
	c.scope[l.Name] = bind
	c.order = append(c.order, bind)
}

func (c *compiler) expr(e *Expr) value {
	pos := position(e.Pos)
	switch {
	case e.String != nil:
		return value{pos: pos, kind: kindString, str: string(*e.String)}
	case e.Int != nil:
		return value{pos: pos, kind: kindInt, num: *e.Int}
	case e.List != nil:
		items := make([]value, 0, len(e.List.Items))
		for _, item := range e.List.Items {
			items = append(items, c.expr(item))
		}
		return value{pos: pos, kind: kindList, list: items}
	case e.Call != nil:
		return c.call(e.Call)
	default:
		return invalid(pos)
	}
}

// ident evaluates a name used without an argument list.
func (c *compiler) ident(pos reporter.SourcePos, name string) value {
	leaf := func(d doc.Doc) value {
		return value{pos: pos, kind: kindDoc, doc: d}
	}

	switch name {
	case "nl":
		return leaf(c.b.Newline())
	case "nl_no_indent":
		return leaf(c.b.NewlineNoIndent())
	case "softline":
		return leaf(c.b.Softline())
	case "maybeline":
		return leaf(c.b.Maybeline())
	case "softline_fill":
		return leaf(c.b.SoftlineFill())
	case "maybeline_fill":
		return leaf(c.b.MaybelineFill())
	case "empty":
		return leaf(c.b.Empty())
	case "blank":
		return value{pos: pos, kind: kindBlank}
	}

	if builtins[name] {
		return c.errorf(pos, "%s must be called", name)
	}
	bind, ok := c.scope[name]
	if !ok {
		return c.errorf(pos, "undefined: %s", name)
	}
	bind.used = true
	v := bind.val
	v.pos = pos
	return v
}

func (c *compiler) call(call *Call) value {
	pos := position(call.Pos)
	if call.Args == nil {
		return c.ident(pos, call.Name)
	}
	if !builtins[call.Name] {
		if _, ok := c.scope[call.Name]; ok {
			return c.errorf(pos, "%s is not a function", call.Name)
		}
		return c.errorf(pos, "undefined function: %s", call.Name)
	}

	a, ok := c.args(pos, call)
	if !ok {
		return invalid(pos)
	}

	switch call.Name {
	case "text":
		if !a.allow() || !a.arity(1, 1) {
			return invalid(pos)
		}
		v := a.positional[0]
		if v.kind != kindString {
			return c.mismatch(v, kindString)
		}
		if stringsx.HasLineBreak(v.str) {
			return c.errorf(v.pos, "text cannot span lines; use a plain string instead")
		}
		return c.build(pos, func() doc.Doc { return c.b.Text(v.str) })

	case "concat":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Concat(ds...) })
	case "flat":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Flat(c.b.Concat(ds...)) })
	case "indent":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Indent(c.b.Concat(ds...)) })
	case "dedent":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Dedent(c.b.Concat(ds...)) })
	case "align":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Align(c.b.Concat(ds...)) })
	case "group":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.Group(c.b.Concat(ds...)) })
	case "group_indent":
		return c.docs(a, func(ds []doc.Doc) doc.Doc { return c.b.GroupThenIndent(ds...) })

	case "indent_by":
		return c.by(a, c.b.IndentBy)
	case "dedent_by":
		return c.by(a, c.b.DedentBy)
	case "align_by":
		return c.by(a, c.b.AlignBy)

	case "choice":
		if !a.allow() || !a.arity(2, 2) {
			return invalid(pos)
		}
		flat, broken := c.asDoc(a.positional[0]), c.asDoc(a.positional[1])
		return c.build(pos, func() doc.Doc { return c.b.Choice(flat, broken) })

	case "tok":
		if !a.allow("pre", "post") || !a.arity(1, 1) {
			return invalid(pos)
		}
		v := a.positional[0]
		if v.kind != kindString {
			return c.mismatch(v, kindString)
		}
		if stringsx.HasLineBreak(v.str) {
			return c.errorf(v.pos, "token text cannot span lines")
		}
		return value{pos: pos, kind: kindToken, tok: doc.Token{
			Pre:  a.doc("pre"),
			Text: v.str,
			Post: a.doc("post"),
		}}

	case "intersperse":
		if !a.allow("sep") || !a.arity(1, 1) {
			return invalid(pos)
		}
		items, ok1 := c.itemDocs(a.positional[0])
		sep, ok2 := a.token("sep")
		if !ok1 || !ok2 {
			return invalid(pos)
		}
		return c.build(pos, func() doc.Doc { return c.b.Intersperse(items, sep) })

	case "surround":
		if !a.allow("sep", "open", "close") || !a.arity(1, 1) {
			return invalid(pos)
		}
		items, ok1 := c.itemDocs(a.positional[0])
		sep, ok2 := a.token("sep")
		open, close, ok3 := a.brackets()
		if !ok1 || !ok2 || !ok3 {
			return invalid(pos)
		}
		return c.build(pos, func() doc.Doc { return c.b.Surround(items, sep, open, close) })

	case "body":
		if !a.allow("open", "close") || !a.arity(1, 1) {
			return invalid(pos)
		}
		members, ok1 := c.members(a.positional[0])
		open, close, ok2 := a.brackets()
		if !ok1 || !ok2 {
			return invalid(pos)
		}
		return c.build(pos, func() doc.Doc { return c.b.SurroundBody(members, open, close) })
	}

	return c.errorf(pos, "undefined function: %s", call.Name)
}

// docs implements the functions that take any number of documents.
func (c *compiler) docs(a *args, f func([]doc.Doc) doc.Doc) value {
	if !a.allow() {
		return invalid(a.pos)
	}
	ds := make([]doc.Doc, 0, len(a.positional))
	for _, v := range a.positional {
		ds = append(ds, c.asDoc(v))
	}
	return c.build(a.pos, func() doc.Doc { return f(ds) })
}

// by implements the functions that take an amount followed by any number of
// documents.
func (c *compiler) by(a *args, f func(int, doc.Doc) doc.Doc) value {
	if !a.allow() || !a.arity(1, -1) {
		return invalid(a.pos)
	}
	n := a.positional[0]
	if n.kind != kindInt {
		return c.mismatch(n, kindInt)
	}
	ds := make([]doc.Doc, 0, len(a.positional)-1)
	for _, v := range a.positional[1:] {
		ds = append(ds, c.asDoc(v))
	}
	return c.build(a.pos, func() doc.Doc { return f(n.num, c.b.Concat(ds...)) })
}

// build calls f, turning a panic from the builder into an error at pos.
func (c *compiler) build(pos reporter.SourcePos, f func() doc.Doc) (v value) {
	defer func() {
		if r := recover(); r != nil {
			v = c.errorf(pos, "%v", r)
		}
	}()
	return value{pos: pos, kind: kindDoc, doc: f()}
}

func (c *compiler) mismatch(v value, want kind) value {
	if v.kind == kindInvalid {
		return v
	}
	return c.errorf(v.pos, "expected %v, found %v", want, v.kind)
}

func (c *compiler) asDoc(v value) doc.Doc {
	switch v.kind {
	case kindDoc:
		return v.doc
	case kindString:
		if stringsx.HasBareCR(v.str) {
			c.errorf(v.pos, "carriage return must be followed by a newline")
			return doc.Doc{}
		}
		return c.build(v.pos, func() doc.Doc { return c.b.Lines(v.str) }).doc
	case kindBlank:
		c.errorf(v.pos, "blank is only allowed in body lists")
	default:
		c.mismatch(v, kindDoc)
	}
	return doc.Doc{}
}

func (c *compiler) asToken(v value) (doc.Token, bool) {
	switch v.kind {
	case kindToken:
		return v.tok, true
	case kindString:
		if stringsx.HasLineBreak(v.str) {
			c.errorf(v.pos, "token text cannot span lines")
			return doc.Token{}, false
		}
		return doc.Tok(v.str), true
	default:
		c.mismatch(v, kindToken)
		return doc.Token{}, false
	}
}

func (c *compiler) itemDocs(v value) ([]doc.Doc, bool) {
	if v.kind != kindList {
		c.mismatch(v, kindList)
		return nil, false
	}
	ds := make([]doc.Doc, 0, len(v.list))
	for _, item := range v.list {
		ds = append(ds, c.asDoc(item))
	}
	return ds, true
}

func (c *compiler) members(v value) ([]doc.Member, bool) {
	if v.kind != kindList {
		c.mismatch(v, kindList)
		return nil, false
	}
	var members []doc.Member
	for _, item := range v.list {
		if item.kind == kindBlank {
			if len(members) == 0 {
				c.errorf(item.pos, "blank must follow a member")
				continue
			}
			members[len(members)-1].BlankLineAfter = true
			continue
		}
		members = append(members, doc.Member{Doc: c.asDoc(item)})
	}
	return members, true
}

// args is an evaluated argument list.
type args struct {
	c    *compiler
	name string
	pos  reporter.SourcePos

	positional []value
	named      map[string]value
}

func (c *compiler) args(pos reporter.SourcePos, call *Call) (*args, bool) {
	a := &args{c: c, name: call.Name, pos: pos}
	ok := true
	for _, arg := range call.Args.Items {
		v := c.expr(arg.Value)
		if arg.Name == "" {
			if len(a.named) > 0 {
				c.errorf(position(arg.Pos), "positional argument after named argument in call to %s", call.Name)
				ok = false
			}
			a.positional = append(a.positional, v)
			continue
		}

		if _, dup := a.named[arg.Name]; dup {
			c.errorf(position(arg.Pos), "duplicate argument %s in call to %s", arg.Name, call.Name)
			ok = false
			continue
		}
		if a.named == nil {
			a.named = make(map[string]value)
		}
		a.named[arg.Name] = v
	}
	return a, ok
}

// allow reports an error for every named argument not in names.
func (a *args) allow(names ...string) bool {
	ok := true
	for _, name := range slices.Sorted(maps.Keys(a.named)) {
		if slices.Contains(names, name) {
			continue
		}
		a.c.errorf(a.named[name].pos, "unknown argument %s in call to %s", name, a.name)
		ok = false
	}
	return ok
}

// arity checks the number of positional arguments. A negative hi means no
// upper bound.
func (a *args) arity(lo, hi int) bool {
	n := len(a.positional)
	if n >= lo && (hi < 0 || n <= hi) {
		return true
	}

	var want string
	switch {
	case lo == hi:
		want = fmt.Sprint(lo)
	case hi < 0:
		want = fmt.Sprintf("at least %d", lo)
	default:
		want = fmt.Sprintf("%d to %d", lo, hi)
	}
	a.c.errorf(a.pos, "%s expects %s arguments, found %d", a.name, want, n)
	return false
}

// doc returns the named argument as a document. Missing arguments are empty.
func (a *args) doc(name string) doc.Doc {
	v, ok := a.named[name]
	if !ok {
		return doc.Doc{}
	}
	return a.c.asDoc(v)
}

// token returns the named argument as a token. Missing arguments are empty.
func (a *args) token(name string) (doc.Token, bool) {
	v, ok := a.named[name]
	if !ok {
		return doc.Token{}, true
	}
	return a.c.asToken(v)
}

// brackets returns the open and close arguments, which must either both or
// neither have text.
func (a *args) brackets() (open, close doc.Token, ok bool) {
	open, ok1 := a.token("open")
	close, ok2 := a.token("close")
	if !ok1 || !ok2 {
		return open, close, false
	}
	if (open.Text == "") != (close.Text == "") {
		a.c.errorf(a.pos, "unbalanced brackets %q and %q in call to %s", open.Text, close.Text, a.name)
		return open, close, false
	}
	return open, close, true
}
