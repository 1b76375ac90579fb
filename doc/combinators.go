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
	"slices"

	"github.com/pkozuchowski/afmt/internal/ext/stringsx"
)

// Token is a literal piece of text with optional documents rendered
// immediately before and after it.
//
// Tokens are used for separators and brackets, where the line breaking
// around the literal matters as much as the literal itself: a closing
// bracket is typically Token{Pre: b.Maybeline(), Text: ")"}.
type Token struct {
	Pre  Doc
	Text string
	Post Doc
}

// Tok returns a token with no surrounding documents.
func Tok(text string) Token {
	return Token{Text: text}
}

// Member is one member of a block body laid out by [Builder.SurroundBody].
type Member struct {
	Doc Doc
	// If set, a blank line separates this member from the next one.
	BlankLineAfter bool
}

// Group returns Choice(Flat(d), d): the fully flattened rendering of d if it
// fits, and d's own layout otherwise.
func (b *Builder) Group(d Doc) Doc {
	b.own("Group", d)
	if d.IsZero() {
		return d
	}
	return b.Choice(b.Flat(d), d)
}

// GroupThenIndent groups the indented concatenation of ds.
func (b *Builder) GroupThenIndent(ds ...Doc) Doc {
	return b.Group(b.Indent(b.concat("GroupThenIndent", slices.Values(ds))))
}

// SoftlineFill returns Choice(Text(" "), Newline): a break that is only
// taken when the text up to the next break does not fit.
//
// Unlike [Builder.Softline], which breaks whenever it is not in a flat
// context, a sequence of fill breaks packs as much as possible on each line.
func (b *Builder) SoftlineFill() Doc {
	return b.Choice(b.Text(" "), b.Newline())
}

// MaybelineFill is like [Builder.SoftlineFill], but renders as nothing
// rather than a space when the break is not taken.
func (b *Builder) MaybelineFill() Doc {
	return b.Choice(b.Text(""), b.Newline())
}

// Intersperse places sep between each pair of consecutive items.
//
// Returns the empty document if items is empty.
func (b *Builder) Intersperse(items []Doc, sep Token) Doc {
	b.checkToken("Intersperse", "separator", sep)
	return b.intersperse("Intersperse", items, sep)
}

// Surround intersperses items with sep and wraps the result in the open and
// close tokens.
//
// If items is empty, the result is the text of open immediately followed by
// the text of close, without any of their surrounding documents.
//
// Panics if exactly one of open and close has text.
func (b *Builder) Surround(items []Doc, sep, open, close Token) Doc {
	b.checkToken("Surround", "separator", sep)
	b.checkBrackets("Surround", open, close)
	if len(items) == 0 {
		return b.Text(open.Text + close.Text)
	}
	return b.Concat(
		b.token(open),
		b.intersperse("Surround", items, sep),
		b.token(close),
	)
}

// SurroundBody lays out a block body: each member on its own line, indented
// by one unit, between the open and close tokens. Members marked with
// BlankLineAfter are followed by a blank line, except for the last one.
//
// If members is empty, the result is the text of open immediately followed
// by the text of close.
//
// Panics if exactly one of open and close has text.
func (b *Builder) SurroundBody(members []Member, open, close Token) Doc {
	b.checkBrackets("SurroundBody", open, close)
	if len(members) == 0 {
		return b.Text(open.Text + close.Text)
	}

	body := make([]Doc, 0, 3*len(members))
	for i, m := range members {
		b.own("SurroundBody", m.Doc)
		body = append(body, b.Newline(), m.Doc)
		if m.BlankLineAfter && i < len(members)-1 {
			body = append(body, b.NewlineNoIndent())
		}
	}

	return b.Concat(
		b.token(open),
		b.Indent(b.Concat(body...)),
		b.Newline(),
		b.token(close),
	)
}

func (b *Builder) intersperse(op string, items []Doc, sep Token) Doc {
	if len(items) == 0 {
		return Doc{}
	}

	sepDoc := b.token(sep)
	parts := make([]Doc, 0, 2*len(items)-1)
	for i, item := range items {
		b.own(op, item)
		if i > 0 {
			parts = append(parts, sepDoc)
		}
		parts = append(parts, item)
	}
	return b.Concat(parts...)
}

// token returns the document for t.
func (b *Builder) token(t Token) Doc {
	var text Doc
	if t.Text != "" {
		text = b.Text(t.Text)
	}
	return b.Concat(t.Pre, text, t.Post)
}

func (b *Builder) checkToken(op, what string, t Token) {
	if stringsx.HasLineBreak(t.Text) {
		panic(fmt.Sprintf("doc: %s: %s text contains a line break: %q", op, what, t.Text))
	}
	b.own(op, t.Pre)
	b.own(op, t.Post)
}

func (b *Builder) checkBrackets(op string, open, close Token) {
	b.checkToken(op, "open", open)
	b.checkToken(op, "close", close)
	if (open.Text == "") != (close.Text == "") {
		panic(fmt.Sprintf("doc: %s: unbalanced brackets %q and %q", op, open.Text, close.Text))
	}
}
