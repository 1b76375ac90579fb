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

package doc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkozuchowski/afmt/doc"
)

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1, -8} {
		b, err := doc.NewBuilder(size)
		assert.Nil(t, b)
		require.Error(t, err)
		assert.ErrorIs(t, err, doc.ErrInvalidIndent)

		var indentErr *doc.IndentError
		require.True(t, errors.As(err, &indentErr))
		assert.Equal(t, size, indentErr.Size)
	}

	b, err := doc.NewBuilder(4)
	require.NoError(t, err)
	assert.Equal(t, 4, b.IndentSize())
	assert.Equal(t, 0, b.Len())
}

func TestAccessors(t *testing.T) {
	t.Parallel()
	b := newBuilder(t)

	var zero doc.Doc
	assert.True(t, zero.IsZero())
	assert.True(t, b.Empty().IsZero())
	assert.Equal(t, doc.KindText, zero.Kind())
	assert.Equal(t, "", zero.Text())
	assert.Equal(t, "", doc.Render(zero, 80))

	text := b.Text("hello")
	assert.Equal(t, doc.KindText, text.Kind())
	assert.Equal(t, "hello", text.Text())
	assert.Equal(t, 5, text.Width())

	indent := b.IndentBy(3, text)
	assert.Equal(t, doc.KindIndent, indent.Kind())
	assert.Equal(t, 3, indent.Amount())
	assert.Equal(t, "hello", indent.Child().Text())
	assert.Equal(t, 0, text.Amount())
	assert.True(t, text.Child().IsZero())

	group := b.Group(text)
	require.Equal(t, doc.KindChoice, group.Kind())
	flat, broken := group.Alternatives()
	assert.Equal(t, doc.KindFlat, flat.Kind())
	assert.Equal(t, "hello", broken.Text())

	concat := b.Concat(text, zero, b.Newline(), text)
	require.Equal(t, doc.KindConcat, concat.Kind())
	var kinds []doc.Kind
	for child := range concat.Children() {
		kinds = append(kinds, child.Kind())
	}
	assert.Equal(t, []doc.Kind{doc.KindText, doc.KindNewline, doc.KindText}, kinds)

	assert.Equal(t, "Softline", doc.KindSoftline.String())
	assert.Equal(t, "Kind(200)", doc.Kind(200).String())
}

func TestSimplifications(t *testing.T) {
	t.Parallel()
	b := newBuilder(t)

	text := b.Text("x")
	assert.True(t, b.Concat().IsZero())
	assert.True(t, b.Concat(doc.Doc{}, doc.Doc{}).IsZero())
	assert.Equal(t, text, b.Concat(doc.Doc{}, text))
	assert.Equal(t, text, b.IndentBy(0, text))
	assert.Equal(t, text, b.AlignBy(0, text))
	assert.True(t, b.Indent(doc.Doc{}).IsZero())
	assert.True(t, b.Group(doc.Doc{}).IsZero())

	flat := b.Flat(text)
	assert.Equal(t, flat, b.Flat(flat))

	assert.Equal(t, b.Newline(), b.Newline())
	assert.Equal(t, b.Text(" "), b.Text(" "))

	before := b.Len()
	b.Softline()
	b.Maybeline()
	b.Softline()
	assert.LessOrEqual(t, b.Len()-before, 2)
}

func TestBuilderPanics(t *testing.T) {
	t.Parallel()
	b := newBuilder(t)
	other := newBuilder(t)

	assert.PanicsWithValue(t, `doc: Text: text contains a line break: "a\nb"`, func() { b.Text("a\nb") })
	assert.Panics(t, func() { b.Text("a\rb") })
	assert.Panics(t, func() { b.Textf("%s\n", "x") })
	assert.PanicsWithValue(t, `doc: Lines: carriage return without newline: "a\rb"`, func() { b.Lines("a\rb") })
	assert.NotPanics(t, func() { b.Lines("a\r\nb") })
	assert.PanicsWithValue(t, "doc: IndentBy: negative amount -1", func() { b.IndentBy(-1, b.Text("x")) })
	assert.Panics(t, func() { b.DedentBy(-2, b.Text("x")) })
	assert.Panics(t, func() { b.AlignBy(-3, b.Text("x")) })
	assert.PanicsWithValue(t, "doc: Concat: document belongs to a different builder", func() {
		b.Concat(b.Text("x"), other.Text("y"))
	})
	assert.Panics(t, func() { b.Choice(other.Text("a"), b.Text("b")) })

	sep := doc.Tok(",")
	assert.PanicsWithValue(t, `doc: Surround: unbalanced brackets "(" and ""`, func() {
		b.Surround([]doc.Doc{b.Text("x")}, sep, doc.Tok("("), doc.Tok(""))
	})
	assert.Panics(t, func() {
		b.SurroundBody(nil, doc.Tok(""), doc.Tok("}"))
	})
	assert.Panics(t, func() {
		b.Intersperse([]doc.Doc{b.Text("x")}, doc.Tok(";\n"))
	})

	// Bracketless surround is allowed.
	d := b.Surround([]doc.Doc{b.Text("a"), b.Text("b")}, sep, doc.Tok(""), doc.Tok(""))
	assert.Equal(t, "a,b", doc.Render(d, 80))
}
