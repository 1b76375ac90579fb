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

package notation_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkozuchowski/afmt/doc"
	"github.com/pkozuchowski/afmt/internal/golden"
	"github.com/pkozuchowski/afmt/notation"
	"github.com/pkozuchowski/afmt/reporter"
)

func TestCorpus(t *testing.T) {
	t.Parallel()

	corpus := golden.Corpus{
		Root:       "testdata",
		Refresh:    "AFMT_REFRESH",
		Extensions: []string{"yaml"},
		Outputs: []golden.Output{
			{Extension: "txt"},
			{Extension: "err"},
		},
	}

	corpus.Run(t, func(t *testing.T, path, text string, outputs []string) {
		var testCase struct {
			Doc    string `yaml:"doc"`
			Widths []int  `yaml:"widths"`
			Indent int    `yaml:"indent"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(text), &testCase))
		if testCase.Indent == 0 {
			testCase.Indent = 2
		}
		if len(testCase.Widths) == 0 {
			testCase.Widths = []int{80}
		}

		b, err := doc.NewBuilder(testCase.Indent)
		require.NoError(t, err)

		var diags strings.Builder
		rep := reporter.NewReporter(
			func(err reporter.ErrorWithPos) error {
				fmt.Fprintf(&diags, "error: %v\n", err)
				return nil
			},
			func(err reporter.ErrorWithPos) {
				fmt.Fprintf(&diags, "warning: %v\n", err)
			},
		)

		d, err := notation.Compile(path, testCase.Doc, b, rep)
		outputs[1] = diags.String()
		if err != nil {
			assert.ErrorIs(t, err, reporter.ErrInvalidSource)
			return
		}

		var out strings.Builder
		for _, width := range testCase.Widths {
			fmt.Fprintf(&out, "=== width %d ===\n%s\n", width, doc.Render(d, width))
		}
		outputs[0] = out.String()
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	file, err := notation.Parse("test.afd", `let x = indent_by(2, "a", [nl, 3]) x`)
	require.NoError(t, err)

	str := func(s string) *notation.String {
		v := notation.String(s)
		return &v
	}
	num := func(n int) *int { return &n }
	ident := func(name string) *notation.Expr {
		return &notation.Expr{Call: &notation.Call{Name: name}}
	}

	want := &notation.File{Stmts: []*notation.Stmt{
		{Let: &notation.Let{
			Name: "x",
			Value: &notation.Expr{Call: &notation.Call{
				Name: "indent_by",
				Args: &notation.Args{Items: []*notation.Arg{
					{Value: &notation.Expr{Int: num(2)}},
					{Value: &notation.Expr{String: str("a")}},
					{Value: &notation.Expr{List: &notation.List{Items: []*notation.Expr{
						ident("nl"),
						{Int: num(3)},
					}}}},
				}},
			}},
		}},
		{Expr: ident("x")},
	}}

	if diff := cmp.Diff(want, file, cmpopts.IgnoreTypes(lexer.Position{})); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, file.Stmts[1].Expr.Pos.Line)
	assert.Equal(t, 36, file.Stmts[1].Expr.Pos.Column)
}

func TestParseError(t *testing.T) {
	t.Parallel()

	_, err := notation.Parse("bad.afd", "group(\n  \"a\",\n  )) ")
	require.Error(t, err)

	var ewp reporter.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, "bad.afd", ewp.GetPosition().Filename)
	assert.Equal(t, 3, ewp.GetPosition().Line)

	_, err = notation.Parse("bad.afd", `"unterminated`)
	require.Error(t, err)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, src string
		width     int
		want      string
	}{
		{"empty", "", 80, ""},
		{"string", `"a\nb"`, 80, "a\nb"},
		{"crlf string", `"a\r\nb"`, 80, "a\nb"},
		{"raw string", "indent(`x`, nl, `y`)", 80, "x\n  y"},
		{"text", `text("a") text("b")`, 80, "ab"},
		{"shared", `let ab = group(indent(maybeline, "a", softline, "b")) ab "|" ab`, 80, "a b|a b"},
		{"choice", `choice("flat", "broken")`, 3, "broken"},
		{"flat", `flat("a", softline, "b")`, 1, "a b"},
		{"dedent", `indent_by(4, nl, dedent("x", nl, "y"))`, 80, "\n    x\n  y"},
		{"empty surround", `surround([], open="(", close=")")`, 80, "()"},
		{"empty body", `body([], open="{", close="}")`, 80, "{}"},
		{"bracketless", `surround(["a", "b"], sep=",")`, 80, "a,b"},
		{"empty ident", `empty "x" empty`, 80, "x"},
		{"maybeline fill", `intersperse(["aa", "bb"], sep=tok(",", post=maybeline_fill))`, 4, "aa,\nbb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := doc.NewBuilder(2)
			require.NoError(t, err)
			d, err := notation.Compile("test.afd", tt.src, b, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Render(d, tt.width))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src, want string
	}{
		{`undefined_name`, "test.afd:1:1: undefined: undefined_name"},
		{`let nl = "x"`, "test.afd:1:1: cannot redefine predeclared nl"},
		{`let x = "a" x()`, "test.afd:1:13: x is not a function"},
		{`group`, "test.afd:1:1: group must be called"},
		{`text("a\nb")`, "test.afd:1:6: text cannot span lines; use a plain string instead"},
		{`text(1)`, "test.afd:1:6: expected string, found integer"},
		{`choice("a")`, "test.afd:1:1: choice expects 2 arguments, found 1"},
		{`indent_by()`, "test.afd:1:1: indent_by expects at least 1 arguments, found 0"},
		{`concat(x="a")`, "test.afd:1:10: unknown argument x in call to concat"},
		{`tok(pre=nl, "a")`, "test.afd:1:13: positional argument after named argument in call to tok"},
		{`tok("a", pre=nl, pre=nl)`, "test.afd:1:18: duplicate argument pre in call to tok"},
		{`tok("a\nb")`, "test.afd:1:5: token text cannot span lines"},
		{`surround(["a"], open="(")`, `test.afd:1:1: unbalanced brackets "(" and "" in call to surround`},
		{`body([blank, "a"], open="{", close="}")`, "test.afd:1:7: blank must follow a member"},
		{`concat(blank)`, "test.afd:1:8: blank is only allowed in body lists"},
		{`intersperse("a")`, "test.afd:1:13: expected list, found string"},
		{`["a"]`, "test.afd:1:1: expected document, found list"},
		{`intersperse(["a"], sep=nl)`, "test.afd:1:24: expected token, found document"},
		{`"a\rb"`, "test.afd:1:1: carriage return must be followed by a newline"},
		{`concat("a\rb")`, "test.afd:1:8: carriage return must be followed by a newline"},
		{`body(["x", "a\rb"], open="{", close="}")`, "test.afd:1:12: carriage return must be followed by a newline"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			b, err := doc.NewBuilder(2)
			require.NoError(t, err)
			_, err = notation.Compile("test.afd", tt.src, b, nil)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)

			var ewp reporter.ErrorWithPos
			assert.ErrorAs(t, err, &ewp)
		})
	}
}

func TestCompileWarnings(t *testing.T) {
	t.Parallel()

	var warnings []string
	rep := reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
		warnings = append(warnings, err.Error())
	})

	b, err := doc.NewBuilder(2)
	require.NoError(t, err)
	d, err := notation.Compile("w.afd", "let a = \"a\"\nlet b = \"b\"\nb", b, rep)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Render(d, 80))
	assert.Equal(t, []string{"w.afd:1:1: a declared and not used"}, warnings)
}
