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
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pkozuchowski/afmt/reporter"
)

var (
	notationLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `(?://|#)[^\n]*`},
		{Name: "String", Pattern: "\"(?:\\\\.|[^\"\\\\\\n])*\"|`[^`]*`"},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Symbol", Pattern: `[][(),=]`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(notationLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
)

// File is the root of a parsed notation file.
type File struct {
	Pos   lexer.Position
	Stmts []*Stmt `parser:"@@*"`
}

// Stmt is either a let binding or an expression that contributes to the
// root document.
type Stmt struct {
	Let  *Let  `parser:"  @@"`
	Expr *Expr `parser:"| @@"`
}

// Let binds a name to the value of an expression.
type Let struct {
	Pos   lexer.Position
	Name  string `parser:"'let' @Ident '='"`
	Value *Expr  `parser:"@@"`
}

// Expr is a single expression.
type Expr struct {
	Pos    lexer.Position
	String *String `parser:"  @String"`
	Int    *int    `parser:"| @Int"`
	List   *List   `parser:"| @@"`
	Call   *Call   `parser:"| @@"`
}

// List is a bracketed list of expressions. Commas are optional.
type List struct {
	Pos   lexer.Position
	Items []*Expr `parser:"'[' ( @@ ','? )* ']'"`
}

// Call is an identifier, optionally followed by a parenthesized argument
// list.
type Call struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
	Args *Args  `parser:"@@?"`
}

// Args is the argument list of a [Call].
type Args struct {
	Items []*Arg `parser:"'(' ( @@ ','? )* ')'"`
}

// Arg is a positional or named argument.
type Arg struct {
	Pos   lexer.Position
	Name  string `parser:"( @Ident '=' )?"`
	Value *Expr  `parser:"@@"`
}

// String is an unquoted string literal. Both interpreted and raw Go string
// syntax are accepted.
type String string

// Capture implements participle.Capture.
func (s *String) Capture(values []string) error {
	if len(values) == 0 {
		return errors.New("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return fmt.Errorf("invalid string literal %s", values[0])
	}
	*s = String(val)
	return nil
}

// Parse parses a notation file.
//
// Syntax errors are returned as a [reporter.ErrorWithPos].
func Parse(filename, src string) (*File, error) {
	file, err := fileParser.ParseString(filename, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, reporter.Error(position(perr.Position()), errors.New(perr.Message()))
		}
		return nil, err
	}
	return file, nil
}

func position(p lexer.Position) reporter.SourcePos {
	return reporter.SourcePos{Filename: p.Filename, Line: p.Line, Col: p.Column}
}
