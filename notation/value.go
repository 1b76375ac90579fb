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
	"github.com/pkozuchowski/afmt/doc"
	"github.com/pkozuchowski/afmt/reporter"
)

const (
	kindDoc kind = iota
	kindString
	kindInt
	kindList
	kindToken
	kindBlank
	kindInvalid
)

// kind is the type of a value in the notation.
type kind byte

func (k kind) String() string {
	switch k {
	case kindDoc:
		return "document"
	case kindString:
		return "string"
	case kindInt:
		return "integer"
	case kindList:
		return "list"
	case kindToken:
		return "token"
	case kindBlank:
		return "blank"
	default:
		return "invalid value"
	}
}

// value is the result of evaluating an expression.
//
// Values of kindInvalid are produced by expressions that already reported
// an error; using them reports nothing further.
type value struct {
	pos  reporter.SourcePos
	kind kind

	doc  doc.Doc
	str  string
	num  int
	list []value
	tok  doc.Token
}

func invalid(pos reporter.SourcePos) value {
	return value{pos: pos, kind: kindInvalid}
}
