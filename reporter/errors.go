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

// Package reporter contains the types used for reporting errors and warnings
// about source files, together with their positions.
package reporter

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is a sentinel error that is returned when errors were
// reported for a source file, but the configured [Reporter] chose to continue
// rather than abort.
var ErrInvalidSource = errors.New("invalid source")

// SourcePos identifies a location in a source file.
type SourcePos struct {
	Filename string
	// Line and Col are 1-based. Col counts bytes.
	Line, Col int
}

// String returns the position in the usual file:line:col form. Parts that
// are unknown are omitted.
func (p SourcePos) String() string {
	switch {
	case p.Line <= 0:
		return p.Filename
	case p.Col <= 0:
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
	}
}

// ErrorWithPos is an error tied to a location in a source file.
//
// Error() is prefixed with the position; Unwrap() yields the bare cause.
type ErrorWithPos interface {
	error
	GetPosition() SourcePos
	Unwrap() error
}

// Error wraps err with a position.
func Error(pos SourcePos, err error) ErrorWithPos {
	return posError{at: pos, cause: err}
}

// Errorf is like [Error], but formats the underlying error.
func Errorf(pos SourcePos, format string, args ...any) ErrorWithPos {
	return Error(pos, fmt.Errorf(format, args...))
}

type posError struct {
	at    SourcePos
	cause error
}

func (e posError) Error() string {
	return e.at.String() + ": " + e.cause.Error()
}

// GetPosition implements [ErrorWithPos].
func (e posError) GetPosition() SourcePos {
	return e.at
}

// Unwrap implements [ErrorWithPos]. The returned error carries no location
// information.
func (e posError) Unwrap() error {
	return e.cause
}
