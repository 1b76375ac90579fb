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

// Package afmt provides the entry point for formatting documents described
// in layout notation.
//
// The work happens in phases, each of which lives in its own package:
//  1. Parse the notation into an AST.
//     Also see: notation.Parse
//  2. Compile the AST into a document, using a fresh doc.Builder.
//     Also see: notation.Compile
//  3. Render the document within the configured maximum width.
//     Also see: doc.Render
//
// # Formatter
//
// A [Formatter] runs all phases for many files at once, taking advantage of
// multiple CPU cores. Every file gets its own builder, so no mutable state is
// shared between files. A minimal Formatter, which reads files from the file
// system and uses the default configuration, is simply:
//
//	formatter := afmt.Formatter{}
//
// This Formatter uses default parallelism, equal to the number of CPU cores
// detected, and fails fast at the first error. Both can be customized with
// other fields.
package afmt
