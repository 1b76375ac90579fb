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

package reporter

import (
	"sync"
)

// ErrorReporter receives each error found in a source file. Returning a
// non-nil error stops compiling that file; returning nil lets the compiler
// keep going and report more.
type ErrorReporter func(ErrorWithPos) error

// WarningReporter receives each warning found in a source file.
type WarningReporter func(ErrorWithPos)

// Reporter receives the errors and warnings found in source files.
type Reporter interface {
	Error(ErrorWithPos) error
	Warning(ErrorWithPos)
}

// NewReporter returns a Reporter built from the given functions. A nil errs
// aborts on the first error; a nil warnings drops warnings.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return funcReporter{onError: errs, onWarning: warnings}
}

type funcReporter struct {
	onError   ErrorReporter
	onWarning WarningReporter
}

func (r funcReporter) Error(e ErrorWithPos) error {
	if r.onError != nil {
		return r.onError(e)
	}
	return e
}

func (r funcReporter) Warning(w ErrorWithPos) {
	if r.onWarning == nil {
		return
	}
	r.onWarning(w)
}

// Handler funnels the reports for one source file into a [Reporter]. It is
// safe for concurrent use, and remembers the first error that ended the
// compilation.
type Handler struct {
	rep Reporter

	lock     sync.Mutex
	reported bool  // Set once any positioned error reaches rep.
	err      error // Sticky.
}

// NewHandler returns a handler reporting to rep. A nil rep aborts on the
// first error.
func NewHandler(rep Reporter) *Handler {
	h := &Handler{rep: rep}
	if h.rep == nil {
		h.rep = funcReporter{}
	}
	return h
}

// HandleErrorf reports a positioned error. It returns non-nil if compilation
// must stop.
func (h *Handler) HandleErrorf(pos SourcePos, format string, args ...any) error {
	return h.HandleError(Errorf(pos, format, args...))
}

// HandleError reports err. Errors without a position are not passed to the
// reporter and always stop compilation.
func (h *Handler) HandleError(err error) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.err == nil {
		if pos, ok := err.(ErrorWithPos); ok {
			h.reported = true
			err = h.rep.Error(pos)
		}
		h.err = err
	}
	return h.err
}

// HandleWarningf reports a positioned warning.
func (h *Handler) HandleWarningf(pos SourcePos, format string, args ...any) {
	// Warnings do not touch the handler's state.
	h.rep.Warning(Errorf(pos, format, args...))
}

// Error returns the error that compilation ended with: the one returned by
// the reporter, or [ErrInvalidSource] if errors were reported but the
// reporter let them pass.
func (h *Handler) Error() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	switch {
	case h.err != nil:
		return h.err
	case h.reported:
		return ErrInvalidSource
	default:
		return nil
	}
}

// ReporterError returns the error returned by the reporter, if any.
func (h *Handler) ReporterError() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.err
}
