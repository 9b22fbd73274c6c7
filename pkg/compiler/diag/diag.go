// Package diag defines the structured diagnostics produced by the compiler:
// fatal errors that abort a compilation, and warnings that are collected
// while compilation continues. Both carry a machine-readable code, a human
// message and a source span.
package diag

import (
	"fmt"

	"github.com/svelgo/svelgo/pkg/compiler/pos"
)

// Error is a fatal compilation error. The first Error raised aborts the
// compilation; there is no recovery or partial output.
type Error struct {
	Code     string
	Message  string
	Span     pos.Span
	Pos      pos.Position
	Filename string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s (%s)", e.Filename, e.Pos.Line, e.Pos.Column, e.Message, e.Code)
	}
	return fmt.Sprintf("%d:%d: %s (%s)", e.Pos.Line, e.Pos.Column, e.Message, e.Code)
}

// Warning is a non-fatal diagnostic. Warnings accumulate on the compilation
// and are reported alongside the result.
type Warning struct {
	Code     string
	Message  string
	Span     pos.Span
	Pos      pos.Position
	Filename string
}

// String renders the warning in file:line:col form.
func (w Warning) String() string {
	if w.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s (%s)", w.Filename, w.Pos.Line, w.Pos.Column, w.Message, w.Code)
	}
	return fmt.Sprintf("%d:%d: %s (%s)", w.Pos.Line, w.Pos.Column, w.Message, w.Code)
}

// Reporter resolves spans to positions and constructs diagnostics for one
// source buffer.
type Reporter struct {
	locator  *pos.Locator
	filename string
}

// NewReporter builds a reporter over source. filename may be empty.
func NewReporter(source, filename string) *Reporter {
	return &Reporter{locator: pos.NewLocator(source), filename: filename}
}

// Errorf constructs a fatal error at span.
func (r *Reporter) Errorf(code string, span pos.Span, format string, args ...interface{}) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Pos:      r.locator.Locate(span.Start),
		Filename: r.filename,
	}
}

// Warningf constructs a warning at span.
func (r *Reporter) Warningf(code string, span pos.Span, format string, args ...interface{}) Warning {
	return Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Pos:      r.locator.Locate(span.Start),
		Filename: r.filename,
	}
}

// Suppressions tracks per-code warning suppression as nested scopes. A
// svelte-ignore comment pushes a scope for the subtree it governs; popping
// restores the previous set exactly.
type Suppressions struct {
	stack []map[string]bool
}

// Push enters a suppression scope adding codes to the active set.
func (s *Suppressions) Push(codes []string) {
	next := make(map[string]bool, len(codes))
	for code := range s.active() {
		next[code] = true
	}
	for _, code := range codes {
		next[code] = true
	}
	s.stack = append(s.stack, next)
}

// Pop leaves the innermost suppression scope.
func (s *Suppressions) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Suppressed reports whether code is suppressed in the current scope.
func (s *Suppressions) Suppressed(code string) bool {
	return s.active()[code]
}

func (s *Suppressions) active() map[string]bool {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}
