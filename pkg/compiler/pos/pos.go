// Package pos provides byte-offset spans and line/column resolution for
// compiler diagnostics. Every syntax node in the template and script trees
// carries a half-open [Start, End) span into the original source buffer.
package pos

import "sort"

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Offset returns the span shifted right by delta bytes.
func (s Span) Offset(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Position is a resolved 1-based line and column for a byte offset.
type Position struct {
	Line   int
	Column int
}

// Locator converts byte offsets into line/column positions for one source
// buffer. Line starts are computed once; lookups are binary searches.
type Locator struct {
	lineStarts []int
}

// NewLocator builds a locator for source.
func NewLocator(source string) *Locator {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Locator{lineStarts: starts}
}

// Locate resolves a byte offset into a 1-based line and column.
func (l *Locator) Locate(offset int) Position {
	line := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - l.lineStarts[line] + 1}
}
