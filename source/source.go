// Package source defines grammar description source with line and column lookup.
package source

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// Source holds named grammar description text.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates new source. Content must not be modified afterwards.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content}
	s.lineStarts = make([]int, 1, bytes.Count(content, []byte("\n"))+1)
	for i, b := range content {
		if b == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// Name returns source name.
func (s *Source) Name() string {
	return s.name
}

// Content returns source content.
func (s *Source) Content() []byte {
	return s.content
}

// Len returns content length in bytes.
func (s *Source) Len() int {
	return len(s.content)
}

// LineCol converts byte offset to 1-based line and column (in runes).
// Offsets outside content are clamped.
func (s *Source) LineCol(pos int) (line, col int) {
	if pos < 0 {
		pos = 0
	} else if pos > len(s.content) {
		pos = len(s.content)
	}

	lineIndex := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > pos
	}) - 1
	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

// Pos converts 1-based line and column to byte offset. Returns 0 for non-positive arguments.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.content)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1]
	for ; col > 1 && res < l && s.content[res] != '\n'; col-- {
		_, size := utf8.DecodeRune(s.content[res:])
		res += size
	}
	return res
}

// Pos is a position in source, it implements lrx.SourcePos.
type Pos struct {
	src             *Source
	pos, line, col int
}

// NewPos creates position for byte offset in source.
func NewPos(s *Source, pos int) Pos {
	line, col := s.LineCol(pos)
	return Pos{s, pos, line, col}
}

// Source returns the source or nil.
func (p Pos) Source() *Source {
	return p.src
}

// SourceName returns source name or empty string.
func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

// Pos returns byte offset.
func (p Pos) Pos() int {
	return p.pos
}

// Line returns 1-based line number or 0.
func (p Pos) Line() int {
	return p.line
}

// Col returns 1-based column number or 0.
func (p Pos) Col() int {
	return p.col
}
