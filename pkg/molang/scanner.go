package molang

import "strings"

// operatorChars are the characters the arithmetic grammar treats as operators.
const operatorChars = "()*/+-"

// Scanner is a cursor over a source string.
// It classifies characters but does not tokenize.
type Scanner struct {
	src string
	pos int
}

// NewScanner returns a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Peek returns the byte under the cursor, or 0 at end of input.
func (s *Scanner) Peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

// Advance consumes and returns the byte under the cursor.
func (s *Scanner) Advance() byte {
	c := s.Peek()
	if s.pos < len(s.src) {
		s.pos++
	}
	return c
}

// SkipWhitespace moves the cursor past spaces, tabs, and line breaks.
func (s *Scanner) SkipWhitespace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// Done reports whether the cursor is at end of input.
func (s *Scanner) Done() bool {
	return s.pos >= len(s.src)
}

// Mark returns the current offset for a later Slice.
func (s *Scanner) Mark() int {
	return s.pos
}

// Offset returns the current cursor offset.
func (s *Scanner) Offset() int {
	return s.pos
}

// Seek moves the cursor to offset, clamped to the input.
func (s *Scanner) Seek(offset int) {
	s.pos = min(max(offset, 0), len(s.src))
}

// Slice returns the text between mark and the cursor.
func (s *Scanner) Slice(mark int) string {
	return s.src[mark:s.pos]
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() string {
	return s.src[s.pos:]
}

// ReadIdentifier consumes a run of identifier characters.
func (s *Scanner) ReadIdentifier() string {
	mark := s.Mark()
	for !s.Done() && isIdentChar(s.Peek()) {
		s.pos++
	}
	return s.Slice(mark)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '.'
}

func isOperator(c byte) bool {
	return c != 0 && strings.IndexByte(operatorChars, c) >= 0
}
