package ast

import (
	"fmt"
	"strings"
)

// Formatter renders expressions for humans. It is a presentation-only
// collaborator: output must never be used for semantic equality or
// control flow.
type Formatter interface {
	// ExprString renders the expression id as a string, truncated to
	// at most roughly maxLen characters.
	ExprString(s *ExprSet, id ExprRef, maxLen int) string

	// AlphabetInfo describes the configured alphabet.
	AlphabetInfo() string
}

// defaultMaxLen bounds ExprToString output; deep graphs are truncated
// rather than rendered in full.
const defaultMaxLen = 1024

// ExprToStringMaxLen renders id through the configured formatter,
// truncated to maxLen.
func (s *ExprSet) ExprToStringMaxLen(id ExprRef, maxLen int) string {
	return s.formatter.ExprString(s, id, maxLen)
}

// ExprToString renders id with the default length limit.
func (s *ExprSet) ExprToString(id ExprRef) string {
	return s.ExprToStringMaxLen(id, defaultMaxLen)
}

// ExprToStringWithInfo renders id followed by the alphabet description.
func (s *ExprSet) ExprToStringWithInfo(id ExprRef) string {
	return s.ExprToString(id) + s.formatter.AlphabetInfo()
}

// SetFormatter replaces the formatting collaborator.
func (s *ExprSet) SetFormatter(f Formatter) {
	s.formatter = f
}

// simpleFormatter is the built-in renderer used when no formatter is
// configured. It produces a compact regex-like syntax good enough for
// debugging and test output.
type simpleFormatter struct {
	alphabetSize int
}

func newSimpleFormatter(alphabetSize int) *simpleFormatter {
	return &simpleFormatter{alphabetSize: alphabetSize}
}

// AlphabetInfo describes the configured alphabet.
func (f *simpleFormatter) AlphabetInfo() string {
	return fmt.Sprintf(" [alphabet: %d bytes]", f.alphabetSize)
}

// ExprString renders the expression id, truncating once the output
// budget is spent. Rendering recurses through the graph, but every
// composite level emits a character before descending, so recursion
// depth is bounded by the budget.
func (f *simpleFormatter) ExprString(s *ExprSet, id ExprRef, maxLen int) string {
	var b strings.Builder
	f.render(&b, s, id, maxLen)
	return b.String()
}

func (f *simpleFormatter) render(b *strings.Builder, s *ExprSet, id ExprRef, maxLen int) {
	if b.Len() >= maxLen {
		return
	}
	e := s.Get(id)
	switch e.Tag() {
	case TagEmptyString:
		b.WriteString(`""`)
	case TagNoMatch:
		b.WriteString("[]")
	case TagByte:
		b.WriteString(byteLabel(e.Byte()))
	case TagByteSet:
		f.renderSet(b, e.ByteSet())
	case TagRemainderIs:
		d, r := e.Remainder()
		fmt.Fprintf(b, "(N%%%d==%d)", d, r)
	case TagLookahead:
		b.WriteString("(?=")
		f.render(b, s, e.Inner(), maxLen)
		fmt.Fprintf(b, "){%d}", e.LookaheadLen())
	case TagNot:
		b.WriteString("~(")
		f.render(b, s, e.Inner(), maxLen)
		b.WriteString(")")
	case TagRepeat:
		b.WriteString("(")
		f.render(b, s, e.Inner(), maxLen)
		min, max := e.Bounds()
		if max == Unbounded {
			fmt.Fprintf(b, "){%d,}", min)
		} else {
			fmt.Fprintf(b, "){%d,%d}", min, max)
		}
	case TagConcat, TagOr, TagAnd:
		sep := ""
		switch e.Tag() {
		case TagOr:
			sep = "|"
		case TagAnd:
			sep = "&"
		}
		b.WriteString("(")
		for i, a := range e.Args() {
			if i > 0 {
				b.WriteString(sep)
			}
			if b.Len() >= maxLen {
				b.WriteString("…")
				break
			}
			f.render(b, s, a, maxLen)
		}
		b.WriteString(")")
	}
}

// renderSet prints a byte set as a character class of inclusive ranges.
func (f *simpleFormatter) renderSet(b *strings.Builder, set ByteSet) {
	b.WriteString("[")
	limit := len(set) * 32
	for lo := 0; lo < limit; lo++ {
		if !set.Contains(byte(lo)) {
			continue
		}
		hi := lo
		for hi+1 < limit && set.Contains(byte(hi+1)) {
			hi++
		}
		if lo == hi {
			b.WriteString(byteLabel(byte(lo)))
		} else {
			b.WriteString(byteLabel(byte(lo)))
			b.WriteString("-")
			b.WriteString(byteLabel(byte(hi)))
		}
		lo = hi
	}
	b.WriteString("]")
}

// byteLabel prints printable ASCII as itself and everything else as a
// hex escape.
func byteLabel(v byte) string {
	if v >= 0x21 && v <= 0x7e {
		return string(rune(v))
	}
	return fmt.Sprintf(`\x%02x`, v)
}
