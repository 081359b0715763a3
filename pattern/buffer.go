package pattern

import "fmt"

// buffer is a rune cursor over the pattern source. Positions are rune offsets,
// so errors point at characters rather than bytes.
type buffer struct {
	data   []rune // decoded input
	length int    // number of runes in data
	index  int    // current position in data
}

func newBuffer(input string) *buffer {
	data := []rune(input)
	return &buffer{
		data:   data,
		length: len(data),
	}
}

// peek returns the current rune without consuming it, or eof past the end.
func (b *buffer) peek() rune {
	if b.index >= b.length {
		return eof
	}
	return b.data[b.index]
}

// next consumes and returns the current rune.
func (b *buffer) next() rune {
	r := b.peek()
	if r != eof {
		b.index++
	}
	return r
}

// errorf builds a ParseError at the current position.
func (b *buffer) errorf(kind ErrorKind, format string, args ...any) *ParseError {
	return b.errorAt(kind, b.index, format, args...)
}

func (b *buffer) errorAt(kind ErrorKind, pos int, format string, args ...any) *ParseError {
	char := eof
	if pos < b.length {
		char = b.data[pos]
	}
	return &ParseError{
		Kind: kind,
		Pos:  pos,
		Char: char,
		Msg:  fmt.Sprintf(format, args...),
	}
}
