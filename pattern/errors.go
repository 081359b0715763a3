package pattern

import (
	"errors"
	"fmt"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	UnexpectedCharacter ErrorKind = iota
	UnbalancedBraces
	UnknownEscapeSequence
	UnterminatedStringLiteral
	InvalidQuantifier
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "unexpected character"
	case UnbalancedBraces:
		return "unbalanced braces"
	case UnknownEscapeSequence:
		return "unknown escape sequence"
	case UnterminatedStringLiteral:
		return "unterminated string literal"
	case InvalidQuantifier:
		return "invalid quantifier"
	default:
		return "unknown error"
	}
}

var (
	ErrUnexpectedCharacter       = errors.New("unexpected character")
	ErrUnbalancedBraces          = errors.New("unbalanced braces")
	ErrUnknownEscapeSequence     = errors.New("unknown escape sequence")
	ErrUnterminatedStringLiteral = errors.New("unterminated string literal")
	ErrInvalidQuantifier         = errors.New("invalid quantifier")
)

var kindSentinels = map[ErrorKind]error{
	UnexpectedCharacter:       ErrUnexpectedCharacter,
	UnbalancedBraces:          ErrUnbalancedBraces,
	UnknownEscapeSequence:     ErrUnknownEscapeSequence,
	UnterminatedStringLiteral: ErrUnterminatedStringLiteral,
	InvalidQuantifier:         ErrInvalidQuantifier,
}

// eof is reported as the offending character when input ends early.
const eof rune = -1

// ParseError describes why a pattern failed to compile.
// Pos is a rune offset into the source; Char is the rune found there, or -1
// when the input ended.
type ParseError struct {
	Kind ErrorKind
	Pos  int
	Char rune
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

// Is lets errors.Is match a ParseError against the package sentinels.
func (e *ParseError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Found renders the offending character for messages.
func (e *ParseError) Found() string {
	return describe(e.Char)
}

func describe(r rune) string {
	if r == eof {
		return "end of input"
	}
	return fmt.Sprintf("%q", r)
}
