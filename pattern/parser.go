package pattern

import (
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Option configures a Compile call.
type Option func(*parser)

// WithRegistry records every identifier name the parser sees in r.
func WithRegistry(r *Registry) Option {
	return func(p *parser) {
		p.registry = r
	}
}

// WithLogger enables debug logging of parsing steps.
func WithLogger(logger *zap.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// parser is a recursive-descent parser with one rune of lookahead.
type parser struct {
	buf *buffer

	// binders holds, per open group, the last term parsed in that group.
	// A following quantifier binds to the top entry.
	binders []Quantifiable

	registry *Registry
	logger   *zap.Logger
}

func newParser(src string, opts ...Option) *parser {
	p := &parser{
		buf:    newBuffer(src),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compile parses src into an immutable AST whose root is a GroupNode.
// On failure the returned error is a *ParseError and no tree is returned.
func Compile(src string, opts ...Option) (*GroupNode, error) {
	p := newParser(src, opts...)
	p.logger.Debug("Parsing pattern", zap.String("pattern", src))

	root := &GroupNode{pos: 0}
	if err := p.parseSequence(root, -1); err != nil {
		p.logger.Debug("Pattern rejected", zap.String("pattern", src), zap.Error(err))
		return nil, err
	}
	return root, nil
}

// MustCompile is like Compile but panics if src cannot be parsed.
func MustCompile(src string, opts ...Option) *GroupNode {
	root, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return root
}

// Join concatenates pattern sources. Compiling the result is the same as
// compiling the parts written as one pattern.
func Join(parts ...string) string {
	return strings.Join(parts, "")
}

// parseSequence parses terms into g. With open < 0 it runs to the end of
// input; otherwise open is the offset of g's '{' and the sequence ends at the
// matching '}', which is consumed.
func (p *parser) parseSequence(g *GroupNode, open int) error {
	p.binders = append(p.binders, nil)
	defer func() { p.binders = p.binders[:len(p.binders)-1] }()

	for {
		switch p.buf.peek() {
		case eof:
			if open >= 0 {
				return p.buf.errorf(UnbalancedBraces, "'{' at offset %d is never closed", open)
			}
			return nil
		case '}':
			if open < 0 {
				return p.buf.errorf(UnbalancedBraces, "'}' has no matching '{'")
			}
			p.buf.next()
			return nil
		}

		term, err := p.parseTerm()
		if err != nil {
			return err
		}

		if q, ok := term.(*QuantifierNode); ok {
			if err := p.bindQuantifier(q); err != nil {
				return err
			}
			continue
		}

		g.Children = append(g.Children, term)
		p.binders[len(p.binders)-1] = term.(Quantifiable)
	}
}

// bindQuantifier attaches q to the previous sibling in the innermost open
// group. The quantifier itself never becomes a child.
func (p *parser) bindQuantifier(q *QuantifierNode) error {
	target := p.binders[len(p.binders)-1]
	if target == nil {
		return p.buf.errorAt(UnexpectedCharacter, q.pos, "quantifier %s has no preceding term to bind to", q)
	}
	if target.Bound() != nil {
		return p.buf.errorAt(UnexpectedCharacter, q.pos, "%s already has quantifier %s", target.Type(), target.Bound())
	}
	target.bind(q)
	p.logger.Debug("Bound quantifier",
		zap.Stringer("quantifier", q),
		zap.Stringer("target", target.Type()),
		zap.Int("pos", q.pos))
	return nil
}

func (p *parser) parseTerm() (Node, error) {
	switch r := p.buf.peek(); r {
	case '{':
		return p.parseBraced()
	case '\\':
		return p.parseEscape()
	default:
		pos := p.buf.index
		p.buf.next()
		return &CharNode{Value: string(r), pos: pos}, nil
	}
}

// parseBraced parses '{' GroupBody '}'. The result is a GroupNode when the
// body opens another group, otherwise the identifier, string literal or
// quantifier the body consists of.
func (p *parser) parseBraced() (Node, error) {
	open := p.buf.index
	p.buf.next() // consume '{'

	var (
		node Node
		err  error
	)
	r := p.buf.peek()
	switch {
	case r == '{':
		group := &GroupNode{pos: open}
		if err := p.parseSequence(group, open); err != nil {
			return nil, err
		}
		return group, nil
	case r == eof:
		return nil, p.buf.errorf(UnbalancedBraces, "'{' at offset %d is never closed", open)
	case r == '\'':
		node, err = p.parseStringLiteral()
	case isDigit(r):
		node, err = p.parseNumericQuantifier(open)
	case unicode.IsLetter(r):
		node = p.parseIdentifier()
	default:
		if kind, ok := symbolicQuantifiers[r]; ok {
			p.buf.next()
			node = &QuantifierNode{Kind: kind, pos: open}
			break
		}
		return nil, p.buf.errorf(UnexpectedCharacter,
			"expected identifier, quantifier, string literal or '{', found %s", describe(r))
	}
	if err != nil {
		return nil, err
	}

	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) expectClose(open int) error {
	switch r := p.buf.peek(); r {
	case '}':
		p.buf.next()
		return nil
	case eof:
		return p.buf.errorf(UnbalancedBraces, "'{' at offset %d is never closed", open)
	default:
		return p.buf.errorf(UnexpectedCharacter, "expected '}', found %s", describe(r))
	}
}

func (p *parser) parseIdentifier() *IdentifierNode {
	pos := p.buf.index
	var name strings.Builder
	for unicode.IsLetter(p.buf.peek()) {
		name.WriteRune(p.buf.next())
	}

	id := &IdentifierNode{Name: name.String(), pos: pos}
	if p.registry != nil && p.registry.Add(id.Name) {
		p.logger.Debug("Added identifier to registry", zap.String("identifier", id.Name))
	}
	return id
}

// parseNumericQuantifier parses digit+ (':' digit+)?.
func (p *parser) parseNumericQuantifier(open int) (*QuantifierNode, error) {
	low, err := p.scanNumber()
	if err != nil {
		return nil, err
	}
	if p.buf.peek() != ':' {
		return &QuantifierNode{Kind: QuantCount, Min: low, Max: low, pos: open}, nil
	}

	p.buf.next() // consume ':'
	if r := p.buf.peek(); !isDigit(r) {
		if r == eof {
			return nil, p.buf.errorf(UnbalancedBraces, "'{' at offset %d is never closed", open)
		}
		return nil, p.buf.errorf(UnexpectedCharacter, "expected upper bound of range, found %s", describe(r))
	}
	high, err := p.scanNumber()
	if err != nil {
		return nil, err
	}
	if low > high {
		return nil, p.buf.errorAt(InvalidQuantifier, open, "range lower bound %d exceeds upper bound %d", low, high)
	}
	return &QuantifierNode{Kind: QuantRange, Min: low, Max: high, pos: open}, nil
}

func (p *parser) scanNumber() (int, error) {
	start := p.buf.index
	var digits strings.Builder
	for isDigit(p.buf.peek()) {
		digits.WriteRune(p.buf.next())
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, p.buf.errorAt(InvalidQuantifier, start, "repeat count %s is out of range", digits.String())
	}
	return n, nil
}

// parseStringLiteral parses a quoted literal. Only \' is an escape; any other
// backslash is kept as written.
func (p *parser) parseStringLiteral() (*StringLiteralNode, error) {
	start := p.buf.index
	p.buf.next() // consume opening quote

	var value strings.Builder
	for {
		r := p.buf.next()
		switch {
		case r == eof:
			return nil, p.buf.errorAt(UnterminatedStringLiteral, start, "string literal is never closed")
		case r == '\\' && p.buf.peek() == '\'':
			value.WriteRune(p.buf.next())
		case r == '\'':
			return &StringLiteralNode{Value: value.String(), pos: start}, nil
		default:
			value.WriteRune(r)
		}
	}
}

// parseEscape parses a backslash escape outside string literals.
// \n and \t keep both characters; \\, \{ and \} drop the backslash.
func (p *parser) parseEscape() (*CharNode, error) {
	pos := p.buf.index
	p.buf.next() // consume '\'

	switch r := p.buf.peek(); r {
	case 'n', 't':
		p.buf.next()
		return &CharNode{Value: `\` + string(r), pos: pos}, nil
	case '\\', '{', '}':
		p.buf.next()
		return &CharNode{Value: string(r), pos: pos}, nil
	case eof:
		return nil, p.buf.errorf(UnknownEscapeSequence, "'\\' at end of input")
	default:
		return nil, p.buf.errorf(UnknownEscapeSequence, "unknown escape sequence \\%c", r)
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
