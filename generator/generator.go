// Package generator produces random strings from compiled pattern trees.
//
// Every value is a fresh walk of the tree: repeat ranges are resampled and
// choices are redrawn on each pull, so two pulls never share random state.
// A Generator is not safe for concurrent use; the tree it walks is, so
// concurrent callers create one Generator each.
package generator

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/unix-beard/pgen/charset"
	"github.com/unix-beard/pgen/pattern"
)

// DefaultMaxRepeat bounds + and * in ModeRepeat.
const DefaultMaxRepeat = 3

// Source is the randomness a Generator draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// Mode selects how the symbolic quantifiers ?, + and * are evaluated.
type Mode int

const (
	// ModeChoice treats ?, +, * and @ alike: a quantified group emits exactly
	// one of its children. On an identifier they evaluate it once.
	ModeChoice Mode = iota
	// ModeRepeat reads ?, + and * as repetition of the quantified term:
	// 0..1, 1..max and 0..max times. @ still picks one child of a group.
	ModeRepeat
)

func (m Mode) String() string {
	switch m {
	case ModeChoice:
		return "choice"
	case ModeRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "choice":
		return ModeChoice, nil
	case "repeat":
		return ModeRepeat, nil
	default:
		return ModeChoice, fmt.Errorf("unknown mode %q (want choice or repeat)", s)
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource sets the randomness source.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithSeed makes the output reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.src = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithCharset replaces the default character classes.
func WithCharset(table *charset.Table) Option {
	return func(g *Generator) {
		if table != nil {
			g.classes = table
		}
	}
}

// WithMode selects how ?, + and * are evaluated. The default is ModeChoice.
func WithMode(mode Mode) Option {
	return func(g *Generator) {
		g.mode = mode
	}
}

// WithMaxRepeat bounds + and * in ModeRepeat. Values below 1 are ignored.
func WithMaxRepeat(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxRepeat = n
		}
	}
}

// WithLogger enables debug logging of generated values.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator walks a compiled pattern.
type Generator struct {
	root      *pattern.GroupNode
	classes   *charset.Table
	src       Source
	mode      Mode
	maxRepeat int
	logger    *zap.Logger
}

// New returns a Generator for root. Without WithSource or WithSeed it draws
// from a randomly seeded PCG source.
func New(root *pattern.GroupNode, opts ...Option) *Generator {
	g := &Generator{
		root:      root,
		classes:   charset.Default(),
		src:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		mode:      ModeChoice,
		maxRepeat: DefaultMaxRepeat,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next evaluates the whole tree once.
func (g *Generator) Next() string {
	var sb strings.Builder
	if g.root != nil {
		g.walk(&sb, g.root)
	}
	value := sb.String()
	g.logger.Debug("Generated value", zap.String("value", value))
	return value
}

// Seq returns an infinite sequence of generated values. Each range over it
// starts pulling again; the caller ends it by breaking out of the loop.
func (g *Generator) Seq() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

// Take returns the next n values.
func (g *Generator) Take(n int) []string {
	out := make([]string, 0, max(n, 0))
	if n <= 0 {
		return out
	}
	for value := range g.Seq() {
		out = append(out, value)
		if len(out) == n {
			break
		}
	}
	return out
}

func (g *Generator) walk(sb *strings.Builder, node pattern.Node) {
	switch n := node.(type) {
	case *pattern.CharNode:
		// a quantifier bound to a literal character has no effect
		sb.WriteString(n.Value)
	case *pattern.StringLiteralNode:
		sb.WriteString(n.Value)
	case *pattern.IdentifierNode:
		g.walkIdentifier(sb, n)
	case *pattern.GroupNode:
		g.walkGroup(sb, n)
	}
}

func (g *Generator) walkIdentifier(sb *strings.Builder, n *pattern.IdentifierNode) {
	chars, ok := g.classes.Lookup(n.Name)
	if !ok || len(chars) == 0 {
		sb.WriteString(n.Name)
		return
	}
	for range g.repeat(n.Quantifier) {
		sb.WriteRune(chars[g.src.IntN(len(chars))])
	}
}

func (g *Generator) walkGroup(sb *strings.Builder, n *pattern.GroupNode) {
	if q := n.Quantifier; q != nil && g.chooses(q) {
		// only hand-built trees have empty groups; choosing from one emits nothing
		if len(n.Children) > 0 {
			g.walk(sb, n.Children[g.src.IntN(len(n.Children))])
		}
		return
	}
	for range g.repeat(n.Quantifier) {
		for _, child := range n.Children {
			g.walk(sb, child)
		}
	}
}

// chooses reports whether a group quantified by q emits one child instead
// of its whole sequence.
func (g *Generator) chooses(q *pattern.QuantifierNode) bool {
	if q.Kind == pattern.QuantChoice {
		return true
	}
	return g.mode == ModeChoice && q.Kind.IsSymbolic()
}

// repeat resolves how many times the quantified term is evaluated. Ranges
// are sampled on every call.
func (g *Generator) repeat(q *pattern.QuantifierNode) int {
	if q == nil {
		return 1
	}
	switch q.Kind {
	case pattern.QuantCount:
		return q.Min
	case pattern.QuantRange:
		span := q.Max - q.Min + 1
		// Compile rejects inverted ranges; hand-built trees fall back to Max
		if span <= 0 {
			return q.Max
		}
		return q.Min + g.src.IntN(span)
	}

	if g.mode == ModeChoice {
		return 1
	}
	switch q.Kind {
	case pattern.QuantOptional:
		return g.src.IntN(2)
	case pattern.QuantOneOrMore:
		return 1 + g.src.IntN(g.maxRepeat)
	case pattern.QuantZeroOrMore:
		return g.src.IntN(g.maxRepeat + 1)
	default:
		return 1
	}
}
