package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType defines the kinds of nodes a compiled pattern can contain.
type NodeType int

const (
	NodeGroup NodeType = iota
	NodeIdentifier
	NodeChar
	NodeQuantifier
	NodeStringLiteral
)

var nodeTypeStrings = map[NodeType]string{
	NodeGroup:         "Group",
	NodeIdentifier:    "Identifier",
	NodeChar:          "Char",
	NodeQuantifier:    "Quantifier",
	NodeStringLiteral: "StringLiteral",
}

func (t NodeType) String() string {
	if s, ok := nodeTypeStrings[t]; ok {
		return s
	}
	return "Unknown"
}

// Node is implemented by every AST node.
type Node interface {
	Type() NodeType // returns the node type
	String() string // indented structure dump
	Pos() int       // rune offset where the node starts in the source
}

// Quantifiable is implemented by the nodes a quantifier can be bound to.
type Quantifiable interface {
	Node
	Bound() *QuantifierNode
	bind(q *QuantifierNode)
}

var (
	_ Quantifiable = (*GroupNode)(nil)
	_ Quantifiable = (*IdentifierNode)(nil)
	_ Quantifiable = (*CharNode)(nil)
	_ Quantifiable = (*StringLiteralNode)(nil)
	_ Node         = (*QuantifierNode)(nil)
)

// QuantifierKind distinguishes numeric quantifiers from the symbolic markers.
type QuantifierKind int

const (
	QuantCount      QuantifierKind = iota // {3}
	QuantRange                            // {2:5}
	QuantOptional                         // {?}
	QuantOneOrMore                        // {+}
	QuantZeroOrMore                       // {*}
	QuantChoice                           // {@}
)

var symbolicQuantifiers = map[rune]QuantifierKind{
	'?': QuantOptional,
	'+': QuantOneOrMore,
	'*': QuantZeroOrMore,
	'@': QuantChoice,
}

func (k QuantifierKind) String() string {
	switch k {
	case QuantCount:
		return "count"
	case QuantRange:
		return "range"
	case QuantOptional:
		return "?"
	case QuantOneOrMore:
		return "+"
	case QuantZeroOrMore:
		return "*"
	case QuantChoice:
		return "@"
	default:
		return "unknown"
	}
}

// IsSymbolic reports whether k is one of the ?, +, *, @ markers.
func (k QuantifierKind) IsSymbolic() bool {
	return k >= QuantOptional && k <= QuantChoice
}

// QuantifierNode modifies the term it is bound to. Min and Max are only
// meaningful for numeric kinds; a fixed count has Min == Max.
type QuantifierNode struct {
	Kind     QuantifierKind
	Min, Max int
	pos      int
}

func (q *QuantifierNode) Type() NodeType { return NodeQuantifier }
func (q *QuantifierNode) Pos() int       { return q.pos }

// IsNumeric reports whether the quantifier carries a repeat count.
func (q *QuantifierNode) IsNumeric() bool {
	return q.Kind == QuantCount || q.Kind == QuantRange
}

func (q *QuantifierNode) String() string {
	switch q.Kind {
	case QuantCount:
		return fmt.Sprintf("Quantifier(%d)", q.Min)
	case QuantRange:
		return fmt.Sprintf("Quantifier(%d:%d)", q.Min, q.Max)
	default:
		return fmt.Sprintf("Quantifier(%s)", q.Kind)
	}
}

// quantified holds the optional bound quantifier shared by all quantifiable nodes.
type quantified struct {
	Quantifier *QuantifierNode
}

func (q *quantified) Bound() *QuantifierNode  { return q.Quantifier }
func (q *quantified) bind(n *QuantifierNode) { q.Quantifier = n }

func (q *quantified) suffix() string {
	if q.Quantifier == nil {
		return ""
	}
	return " " + q.Quantifier.String()
}

// GroupNode is a sequence of terms. The root of every compiled pattern is a GroupNode.
type GroupNode struct {
	quantified
	Children []Node
	pos      int
}

func (g *GroupNode) Type() NodeType { return NodeGroup }
func (g *GroupNode) Pos() int       { return g.pos }
func (g *GroupNode) String() string {
	result := fmt.Sprintf("Group(%d children)%s:\n", len(g.Children), g.suffix())
	for i, child := range g.Children {
		childStr := strings.ReplaceAll(child.String(), "\n", "\n  ")
		result += fmt.Sprintf("  %d: %s\n", i, childStr)
	}
	return strings.TrimRight(result, "\n")
}

// IdentifierNode names a character class such as v or Alpha. Names that do not
// resolve to a class are generated verbatim.
type IdentifierNode struct {
	quantified
	Name string
	pos  int
}

func (i *IdentifierNode) Type() NodeType { return NodeIdentifier }
func (i *IdentifierNode) Pos() int       { return i.pos }
func (i *IdentifierNode) String() string {
	return fmt.Sprintf("Identifier(%s)%s", i.Name, i.suffix())
}

// CharNode is a literal character. Escaped \n and \t are kept as their
// two-character source form.
type CharNode struct {
	quantified
	Value string
	pos   int
}

func (c *CharNode) Type() NodeType { return NodeChar }
func (c *CharNode) Pos() int       { return c.pos }
func (c *CharNode) String() string {
	escaped := strconv.Quote(c.Value)
	return fmt.Sprintf("Char(%s)%s", escaped[1:len(escaped)-1], c.suffix())
}

// StringLiteralNode is quoted text with escaped quotes already resolved.
type StringLiteralNode struct {
	quantified
	Value string
	pos   int
}

func (s *StringLiteralNode) Type() NodeType { return NodeStringLiteral }
func (s *StringLiteralNode) Pos() int       { return s.pos }
func (s *StringLiteralNode) String() string {
	return fmt.Sprintf("StringLiteral(%q)%s", s.Value, s.suffix())
}
