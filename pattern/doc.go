/*
Package pattern compiles pgen pattern strings into an abstract syntax tree.

# Syntax

A pattern is literal text interleaved with braced terms:

	{v}        a character class identifier (v, V, c, C, d, alpha, Alpha, ...)
	{'text'}   a string literal; \' inside it is a quote
	{{...}...} a group holding a sequence of terms
	{3}        a fixed repeat count for the preceding term
	{2:5}      an inclusive repeat range for the preceding term
	{?} {+} {*} {@}
	           symbolic quantifiers for the preceding term

Outside braces every character is literal except '{', '}' and '\'. The
escapes \{, \} and \\ produce the escaped character; \n and \t are kept as
the two characters backslash and letter, they are not control characters.

# Quantifier binding

A quantifier is not a term of its own. It binds to the term parsed right
before it in the same group and is stored on that node:

	{C}{v}{2}      -> Identifier(C), Identifier(v) Quantifier(2)
	{{a}{b}}{@}    -> Group(2 children) Quantifier(@)

A quantifier with nothing before it, or a second quantifier for the same
term, is a compile error.

# Usage

	root, err := pattern.Compile("{C}{v}{c}{d}{2:4}")
	if err != nil {
		var perr *pattern.ParseError
		errors.As(err, &perr)
		...
	}
	fmt.Println(root)

Compiled trees are immutable and safe to share between goroutines.
*/
package pattern
