// Package pgen generates random strings from compact pattern descriptions.
//
//	p := pgen.MustCompile("{C}{v}{c}{v}{d}{2}")
//	for token := range p.Generator().Seq() {
//		...
//	}
//
// The pattern and generator subpackages expose the parser and the tree walker
// separately for callers that need registries, loggers or custom randomness.
package pgen

import (
	"github.com/unix-beard/pgen/generator"
	"github.com/unix-beard/pgen/pattern"
)

// Pattern is a compiled pattern together with its source.
type Pattern struct {
	source string
	root   *pattern.GroupNode
}

// Compile joins the given sources into one pattern and compiles it.
func Compile(sources ...string) (*Pattern, error) {
	src := pattern.Join(sources...)
	root, err := pattern.Compile(src)
	if err != nil {
		return nil, err
	}
	return &Pattern{source: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(sources ...string) *Pattern {
	p, err := Compile(sources...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Source() string          { return p.source }
func (p *Pattern) AST() *pattern.GroupNode { return p.root }
func (p *Pattern) String() string          { return p.root.String() }

// Generator returns a new generator over the pattern.
func (p *Pattern) Generator(opts ...generator.Option) *generator.Generator {
	return generator.New(p.root, opts...)
}

// Generate compiles src and returns n generated values.
func Generate(src string, n int, opts ...generator.Option) ([]string, error) {
	p, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return p.Generator(opts...).Take(n), nil
}
