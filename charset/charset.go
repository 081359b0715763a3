// Package charset defines the character classes pattern identifiers draw from.
package charset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultVowels     = "aeiou"
	DefaultConsonants = "bcdfghjklmnpqrstvwxyz"
	DefaultDigits     = "0123456789"
)

// Built-in class names.
const (
	Vowel          = "v"
	UpperVowel     = "V"
	Consonant      = "c"
	UpperConsonant = "C"
	Digit          = "d"
	Alpha          = "alpha"
	UpperAlpha     = "Alpha"
)

var (
	ErrEmptyClass  = errors.New("character class is empty")
	ErrInvalidName = errors.New("class name must consist of letters only")
)

// Spec is the editable description of a Table. Empty base sets fall back to
// the defaults. Classes adds named classes or replaces built-in ones.
type Spec struct {
	Vowels     string            `yaml:"vowels"`
	Consonants string            `yaml:"consonants"`
	Digits     string            `yaml:"digits"`
	Classes    map[string]string `yaml:"classes,omitempty"`
}

// DefaultSpec returns the spec of the default table.
func DefaultSpec() Spec {
	return Spec{
		Vowels:     DefaultVowels,
		Consonants: DefaultConsonants,
		Digits:     DefaultDigits,
	}
}

// Table maps class names to the distinct runes of the class.
// A Table is read-only after construction and safe for concurrent use.
type Table struct {
	classes map[string][]rune
}

// New builds a table from spec. The uppercase and alpha classes are derived
// from the vowel and consonant sets.
func New(spec Spec) (*Table, error) {
	if spec.Vowels == "" {
		spec.Vowels = DefaultVowels
	}
	if spec.Consonants == "" {
		spec.Consonants = DefaultConsonants
	}
	if spec.Digits == "" {
		spec.Digits = DefaultDigits
	}

	upper := cases.Upper(language.Und)
	alpha := spec.Vowels + spec.Consonants

	t := &Table{classes: make(map[string][]rune)}
	t.classes[Vowel] = distinct(spec.Vowels)
	t.classes[UpperVowel] = distinct(upper.String(spec.Vowels))
	t.classes[Consonant] = distinct(spec.Consonants)
	t.classes[UpperConsonant] = distinct(upper.String(spec.Consonants))
	t.classes[Digit] = distinct(spec.Digits)
	t.classes[Alpha] = distinct(alpha)
	t.classes[UpperAlpha] = distinct(upper.String(alpha))

	for name, chars := range spec.Classes {
		if !validName(name) {
			return nil, fmt.Errorf("class %q: %w", name, ErrInvalidName)
		}
		if chars == "" {
			return nil, fmt.Errorf("class %q: %w", name, ErrEmptyClass)
		}
		t.classes[name] = distinct(chars)
	}
	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := New(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a Spec from a YAML file and builds its table.
func Load(path string) (*Table, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	t, err := New(spec)
	if err != nil {
		return nil, fmt.Errorf("charset %s: %w", path, err)
	}
	return t, nil
}

// LoadSpec reads a Spec from a YAML file without building it.
func LoadSpec(path string) (Spec, error) {
	var spec Spec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("failed to decode charset %s: %w", path, err)
	}
	return spec, nil
}

// Lookup returns the runes of the named class.
func (t *Table) Lookup(name string) ([]rune, bool) {
	chars, ok := t.classes[name]
	return chars, ok
}

// Names returns every class name in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// distinct removes repeated runes so every character of a class is drawn
// with the same probability.
func distinct(s string) []rune {
	seen := make(map[rune]bool)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
