package formatter

import (
	"errors"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unix-beard/pgen/pattern"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFormatParseError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name: "unknown escape",
			src:  `ab\x`,
			expected: `error: unknown escape sequence
 --> pin:3
  |
  | ab\x
  |    ^ unknown escape sequence \x
`,
		},
		{
			name: "stray close brace",
			src:  "}",
			expected: `error: unbalanced braces
 --> pin:0
  |
  | }
  | ^ '}' has no matching '{'
`,
		},
		{
			name: "control characters keep columns",
			src:  "a\t}",
			expected: `error: unbalanced braces
 --> pin:2
  |
  | a }
  |   ^ '}' has no matching '{'
`,
		},
		{
			name: "unclosed group points past the end",
			src:  "{{d}",
			expected: `error: unbalanced braces
 --> pin:4
  |
  | {{d}
  |     ^ '{' at offset 0 is never closed
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := pattern.Compile(tt.src)
			require.Error(t, err)
			assert.Equal(t, tt.expected, FormatParseError("pin", tt.src, err))
		})
	}
}

func TestFormatParseError_PlainError(t *testing.T) {
	t.Parallel()
	expected := `error: error
 --> token
  = boom
`
	assert.Equal(t, expected, FormatParseError("token", "{d}", errors.New("boom")))
}

func TestNewDiagnostic(t *testing.T) {
	t.Parallel()
	_, err := pattern.Compile("{d}{5:2}")
	require.Error(t, err)

	d := NewDiagnostic("pin", "{d}{5:2}", err)
	assert.Equal(t, Diagnostic{
		Name:    "pin",
		Source:  "{d}{5:2}",
		Kind:    "invalid quantifier",
		Offset:  3,
		Message: "range lower bound 5 exceeds upper bound 2",
	}, d)
}
