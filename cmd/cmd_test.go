package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unix-beard/pgen/charset"
	"github.com/unix-beard/pgen/generator"
	"github.com/unix-beard/pgen/internal/config"
	"github.com/unix-beard/pgen/pattern"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, cfg config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultPath)
	require.NoError(t, config.Write(path, cfg))
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestRunGenerate(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	seed := uint64(7)

	var out, errOut bytes.Buffer
	err := runGenerate(context.Background(), zaptest.NewLogger(t), &out, &errOut, genOptions{
		args:       []string{"{C}{v}", "{d}{3}"},
		configPath: missing,
		count:      25,
		seed:       &seed,
	})
	require.NoError(t, err)
	assert.Empty(t, errOut.String())

	values := lines(out.String())
	require.Len(t, values, 25)
	for _, v := range values {
		assert.Regexp(t, `^[A-Z][aeiou][0-9]{3}$`, v)
	}

	var again bytes.Buffer
	err = runGenerate(context.Background(), zap.NewNop(), &again, &errOut, genOptions{
		args:       []string{"{C}{v}{d}{3}"},
		configPath: missing,
		count:      25,
		seed:       &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, out.String(), again.String(), "same seed, same output")
}

func TestRunGenerate_JSON(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	err := runGenerate(context.Background(), zap.NewNop(), &out, &errOut, genOptions{
		args:       []string{"ab{d}"},
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		count:      4,
		json:       true,
	})
	require.NoError(t, err)

	var result genResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "ab{d}", result.Pattern)
	assert.Len(t, result.Values, 4)
}

func TestRunGenerate_ZeroCount(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	err := runGenerate(context.Background(), zap.NewNop(), &out, &errOut, genOptions{
		args:       []string{"{d}"},
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		count:      0,
	})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunGenerate_NamedPattern(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, config.Config{
		Charset:  &charset.Spec{Digits: "1"},
		Patterns: map[string]string{"pin": "{d}{4}"},
	})

	var out, errOut bytes.Buffer
	err := runGenerate(context.Background(), zap.NewNop(), &out, &errOut, genOptions{
		name:       "pin",
		configPath: path,
		count:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, "1111\n1111\n", out.String())

	err = runGenerate(context.Background(), zap.NewNop(), &out, &errOut, genOptions{
		name:       "nope",
		configPath: path,
		count:      1,
	})
	assert.ErrorIs(t, err, config.ErrPatternNotFound)
}

func TestRunGenerate_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    genOptions
		wantErr error
		wantOut string
	}{
		{
			name:    "compile error prints diagnostic",
			opts:    genOptions{args: []string{"{d"}, configPath: filepath.Join(dir, "missing.yaml"), count: 1},
			wantErr: pattern.ErrUnbalancedBraces,
			wantOut: "error: unbalanced braces",
		},
		{
			name:    "name requires configuration",
			opts:    genOptions{name: "pin", configPath: filepath.Join(dir, "missing.yaml"), count: 1},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out, errOut bytes.Buffer
			err := runGenerate(context.Background(), zap.NewNop(), &out, &errOut, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out.String())
			assert.Contains(t, errOut.String(), tt.wantOut)
		})
	}
}

func TestRunGenerate_Timeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	err := runGenerate(ctx, zap.NewNop(), &out, &errOut, genOptions{
		args:       []string{"{d}"},
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		count:      10,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunGenerate_Progress(t *testing.T) {
	t.Parallel()
	var out, errOut, progress bytes.Buffer
	err := runGenerate(context.Background(), zap.NewNop(), &out, &errOut, genOptions{
		args:       []string{"{d}"},
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		count:      5,
		progress:   &progress,
	})
	require.NoError(t, err)
	assert.Len(t, lines(out.String()), 5)
	assert.NotEmpty(t, progress.String())
}

func TestResolveSource(t *testing.T) {
	t.Parallel()
	cfg := config.Config{Patterns: map[string]string{"pin": "{d}{4}"}}

	src, err := resolveSource(cfg, "pin", nil)
	require.NoError(t, err)
	assert.Equal(t, source{name: "pin", text: "{d}{4}"}, src)

	src, err = resolveSource(cfg, "", []string{"{d}", "{2}"})
	require.NoError(t, err)
	assert.Equal(t, "{d}{2}", src.text)

	_, err = resolveSource(cfg, "pin", []string{"{d}"})
	assert.Error(t, err)

	_, err = resolveSource(cfg, "", nil)
	assert.Error(t, err)
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	sources := []source{
		{name: "good", text: "{C}{v}{c}"},
		{name: "bad", text: `ab\x`},
	}

	var out bytes.Buffer
	err := runCheck(context.Background(), zap.NewNop(), &out, sources, false)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "ok: good\n")
	assert.Contains(t, out.String(), "error: unknown escape sequence\n --> bad:3\n")

	out.Reset()
	require.NoError(t, runCheck(context.Background(), zap.NewNop(), &out, sources[:1], false))
	assert.Equal(t, "ok: good\n", out.String())
}

func TestRunCheck_JSON(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := runCheck(context.Background(), zap.NewNop(), &out, []source{{name: "bad", text: "{d}{5:2}"}}, true)
	assert.ErrorIs(t, err, errCheckFailed)

	var diagnostics []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &diagnostics))
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "invalid quantifier", diagnostics[0]["kind"])
	assert.Equal(t, float64(3), diagnostics[0]["offset"])
}

func TestConfigSources(t *testing.T) {
	t.Parallel()
	sources := configSources(config.Config{Patterns: map[string]string{"b": "{d}", "a": "{v}"}})
	assert.Equal(t, []source{{name: "a", text: "{v}"}, {name: "b", text: "{d}"}}, sources)
}

func TestRunAST(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	var out, errOut bytes.Buffer
	err := runAST(logger, &out, &errOut, source{name: "x", text: "{{c}{v}}{2:4}{foo}"}, charset.Default())
	require.NoError(t, err)

	expected := `Group(2 children):
  0: Group(2 children) Quantifier(2:4):
    0: Identifier(c)
    1: Identifier(v)
  1: Identifier(foo)
identifiers: c, foo, v
`
	assert.Equal(t, expected, out.String())

	entries := logs.FilterField(zap.String("identifier", "foo")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, logs.Len(), "only unknown identifiers are reported")
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), config.DefaultPath)

	require.NoError(t, initConfigurationFile(path, false))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	assert.Error(t, initConfigurationFile(path, false))
	assert.NoError(t, initConfigurationFile(path, true))
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	var (
		count int
		mode  string
		seed  uint64
	)
	newFlags := func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.IntVar(&count, "count", 1, "")
		flags.StringVar(&mode, "mode", "choice", "")
		flags.Uint64Var(&seed, "seed", 0, "")
		return flags
	}

	s := uint64(99)
	four := 4
	flags := newFlags()
	require.NoError(t, applyEnv(flags, config.Env{Count: &four, Mode: "repeat", Seed: &s}))
	assert.Equal(t, 4, count)
	assert.Equal(t, "repeat", mode)
	assert.Equal(t, uint64(99), seed)
	assert.True(t, flags.Changed("seed"))

	flags = newFlags()
	require.NoError(t, flags.Parse([]string{"--count", "2"}))
	require.NoError(t, applyEnv(flags, config.Env{Count: &four, Mode: "choice"}))
	assert.Equal(t, 2, count, "command line wins over environment")
	assert.False(t, flags.Changed("seed"))

	flags = newFlags()
	assert.NoError(t, applyEnv(flags, config.Env{Charset: "x"}), "undefined flags are skipped")
}

func TestApplyEnv_KeepsCommandDefaults(t *testing.T) {
	t.Parallel()
	e, err := config.ParseEnv(map[string]string{})
	require.NoError(t, err)

	// nothing is set, so the shared command flags stay untouched
	require.NoError(t, applyEnv(watchCmd.Flags(), e))
	count, err := watchCmd.Flags().GetInt("count")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "unset PGEN_COUNT keeps the watch default")
	assert.False(t, watchCmd.Flags().Changed("count"))

	e, err = config.ParseEnv(map[string]string{"PGEN_COUNT": "5"})
	require.NoError(t, err)
	var n int
	flags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flags.IntVarP(&n, "count", "n", 3, "")
	require.NoError(t, applyEnv(flags, e))
	assert.Equal(t, 5, n)
}

func TestRenderSamples(t *testing.T) {
	t.Parallel()
	cfg := config.Config{
		Charset: &charset.Spec{Digits: "5"},
		Patterns: map[string]string{
			"pin":    "{d}{2}",
			"broken": "{d",
		},
	}

	var out bytes.Buffer
	require.NoError(t, renderSamples(&out, zap.NewNop(), cfg, "", 2, generator.WithSeed(1)))
	assert.Contains(t, out.String(), "error: unbalanced braces\n --> broken:2\n")
	assert.Contains(t, out.String(), "pin:\n  55\n  55\n")
}

func TestIsConfigChange(t *testing.T) {
	t.Parallel()
	path := filepath.Join("dir", config.DefaultPath)
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: filepath.Join("dir", config.DefaultPath), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join("dir", config.DefaultPath), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join("dir", config.DefaultPath), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join("dir", "other.yaml"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isConfigChange(tt.event, path), tt.event.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, config.Config{Patterns: map[string]string{"first": "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, zap.NewNop(), out, path, "", 1)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "first:\n  a\n")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, config.Write(path, config.Config{Patterns: map[string]string{"second": "b"}}))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "second:\n  b\n")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
