package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"go.uber.org/zap"

	"github.com/unix-beard/pgen/charset"
	"github.com/unix-beard/pgen/formatter"
	"github.com/unix-beard/pgen/internal/config"
	"github.com/unix-beard/pgen/pattern"
)

// loadConfig reads the configuration file. A missing file yields an empty
// configuration unless required is set.
func loadConfig(logger *zap.Logger, path string, required bool) (config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		logger.Debug("Loaded configuration", zap.String("path", path), zap.Int("patterns", len(cfg.Patterns)))
		return cfg, nil
	case errors.Is(err, fs.ErrNotExist) && !required:
		logger.Debug("No configuration file", zap.String("path", path))
		return config.Config{}, nil
	default:
		return cfg, fmt.Errorf("failed to load configuration: %w", err)
	}
}

// source is a pattern to compile along with the name it is reported under.
type source struct {
	name string
	text string
}

// resolveSource picks the pattern to generate from: the named configuration
// entry, or the command line arguments joined together.
func resolveSource(cfg config.Config, name string, args []string) (source, error) {
	switch {
	case name != "" && len(args) > 0:
		return source{}, errors.New("use either --name or pattern arguments, not both")
	case name != "":
		text, err := cfg.Pattern(name)
		if err != nil {
			return source{}, err
		}
		return source{name: name, text: text}, nil
	case len(args) == 0:
		return source{}, errors.New("please provide a pattern or --name")
	default:
		return source{name: "<args>", text: pattern.Join(args...)}, nil
	}
}

func charsetTable(cfg config.Config, charsetPath string) (*charset.Table, error) {
	table, err := cfg.Table(charsetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build character classes: %w", err)
	}
	return table, nil
}

// compileSource compiles src and, when it fails, writes a diagnostic to w.
func compileSource(w io.Writer, logger *zap.Logger, src source, opts ...pattern.Option) (*pattern.GroupNode, error) {
	root, err := pattern.Compile(src.text, append([]pattern.Option{pattern.WithLogger(logger)}, opts...)...)
	if err != nil {
		fmt.Fprint(w, formatter.FormatParseError(src.name, src.text, err))
		return nil, fmt.Errorf("%s: %w", src.name, err)
	}
	return root, nil
}
