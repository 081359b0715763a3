package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unix-beard/pgen/formatter"
	"github.com/unix-beard/pgen/internal/config"
	"github.com/unix-beard/pgen/pattern"
)

var checkJSON bool

var errCheckFailed = errors.New("one or more patterns failed to compile")

var checkCmd = &cobra.Command{
	Use:   "check [patterns...]",
	Short: "Validate patterns without generating",
	Long: `Compiles every argument as a separate pattern. Without arguments, every pattern
in the configuration file is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var sources []source
		if len(args) > 0 {
			for i, arg := range args {
				sources = append(sources, source{name: "arg" + strconv.Itoa(i+1), text: arg})
			}
		} else {
			cfg, err := loadConfig(logger, cfgFile, true)
			if err != nil {
				return err
			}
			sources = configSources(cfg)
		}

		return runCheck(ctx, logger, cmd.OutOrStdout(), sources, checkJSON)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output diagnostics in JSON format")
}

func configSources(cfg config.Config) []source {
	sources := make([]source, 0, len(cfg.Patterns))
	for _, name := range cfg.Names() {
		sources = append(sources, source{name: name, text: cfg.Patterns[name]})
	}
	return sources
}

func runCheck(ctx context.Context, logger *zap.Logger, w io.Writer, sources []source, isJSON bool) error {
	diagnostics := make([]formatter.Diagnostic, 0)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := pattern.Compile(src.text, pattern.WithLogger(logger)); err != nil {
			logger.Debug("Pattern failed to compile", zap.String("name", src.name), zap.Error(err))
			diagnostics = append(diagnostics, formatter.NewDiagnostic(src.name, src.text, err))
			continue
		}
		if !isJSON {
			fmt.Fprintf(w, "ok: %s\n", src.name)
		}
	}

	if isJSON {
		d, err := json.Marshal(diagnostics)
		if err != nil {
			return fmt.Errorf("failed to marshal diagnostics: %w", err)
		}
		fmt.Fprintln(w, string(d))
	} else {
		for _, d := range diagnostics {
			fmt.Fprintln(w, d.Format())
		}
	}

	if len(diagnostics) > 0 {
		return fmt.Errorf("%w (%d of %d)", errCheckFailed, len(diagnostics), len(sources))
	}
	return nil
}
