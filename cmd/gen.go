package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/unix-beard/pgen/generator"
)

// variable for flags
var (
	genCount     int
	genName      string
	genSeed      uint64
	genMode      string
	genMaxRepeat int
	genJSON      bool
	genOutput    string
)

var genCmd = &cobra.Command{
	Use:   "gen [patterns...]",
	Short: "Generate random strings from a pattern",
	Long: `Generates strings from the pattern formed by joining the arguments, or from a
pattern stored in the configuration file.
Example) pgen gen -n 5 '{C}{v}{c}{v}{d}{2}'
         pgen gen --name token`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		mode, err := generator.ParseMode(genMode)
		if err != nil {
			return err
		}

		opts := genOptions{
			args:        args,
			name:        genName,
			configPath:  cfgFile,
			charsetPath: charsetFile,
			count:       genCount,
			mode:        mode,
			maxRepeat:   genMaxRepeat,
			json:        genJSON,
		}
		if cmd.Flags().Changed("seed") {
			seed := genSeed
			opts.seed = &seed
		}

		out := cmd.OutOrStdout()
		if genOutput != "" {
			f, err := os.Create(genOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
			opts.progress = cmd.ErrOrStderr()
		}

		return runGenerate(ctx, logger, out, cmd.ErrOrStderr(), opts)
	},
}

func init() {
	addGenFlags(genCmd.Flags())
}

func addGenFlags(flags *pflag.FlagSet) {
	flags.IntVarP(&genCount, "count", "n", 1, "Number of strings to generate")
	flags.StringVar(&genName, "name", "", "Name of a pattern from the configuration file")
	flags.Uint64Var(&genSeed, "seed", 0, "Seed for reproducible output")
	flags.StringVar(&genMode, "mode", generator.ModeChoice.String(), "How ?, + and * are evaluated (choice or repeat)")
	flags.IntVar(&genMaxRepeat, "max-repeat", generator.DefaultMaxRepeat, "Upper bound for + and * in repeat mode")
	flags.BoolVar(&genJSON, "json", false, "Output the generated strings as JSON")
	flags.StringVarP(&genOutput, "output", "o", "", "Write the output to a file instead of stdout")
}

type genOptions struct {
	args        []string
	name        string
	configPath  string
	charsetPath string
	count       int
	seed        *uint64
	mode        generator.Mode
	maxRepeat   int
	json        bool
	// progress receives a progress bar when set.
	progress io.Writer
}

type genResult struct {
	Name    string   `json:"name,omitempty"`
	Pattern string   `json:"pattern"`
	Values  []string `json:"values"`
}

func runGenerate(ctx context.Context, logger *zap.Logger, w io.Writer, errW io.Writer, opts genOptions) error {
	cfg, err := loadConfig(logger, opts.configPath, opts.name != "")
	if err != nil {
		return err
	}
	src, err := resolveSource(cfg, opts.name, opts.args)
	if err != nil {
		return err
	}
	table, err := charsetTable(cfg, opts.charsetPath)
	if err != nil {
		return err
	}
	root, err := compileSource(errW, logger, src)
	if err != nil {
		return err
	}

	genOpts := []generator.Option{
		generator.WithCharset(table),
		generator.WithMode(opts.mode),
		generator.WithMaxRepeat(opts.maxRepeat),
		generator.WithLogger(logger),
	}
	if opts.seed != nil {
		genOpts = append(genOpts, generator.WithSeed(*opts.seed))
	}
	g := generator.New(root, genOpts...)

	var bar *progressbar.ProgressBar
	if opts.progress != nil {
		bar = progressbar.NewOptions(opts.count,
			progressbar.OptionSetWriter(opts.progress),
			progressbar.OptionSetDescription(src.name),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		defer bar.Finish()
	}

	result := genResult{Name: opts.name, Pattern: src.text, Values: make([]string, 0, max(opts.count, 0))}
	produced := 0
	for produced < opts.count {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generation stopped after %d values: %w", produced, err)
		}

		value := g.Next()
		if opts.json {
			result.Values = append(result.Values, value)
		} else if _, err := fmt.Fprintln(w, value); err != nil {
			return err
		}
		produced++
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	logger.Debug("Generated values", zap.String("pattern", src.text), zap.Int("count", produced))

	if !opts.json {
		return nil
	}
	d, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(d))
	return err
}
