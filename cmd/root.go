package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unix-beard/pgen/internal/config"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile     string
	charsetFile string
	verbose     bool
	timeout     time.Duration

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "pgen [patterns...]",
	Short:            "pgen - generate random strings from patterns",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := config.LoadEnv()
		if err != nil {
			return err
		}
		if err := applyEnv(cmd.Flags(), e); err != nil {
			return err
		}

		logger, err = newLogger(verbose)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 && genName == "" {
			// display help when only 'pgen' is entered
			return cmd.Help()
		}
		// Format: pgen [pattern ...] => behaves like the gen subcommand
		return genCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&charsetFile, "charset", "", "Path to a YAML file overriding character classes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the command")

	addGenFlags(rootCmd.Flags())

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
}

// applyEnv copies environment defaults into flags the user did not set on
// the command line. Unset variables and flags not defined for the running
// command are skipped.
func applyEnv(flags *pflag.FlagSet, e config.Env) error {
	values := map[string]string{
		"config":  e.Config,
		"charset": e.Charset,
		"mode":    e.Mode,
	}
	if e.Count != nil {
		values["count"] = strconv.Itoa(*e.Count)
	}
	if e.Seed != nil {
		values["seed"] = strconv.FormatUint(*e.Seed, 10)
	}
	if e.Verbose {
		values["verbose"] = "true"
	}

	for name, value := range values {
		f := flags.Lookup(name)
		if f == nil || f.Changed || value == "" {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("invalid value %q from environment for --%s: %w", value, name, err)
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}
