package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unix-beard/pgen/charset"
	"github.com/unix-beard/pgen/pattern"
)

var astName string

var astCmd = &cobra.Command{
	Use:   "ast [patterns...]",
	Short: "Print the syntax tree of a pattern",
	Long: `Prints the tree the parser builds for a pattern, followed by the identifiers
it references. Identifiers that are not character classes are reported, since
they are emitted verbatim.
Example) pgen ast '{{c}{v}}{2:4}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(logger, cfgFile, astName != "")
		if err != nil {
			return err
		}
		src, err := resolveSource(cfg, astName, args)
		if err != nil {
			return err
		}
		table, err := charsetTable(cfg, charsetFile)
		if err != nil {
			return err
		}
		return runAST(logger, cmd.OutOrStdout(), cmd.ErrOrStderr(), src, table)
	},
}

func init() {
	astCmd.Flags().StringVar(&astName, "name", "", "Name of a pattern from the configuration file")
}

func runAST(logger *zap.Logger, w io.Writer, errW io.Writer, src source, table *charset.Table) error {
	registry := pattern.NewRegistry()
	root, err := compileSource(errW, logger, src, pattern.WithRegistry(registry))
	if err != nil {
		return err
	}

	fmt.Fprintln(w, root.String())

	ids := registry.IDs()
	if len(ids) == 0 {
		return nil
	}
	fmt.Fprintf(w, "identifiers: %s\n", strings.Join(ids, ", "))
	for _, id := range ids {
		if _, ok := table.Lookup(id); !ok {
			logger.Warn("Identifier is not a character class and will be emitted verbatim",
				zap.String("identifier", id),
				zap.Int("occurrences", registry.Count(id)))
		}
	}
	return nil
}
