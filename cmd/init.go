package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/unix-beard/pgen/internal/config"
)

var initForce bool

// initCmd: pgen init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if configurationPath == "" {
		configurationPath = config.DefaultPath
	}

	if !force {
		_, err := os.Stat(configurationPath)
		if err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return config.Write(configurationPath, config.Default())
}
