package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unix-beard/pgen/generator"
	"github.com/unix-beard/pgen/internal/config"
)

// wait for a while after a change to consider multiple writes as one
const settleDelay = 100 * time.Millisecond

var watchCount int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate samples whenever the configuration file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mode, err := generator.ParseMode(genMode)
		if err != nil {
			return err
		}
		return runWatch(ctx, logger, cmd.OutOrStdout(), cfgFile, charsetFile, watchCount,
			generator.WithMode(mode), generator.WithLogger(logger))
	},
}

func init() {
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 3, "Number of samples per pattern")
	watchCmd.Flags().StringVar(&genMode, "mode", generator.ModeChoice.String(), "How ?, + and * are evaluated (choice or repeat)")
}

func runWatch(ctx context.Context, logger *zap.Logger, w io.Writer, path, charsetPath string, count int, opts ...generator.Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so the directory is watched instead
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	reload := func() {
		cfg, err := loadConfig(logger, path, true)
		if err != nil {
			logger.Error("Error reloading configuration", zap.Error(err))
			return
		}
		if err := renderSamples(w, logger, cfg, charsetPath, count, opts...); err != nil {
			logger.Error("Error rendering samples", zap.Error(err))
		}
	}

	reload()
	logger.Info("Watching configuration", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigChange(event, path) {
				continue
			}
			time.Sleep(settleDelay)
			logger.Debug("Configuration changed", zap.String("op", event.Op.String()))
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func isConfigChange(event fsnotify.Event, path string) bool {
	if filepath.Base(event.Name) != filepath.Base(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// renderSamples prints count values for every pattern in cfg. Patterns that
// fail to compile are reported and skipped.
func renderSamples(w io.Writer, logger *zap.Logger, cfg config.Config, charsetPath string, count int, opts ...generator.Option) error {
	table, err := charsetTable(cfg, charsetPath)
	if err != nil {
		return err
	}
	opts = append([]generator.Option{generator.WithCharset(table)}, opts...)

	for _, src := range configSources(cfg) {
		root, err := compileSource(w, logger, src)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s:\n", src.name)
		for _, value := range generator.New(root, opts...).Take(count) {
			fmt.Fprintf(w, "  %s\n", value)
		}
	}
	return nil
}
