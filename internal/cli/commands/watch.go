package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flamekit/flamekit/internal/cli/config"
	"github.com/flamekit/flamekit/internal/cli/ui"
	"github.com/flamekit/flamekit/internal/compiler/cache"
	"github.com/flamekit/flamekit/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(flags *globalFlags) *cobra.Command {
	var delay int

	cmd := &cobra.Command{
		Use:   "watch <program.yaml>",
		Short: "Re-run the transform whenever the program or config changes",
		Long: `Transform a program, then watch it and flamekit.yaml and transform again
after every change. Failed runs are reported and watching continues.

Examples:
  flamekit watch program.yaml
  flamekit watch program.yaml --format json --delay 250`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd, flags, args[0], delay)
		},
	}

	addOutputFlags(cmd)
	cmd.Flags().IntVar(&delay, "delay", 100, "Debounce delay in milliseconds")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, flags *globalFlags, program string, delay int) error {
	s, err := newSession(cmd, flags, outputFlags)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	files := []string{program}
	if cfgPath, err := config.FindConfig(flags.configDir); err == nil {
		files = append(files, cfgPath)
	}

	inputs := cache.New()
	s.outputs = cache.New()
	_, _ = inputs.Refresh(files...)

	// The first run may fail; the user fixes the program and saves
	if err := s.run(cmd, program, false); err != nil && !errors.Is(err, errReported) {
		return err
	}

	fw, err := watch.NewFileWatcher(files, time.Duration(delay)*time.Millisecond, s.logger, func(changed []string) error {
		if ok, err := inputs.Refresh(files...); err == nil && !ok {
			s.logger.Debug("inputs unchanged", zap.Strings("files", changed))
			return nil
		}
		s.logger.Info("change detected", zap.Strings("files", changed))

		// Config edits take effect on the next run
		next, err := newSession(cmd, flags, outputFlags)
		if errors.Is(err, errReported) {
			return nil
		}
		if err != nil {
			return err
		}
		next.logger = s.logger
		next.outputs = s.outputs
		if err := next.run(cmd, program, false); err != nil && !errors.Is(err, errReported) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	cmd.Print(ui.Info("Watching for changes (Ctrl+C to stop)", s.noColor))
	if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
