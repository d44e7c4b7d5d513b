package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flamekit/flamekit/internal/cli/config"
	"github.com/flamekit/flamekit/internal/cli/ui"
	"github.com/flamekit/flamekit/internal/compiler/cache"
	compilererrors "github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/loader"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

// session carries what one command invocation needs: the resolved
// configuration and the logger built from it
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	noColor bool
	// outputs skips rewriting unchanged files in watch mode; nil writes always
	outputs *cache.Cache
}

// newSession loads configuration from flags.configDir, applies the command's
// bound flags and builds the logger
func newSession(cmd *cobra.Command, flags *globalFlags, bind map[string]string) (*session, error) {
	v := config.New(configDir(flags.configDir))
	for key, flag := range bind {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		cmd.PrintErr(ui.ConfigError(err.Error(), flags.noColor || color.NoColor))
		return nil, errReported
	}

	logger, err := newLogger(cfg.Log, flags.verbose)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		noColor: flags.noColor || color.NoColor,
	}, nil
}

// configDir returns the directory of the nearest flamekit.yaml at or above
// dir, or dir itself when there is none
func configDir(dir string) string {
	if path, err := config.FindConfig(dir); err == nil {
		return filepath.Dir(path)
	}
	return dir
}

// newLogger builds a development logger when requested, otherwise a
// production logger at the configured level writing console lines
func newLogger(c config.LogConfig, verbose bool) (*zap.Logger, error) {
	if verbose || c.Development {
		return zap.NewDevelopment()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", c.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.DisableStacktrace = true
	return zc.Build()
}

// transform loads a program description and runs one unit over it
func (s *session) transform(path string) (*transform.Output, error) {
	program, err := loader.New(s.cfg.Runtime.Module).LoadFile(path)
	if err != nil {
		return nil, err
	}
	return transform.New(program, s.cfg.Options(), s.logger).Run()
}

// report prints a fatal diagnostic and returns errReported, or returns err
// unchanged when it carries no diagnostic
func (s *session) report(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := compilererrors.AsCompilerError(err); ok {
		cmd.PrintErr(ui.FormatDiagnostic(ce, s.noColor))
		return errReported
	}
	return err
}
