package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flamekit/flamekit/internal/cli/config"
	"github.com/flamekit/flamekit/internal/cli/ui"
	"github.com/flamekit/flamekit/internal/compiler/cache"
	"github.com/flamekit/flamekit/internal/compiler/codegen"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

// JSONFileName is the document written by --format json
const JSONFileName = "flamekit.json"

// outputFlags maps config keys to the transform and watch flags overriding them
var outputFlags = map[string]string{
	"output.format":   "format",
	"output.dir":      "out",
	"output.compress": "compress",
}

// NewTransformCommand creates the transform command
func NewTransformCommand(flags *globalFlags) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "transform <program.yaml>",
		Short: "Emit metadata registrations and rewritten classes",
		Long: `Transform every class of a program description.

Each class gets its metadata records; component classes are rewritten so
field initializers and constructor logic run in the lifecycle hook. The
text format writes one file per source file, the json format a single
document.

Examples:
  flamekit transform program.yaml
  flamekit transform program.yaml --format json --compress
  flamekit transform program.yaml --stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, flags, outputFlags)
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()

			return s.run(cmd, args[0], stdout)
		},
	}

	addOutputFlags(cmd)
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print output instead of writing files")
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", config.FormatText, "Output format (text or json)")
	cmd.Flags().String("out", "", "Output directory (default output.dir)")
	cmd.Flags().Bool("compress", false, "Gzip the json document")
}

// run transforms program once and writes or prints the result
func (s *session) run(cmd *cobra.Command, program string, stdout bool) error {
	out, err := s.transform(program)
	if err != nil {
		return s.report(cmd, err)
	}

	if stdout {
		return s.print(cmd, out)
	}

	files, err := s.write(out)
	if err != nil {
		return err
	}
	ui.WriteSummary(cmd.OutOrStdout(), summarize(out, files), s.noColor)
	return nil
}

func (s *session) print(cmd *cobra.Command, out *transform.Output) error {
	w := cmd.OutOrStdout()
	if s.cfg.Output.Format == config.FormatJSON {
		data, err := codegen.JSON(out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	files, order := codegen.NewEmitter(s.cfg.Runtime.Module).GenerateUnit(out)
	for i, source := range order {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "// %s\n%s", source, files[source])
	}
	return nil
}

// write emits out under the configured directory and returns the paths
// written. In watch mode files whose content is unchanged are skipped.
func (s *session) write(out *transform.Output) ([]string, error) {
	dir := s.cfg.Output.Dir

	if s.cfg.Output.Format == config.FormatJSON {
		data, err := codegen.JSON(out)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, JSONFileName)
		if s.cfg.Output.Compress {
			path += ".gz"
		}
		if !s.stale(path, data) {
			return nil, nil
		}
		if err := codegen.WriteFile(path, data, s.cfg.Output.Compress); err != nil {
			s.forget(path)
			return nil, err
		}
		return []string{path}, nil
	}

	files, order := codegen.NewEmitter(s.cfg.Runtime.Module).GenerateUnit(out)
	written := make([]string, 0, len(order))
	for _, source := range order {
		path := filepath.FromSlash(codegen.OutputPath(filepath.ToSlash(dir), source))
		data := []byte(files[source])
		if !s.stale(path, data) {
			continue
		}
		if err := codegen.WriteFile(path, data, false); err != nil {
			s.forget(path)
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// stale reports whether path must be written with data
func (s *session) stale(path string, data []byte) bool {
	if s.outputs == nil {
		return true
	}
	if s.outputs.Changed(path, cache.HashContent(data)) {
		return true
	}
	s.logger.Debug("output unchanged", zap.String("path", path))
	return false
}

func (s *session) forget(path string) {
	if s.outputs != nil {
		s.outputs.Invalidate(path)
	}
}

func summarize(out *transform.Output, files []string) ui.Summary {
	s := ui.Summary{
		Classes:  len(out.Classes),
		Guards:   out.Arena.Len(),
		Warnings: len(out.Warnings),
		Files:    files,
	}
	for _, c := range out.Classes {
		if c.Rewritten {
			s.Rewritten++
		}
	}
	return s
}
