package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flamekit/flamekit/internal/cli/config"
	"github.com/flamekit/flamekit/internal/cli/ui"
	"github.com/flamekit/flamekit/internal/compiler/identity"
	"github.com/flamekit/flamekit/internal/compiler/loader"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
)

// ErrAborted signals the user aborted a prompt
var ErrAborted = errors.New("init aborted")

// prompter asks the init questions. The survey implementation needs a
// terminal; tests substitute their own.
type prompter interface {
	Input(message, def string, validate func(string) error) (string, error)
	Select(message string, options []string, def string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: def}

	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// initFile is the layout of a generated flamekit.yaml
type initFile struct {
	Metadata struct {
		Prefix string `yaml:"prefix"`
	} `yaml:"metadata"`
	Runtime struct {
		Module string `yaml:"module"`
	} `yaml:"runtime"`
	Identity struct {
		Style string `yaml:"style"`
	} `yaml:"identity"`
	Output struct {
		Format string `yaml:"format"`
		Dir    string `yaml:"dir"`
	} `yaml:"output"`
}

// NewInitCommand creates the init command
func NewInitCommand(flags *globalFlags) *cobra.Command {
	return newInitCommand(flags, surveyPrompter{})
}

func newInitCommand(flags *globalFlags, p prompter) *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a flamekit.yaml",
		Long: `Create a flamekit.yaml in the config directory by answering a few
questions. --yes writes the defaults without prompting.

Examples:
  flamekit init
  flamekit init --yes --config-dir ./game`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor := flags.noColor
			path := filepath.Join(flags.configDir, config.FileName+".yaml")

			if _, err := os.Stat(path); err == nil && !force {
				cmd.PrintErr(ui.FormatMessage(ui.MessageOptions{
					Level:        ui.LevelError,
					Context:      "config exists",
					Problem:      fmt.Sprintf("%s already exists.", path),
					HelpCommands: []string{"Overwrite it: flamekit init --force"},
					NoColor:      noColor,
				}))
				return errReported
			}

			file := defaultInitFile()
			if !yes {
				if err := askInit(p, &file); err != nil {
					return err
				}
			}

			data, err := yaml.Marshal(&file)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if err := os.MkdirAll(flags.configDir, 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			// Reload so the file is checked by the same rules every command uses
			if _, err := config.LoadFrom(config.New(flags.configDir)); err != nil {
				cmd.PrintErr(ui.ConfigError(err.Error(), noColor))
				return errReported
			}

			ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, noColor)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing flamekit.yaml")
	return cmd
}

func defaultInitFile() initFile {
	var f initFile
	f.Metadata.Prefix = metadata.DefaultPrefix
	f.Runtime.Module = loader.DefaultRuntimeModule
	f.Identity.Style = string(identity.StylePath)
	f.Output.Format = config.FormatText
	f.Output.Dir = config.DefaultOutputDir
	return f
}

func askInit(p prompter, f *initFile) error {
	var err error

	f.Metadata.Prefix, err = p.Input("Metadata key prefix:", f.Metadata.Prefix, validatePrefix)
	if err != nil {
		return err
	}
	f.Runtime.Module, err = p.Input("Component runtime module:", f.Runtime.Module, nil)
	if err != nil {
		return err
	}
	f.Identity.Style, err = p.Select("Identifier style:",
		[]string{string(identity.StylePath), string(identity.StyleHashed)}, f.Identity.Style)
	if err != nil {
		return err
	}
	f.Output.Format, err = p.Select("Output format:",
		[]string{config.FormatText, config.FormatJSON}, f.Output.Format)
	if err != nil {
		return err
	}
	f.Output.Dir, err = p.Input("Output directory:", f.Output.Dir, nil)
	return err
}

func validatePrefix(s string) error {
	if s == "" {
		return errors.New("prefix must not be empty")
	}
	if strings.Contains(s, ":") {
		return errors.New("prefix must not contain ':'")
	}
	return nil
}
