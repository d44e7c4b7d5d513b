package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flamekit/flamekit/internal/cli/ui"
	"github.com/flamekit/flamekit/internal/compiler/guard"
	"github.com/flamekit/flamekit/internal/compiler/transform"
	"github.com/flamekit/flamekit/runtime/reflect"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand(flags *globalFlags) *cobra.Command {
	var (
		className string
		guardKey  string
		value     string
	)

	cmd := &cobra.Command{
		Use:   "inspect <program.yaml>",
		Short: "Show the metadata and guards synthesized for a program",
		Long: `Inspect the result of a transform without writing anything.

Without flags every class is listed. --class shows the metadata records and
guards of one class. --guard checks a JSON value against a named guard
after loading the program's registrations into a reflection registry.

Examples:
  flamekit inspect program.yaml
  flamekit inspect program.yaml --class Door
  flamekit inspect program.yaml --guard src/door@Hinge --value '{"angle": 90}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()

			out, err := s.transform(args[0])
			if err != nil {
				return s.report(cmd, err)
			}

			switch {
			case guardKey != "":
				return s.checkGuard(cmd, out, guardKey, value)
			case className != "":
				return s.showClass(cmd, out, args[0], className)
			default:
				s.listClasses(cmd, out)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&className, "class", "", "Class to show")
	cmd.Flags().StringVar(&guardKey, "guard", "", "Guard key to validate against")
	cmd.Flags().StringVar(&value, "value", "null", "JSON value checked by --guard")
	return cmd
}

func (s *session) listClasses(cmd *cobra.Command, out *transform.Output) {
	w := cmd.OutOrStdout()
	ui.Header(w, "Classes", s.noColor)

	table := ui.NewKeyValueTable(w, s.noColor)
	for _, c := range out.Classes {
		desc := c.File
		if c.Rewritten {
			desc += " (rewritten)"
		}
		table.AddRow(c.Class.Name(), desc)
	}
	table.Render()

	if keys := out.Arena.Keys(0); len(keys) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Guards", s.noColor)
		for _, key := range keys {
			fmt.Fprintf(w, "  %s\n", key)
		}
	}
}

func (s *session) showClass(cmd *cobra.Command, out *transform.Output, program, name string) error {
	var found *transform.ClassOutput
	names := make([]string, 0, len(out.Classes))
	for _, c := range out.Classes {
		names = append(names, c.Class.Name())
		if c.Class.Name() == name && found == nil {
			found = c
		}
	}
	if found == nil {
		sort.Strings(names)
		cmd.PrintErr(ui.ClassNotFoundError(name, program, ui.Suggest(name, names), s.noColor))
		return errReported
	}

	w := cmd.OutOrStdout()
	ui.Header(w, found.Class.Name(), s.noColor)

	table := ui.NewKeyValueTable(w, s.noColor)
	table.AddRow("file", found.File)
	table.AddRow("object", reflect.ObjectID(found))
	table.AddRow("rewritten", fmt.Sprint(found.Rewritten))
	table.Render()

	if len(found.Records) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Metadata", s.noColor)
		records := ui.NewKeyValueTable(w, s.noColor)
		for _, rec := range found.Records {
			records.AddRow(rec.Key, rec.Value.String())
		}
		records.Render()
	}

	if len(found.Guards) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Guards", s.noColor)
		guards := ui.NewKeyValueTable(w, s.noColor)
		for _, g := range found.Guards {
			guards.AddRow(g.Key, g.Expr.String())
		}
		guards.Render()
	}
	return nil
}

func (s *session) checkGuard(cmd *cobra.Command, out *transform.Output, key, raw string) error {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("invalid --value: %w", err)
	}

	registry := reflect.New()
	if err := registry.Load(out); err != nil {
		return err
	}

	ok, err := registry.Validate(key, value)
	if err != nil {
		keys := out.Arena.Keys(0)
		cmd.PrintErr(ui.FormatMessage(ui.MessageOptions{
			Level:       ui.LevelError,
			Context:     "guard not found",
			Problem:     err.Error(),
			Suggestions: ui.Suggest(key, keys),
			NoColor:     s.noColor,
		}))
		return errReported
	}
	if !ok {
		cmd.PrintErr(ui.FormatMessage(ui.MessageOptions{
			Level:   ui.LevelError,
			Context: "guard failed",
			Problem: fmt.Sprintf("%s rejects %s", key, raw),
			NoColor: s.noColor,
		}))
		return errReported
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s accepts %s", key, raw), s.noColor)
	if e, found := registry.Guard(key); found {
		if reasons := guard.Reasons(e); len(reasons) > 0 {
			cmd.PrintErr(ui.Warning("Parts of the value were not checked: "+strings.Join(reasons, "; "), s.noColor))
		}
	}
	return nil
}
