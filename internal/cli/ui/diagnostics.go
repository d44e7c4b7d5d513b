// Package ui renders diagnostics, summaries and registry views for the
// terminal using fatih/color.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/flamekit/flamekit/internal/compiler/errors"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures message formatting
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func palette(level Level, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case LevelWarning:
		header = color.New(color.FgYellow, color.Bold)
		body = color.New(color.FgYellow)
		symbol = "⚠️"
	case LevelInfo:
		header = color.New(color.FgCyan, color.Bold)
		body = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		header = color.New(color.FgRed, color.Bold)
		body = color.New(color.FgRed)
		symbol = "❌"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// FormatMessage creates a standardized message with suggestions and help
// commands
//
// Example output:
//
//	❌ CLASS NOT FOUND
//	   Cannot find class 'Dor'.
//
//	   Did you mean: Door?
//
//	   → List classes: flamekit inspect program.yaml
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder
	header, body, symbol := palette(opts.Level, opts.NoColor)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		body.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Detail != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Detail)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// FormatDiagnostic renders a coded compiler diagnostic
func FormatDiagnostic(e *errors.CompilerError, noColor bool) string {
	level := LevelError
	if !e.IsFatal() {
		level = LevelWarning
	}

	file := e.File
	if file == "" {
		file = "<program>"
	}
	problem := e.Message
	if e.Class != "" {
		problem = fmt.Sprintf("class %s: %s", e.Class, e.Message)
	}

	var help []string
	if e.Suggestion != "" {
		help = []string{e.Suggestion}
	}

	return FormatMessage(MessageOptions{
		Level:        level,
		Context:      fmt.Sprintf("%s [%s]", e.Type, e.Code),
		Problem:      problem,
		Detail:       fmt.Sprintf("at %s:%d:%d", file, e.Location.Line, e.Location.Column),
		HelpCommands: help,
		NoColor:      noColor,
	})
}

// WriteDiagnostics writes every diagnostic of list, errors before warnings
func WriteDiagnostics(w io.Writer, list errors.ErrorList, noColor bool) {
	for _, fatal := range []bool{true, false} {
		for _, e := range list {
			if e.IsFatal() == fatal {
				fmt.Fprint(w, FormatDiagnostic(e, noColor))
			}
		}
	}
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// Summary describes a finished transform
type Summary struct {
	Classes   int
	Rewritten int
	Guards    int
	Warnings  int
	Files     []string
}

// WriteSummary writes the result line of a transform and the files written
func WriteSummary(w io.Writer, s Summary, noColor bool) {
	msg := fmt.Sprintf("Transformed %d class(es): %d rewritten, %d guard(s)", s.Classes, s.Rewritten, s.Guards)
	WriteSuccess(w, msg, noColor)
	if s.Warnings > 0 {
		fmt.Fprint(w, Warning(fmt.Sprintf("%d guard(s) accept any value", s.Warnings), noColor))
	}
	for _, f := range s.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

// ClassNotFoundError reports an unknown class name
func ClassNotFoundError(name, program string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "class not found",
		Problem:     fmt.Sprintf("Cannot find class '%s'.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List classes: flamekit inspect " + program,
		},
		NoColor: noColor,
	})
}

// ConfigError reports an invalid flamekit.yaml
func ConfigError(message string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelError,
		Context: "configuration error",
		Problem: message,
		HelpCommands: []string{
			"View config: cat flamekit.yaml",
			"Recreate it: flamekit init",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatMessage(MessageOptions{Level: LevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatMessage(MessageOptions{Level: LevelInfo, Problem: message, NoColor: noColor})
}
