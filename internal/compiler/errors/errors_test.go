package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/flamekit/flamekit/internal/compiler/ast"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := []ErrorCode{
		ErrUnresolvedTypeReference, ErrMemberNameCollision, ErrUseBeforeInitialization,
		ErrUnresolvedIdentity, ErrUnrepresentableType, ErrInvalidProgram,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code %s", code)
		}
		seen[code] = true
		if !strings.HasPrefix(string(code), "FLM") {
			t.Errorf("Error code %s does not use the FLM prefix", code)
		}
	}
}

func TestConstructors(t *testing.T) {
	loc := ast.SourceLocation{Line: 4, Column: 7}

	tests := []struct {
		name     string
		err      *CompilerError
		code     ErrorCode
		severity ErrorSeverity
		message  string
	}{
		{"expected type reference", NewExpectedTypeReference(loc, "parameter 'x'"), ErrUnresolvedTypeReference, SeverityError, "expected type reference"},
		{"declaration not found", NewDeclarationNotFound(loc, "Missing"), ErrUnresolvedTypeReference, SeverityError, "could not find declaration for 'Missing'"},
		{"member name collision", NewMemberNameCollision(loc, "onStart"), ErrMemberNameCollision, SeverityError, "member name collision: 'onStart' is already declared"},
		{"use before initialization", NewUseBeforeInitialization(loc, "c", "b"), ErrUseBeforeInitialization, SeverityError, "'c' is used before its initialization"},
		{"unresolved identity", NewUnresolvedIdentity(loc, "Door"), ErrUnresolvedIdentity, SeverityError, "could not assign an identifier to 'Door'"},
		{"unrepresentable type", NewUnrepresentableType(loc, "attribute 'x'", "unbound type parameter T"), ErrUnrepresentableType, SeverityWarning, "reduced safety"},
		{"invalid program", NewInvalidProgram(loc, "bad snippet"), ErrInvalidProgram, SeverityError, "bad snippet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", tt.err.Severity, tt.severity)
			}
			if !strings.Contains(tt.err.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", tt.err.Message, tt.message)
			}
			if tt.err.Location != loc {
				t.Errorf("Location = %v, want %v", tt.err.Location, loc)
			}
			if tt.err.IsFatal() != (tt.severity == SeverityError) {
				t.Errorf("IsFatal() = %v for severity %s", tt.err.IsFatal(), tt.severity)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	err := NewUseBeforeInitialization(ast.SourceLocation{Line: 12, Column: 3}, "c", "b").
		WithFile("src/door.yaml").
		WithClass("Door")

	compact := err.Error()
	want := "src/door.yaml:12:3: error: 'c' is used before its initialization [FLM102]"
	if compact != want {
		t.Errorf("Error() = %q, want %q", compact, want)
	}

	formatted := err.Format()
	for _, part := range []string{"Metadata Error [FLM102]", "Line 12, Column 3", "class Door", "Declare 'c' before 'b'"} {
		if !strings.Contains(formatted, part) {
			t.Errorf("Format() missing %q:\n%s", part, formatted)
		}
	}
}

func TestToJSON(t *testing.T) {
	err := NewMemberNameCollision(ast.SourceLocation{Line: 1, Column: 1}, "onStart").WithClass("Door")

	out, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON() error = %v", jsonErr)
	}

	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal([]byte(out), &decoded); jsonErr != nil {
		t.Fatalf("invalid JSON: %v", jsonErr)
	}
	if decoded["code"] != "FLM101" || decoded["class"] != "Door" || decoded["category"] != "metadata" {
		t.Errorf("unexpected JSON document: %s", out)
	}
	if _, ok := decoded["file"]; ok {
		t.Errorf("empty file should be omitted: %s", out)
	}
}

func TestErrorList(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	list := ErrorList{
		NewUnrepresentableType(loc, "instance", "function type"),
		NewDeclarationNotFound(loc, "LightService"),
	}

	if !list.HasErrors() || !list.HasWarnings() {
		t.Errorf("expected both errors and warnings")
	}
	errs, warns := list.ErrorCount()
	if errs != 1 || warns != 1 {
		t.Errorf("ErrorCount() = %d, %d; want 1, 1", errs, warns)
	}
	if !strings.Contains(list.Error(), "1 error(s), 1 warning(s)") {
		t.Errorf("unexpected summary: %s", list.Error())
	}
	if (ErrorList{}).Error() != "no errors" {
		t.Errorf("empty list should report no errors")
	}
}

func TestAsCompilerError(t *testing.T) {
	inner := NewDeclarationNotFound(ast.SourceLocation{Line: 2, Column: 5}, "Missing")
	wrapped := fmt.Errorf("class Door: %w", inner)

	ce, ok := AsCompilerError(wrapped)
	if !ok || ce != inner {
		t.Fatalf("AsCompilerError() did not recover the coded error")
	}

	if _, ok := AsCompilerError(fmt.Errorf("plain")); ok {
		t.Errorf("AsCompilerError() matched a plain error")
	}
}
