package errors

import (
	"fmt"

	"github.com/flamekit/flamekit/internal/compiler/ast"
)

// Metadata error codes (FLM100-199)
const (
	// ErrUnresolvedTypeReference indicates a constructor parameter or implements
	// clause that is not a simple reference or does not resolve to a declaration
	ErrUnresolvedTypeReference ErrorCode = "FLM100"
	// ErrMemberNameCollision indicates the lifecycle hook name is taken by an unrelated member
	ErrMemberNameCollision ErrorCode = "FLM101"
	// ErrUseBeforeInitialization indicates a field initializer reads a later field
	ErrUseBeforeInitialization ErrorCode = "FLM102"
	// ErrUnresolvedIdentity indicates no UID could be assigned to a declaration
	ErrUnresolvedIdentity ErrorCode = "FLM103"
)

// Guard diagnostic codes (FLM200-299)
const (
	// ErrUnrepresentableType indicates a guard degraded to always-accept
	ErrUnrepresentableType ErrorCode = "FLM200"
)

// Program error codes (FLM300-399)
const (
	// ErrInvalidProgram indicates a malformed program description or snippet
	ErrInvalidProgram ErrorCode = "FLM300"
)

// NewExpectedTypeReference creates a FLM100 error for a type that is not a simple reference
func NewExpectedTypeReference(loc ast.SourceLocation, subject string) *CompilerError {
	return newError(
		ErrUnresolvedTypeReference,
		"unresolved_type_reference",
		CategoryMetadata,
		SeverityError,
		"expected type reference",
		loc,
	).WithSuggestion(fmt.Sprintf("Give %s an explicit type that names a class or interface", subject))
}

// NewDeclarationNotFound creates a FLM100 error for a reference with no declaration
func NewDeclarationNotFound(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrUnresolvedTypeReference,
		"unresolved_type_reference",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("could not find declaration for '%s'", name),
		loc,
	).WithSuggestion("Declare the type in the program description or the runtime prelude")
}

// NewMemberNameCollision creates a FLM101 error
func NewMemberNameCollision(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrMemberNameCollision,
		"member_name_collision",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("member name collision: '%s' is already declared", name),
		loc,
	).WithSuggestion(fmt.Sprintf("Rename the member; '%s' is reserved for the lifecycle hook", name))
}

// NewUseBeforeInitialization creates a FLM102 error. used is the field read
// by the initializer of field.
func NewUseBeforeInitialization(loc ast.SourceLocation, used, field string) *CompilerError {
	return newError(
		ErrUseBeforeInitialization,
		"use_before_initialization",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("'%s' is used before its initialization", used),
		loc,
	).WithSuggestion(fmt.Sprintf("Declare '%s' before '%s'", used, field))
}

// NewUnresolvedIdentity creates a FLM103 error
func NewUnresolvedIdentity(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrUnresolvedIdentity,
		"unresolved_identity",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("could not assign an identifier to '%s'", name),
		loc,
	)
}

// NewUnrepresentableType creates a FLM200 warning
func NewUnrepresentableType(loc ast.SourceLocation, subject, reason string) *CompilerError {
	return newError(
		ErrUnrepresentableType,
		"unrepresentable_type",
		CategoryGuard,
		SeverityWarning,
		fmt.Sprintf("reduced safety: guard for %s always accepts (%s)", subject, reason),
		loc,
	).WithSuggestion("Use a type built from primitives, literals, shapes and named declarations")
}

// NewInvalidProgram creates a FLM300 error
func NewInvalidProgram(loc ast.SourceLocation, message string) *CompilerError {
	return newError(
		ErrInvalidProgram,
		"invalid_program",
		CategoryProgram,
		SeverityError,
		message,
		loc,
	)
}
