// Package inherit decides which generated guards a component class can skip
// because its superclass already declares the same information.
package inherit

import (
	"sort"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/checker"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

// Property names of the component base class
const (
	AttributesProperty = "attributes"
	InstanceProperty   = "instance"
)

// OmissionSet holds field names whose guards must not be emitted
type OmissionSet map[string]struct{}

// Has reports whether name is omitted
func (s OmissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the omitted names, sorted
func (s OmissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Engine compares a class's effective shape with its superclass's declared
// shape. Only the first extends clause is consulted.
type Engine struct {
	checker *checker.Checker
}

// New creates a diff engine backed by c
func New(c *checker.Checker) *Engine {
	return &Engine{checker: c}
}

// ComputeOmissions returns the attribute fields of class that need no guard:
// every name in explicit, plus every field whose type is structurally
// identical to the superclass's field of the same name. A side that cannot be
// resolved contributes nothing.
func (e *Engine) ComputeOmissions(class *ast.ClassDecl, explicit []string) OmissionSet {
	set := make(OmissionSet, len(explicit))
	for _, n := range explicit {
		set[n] = struct{}{}
	}

	super, ok := e.checker.Superclass(class)
	if !ok {
		return set
	}
	sub, ok := e.checker.PropertyType(class, AttributesProperty)
	if !ok {
		return set
	}
	base, ok := e.checker.DeclaredPropertyType(super, AttributesProperty)
	if !ok {
		return set
	}

	subFields, ok := types.Fields(sub)
	if !ok {
		return set
	}
	baseFields, ok := types.Fields(base)
	if !ok {
		return set
	}

	for _, f := range subFields {
		for _, bf := range baseFields {
			if bf.Name == f.Name && bf.Optional == f.Optional && f.Type.Equals(bf.Type) {
				set[f.Name] = struct{}{}
			}
		}
	}
	return set
}

// ShouldOmitInstanceGuard reports whether the instance guard of class adds
// nothing over its superclass: the subclass's instance type accepts every
// value the superclass's declared instance type accepts.
func (e *Engine) ShouldOmitInstanceGuard(class *ast.ClassDecl) bool {
	super, ok := e.checker.Superclass(class)
	if !ok {
		return false
	}
	sub, ok := e.checker.PropertyType(class, InstanceProperty)
	if !ok {
		return false
	}
	base, ok := e.checker.DeclaredPropertyType(super, InstanceProperty)
	if !ok {
		return false
	}
	return e.checker.IsAssignable(sub, base)
}
