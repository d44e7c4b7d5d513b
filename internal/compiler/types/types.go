// Package types implements the semantic type model that guards are compiled from.
// The variant set is closed: every Type is one of the structs in this file.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
)

// Kind enumerates the TypeModel variants
type Kind int

const (
	// KindPrimitive is a built-in runtime tag (string, number, ...)
	KindPrimitive Kind = iota
	// KindLiteral is a single literal value
	KindLiteral
	// KindUnion is A | B
	KindUnion
	// KindIntersection is A & B
	KindIntersection
	// KindTuple is a fixed-length positional list
	KindTuple
	// KindArray is a homogeneous list
	KindArray
	// KindObject is an object shape with named fields
	KindObject
	// KindReference is a named declaration
	KindReference
	// KindDeferred is a type left to inference at a later stage
	KindDeferred
	// KindUnrepresentable is anything the static grammar cannot express
	KindUnrepresentable
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	case KindDeferred:
		return "deferred"
	case KindUnrepresentable:
		return "unrepresentable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Primitive type names
const (
	String    = "string"
	Number    = "number"
	Boolean   = "boolean"
	BigInt    = "bigint"
	Symbol    = "symbol"
	Undefined = "undefined"
	Null      = "null"
	ObjectTag = "object"
	Any       = "any"
	Unknown   = "unknown"
	Never     = "never"
)

var primitiveNames = map[string]bool{
	String: true, Number: true, Boolean: true, BigInt: true, Symbol: true,
	Undefined: true, Null: true, ObjectTag: true, Any: true, Unknown: true, Never: true,
	"void": true,
}

// IsPrimitiveName reports whether name is a built-in primitive type name
func IsPrimitiveName(name string) bool {
	return primitiveNames[name]
}

// Type is a semantic type description. Types are immutable once built.
type Type interface {
	// Kind returns the variant tag
	Kind() Kind

	// String returns the human-readable representation of the type
	String() string

	// Equals reports structural identity (not assignability)
	Equals(other Type) bool

	// IsAssignableFrom reports whether a value of type other can be assigned to this type
	IsAssignableFrom(other Type) bool
}

// PrimitiveType represents a built-in runtime type tag
type PrimitiveType struct {
	Name string
}

// NewPrimitiveType creates a primitive type. "void" is normalized to undefined.
func NewPrimitiveType(name string) *PrimitiveType {
	if name == "void" {
		name = Undefined
	}
	return &PrimitiveType{Name: name}
}

// Kind implements Type
func (p *PrimitiveType) Kind() Kind { return KindPrimitive }

func (p *PrimitiveType) String() string { return p.Name }

// Equals checks if two primitive types are the same tag
func (p *PrimitiveType) Equals(other Type) bool {
	o, ok := other.(*PrimitiveType)
	return ok && o.Name == p.Name
}

// IsAssignableFrom implements Type
func (p *PrimitiveType) IsAssignableFrom(other Type) bool {
	return isAssignable(p, other, newSeen())
}

// IsTop reports whether the primitive accepts every value
func (p *PrimitiveType) IsTop() bool {
	return p.Name == Any || p.Name == Unknown
}

// LiteralType represents a single literal value (string, float64 or bool)
type LiteralType struct {
	Value interface{}
}

// NewLiteralType creates a literal type
func NewLiteralType(value interface{}) *LiteralType {
	return &LiteralType{Value: value}
}

// Kind implements Type
func (l *LiteralType) Kind() Kind { return KindLiteral }

func (l *LiteralType) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Equals checks if two literal types hold the same value
func (l *LiteralType) Equals(other Type) bool {
	o, ok := other.(*LiteralType)
	return ok && o.Value == l.Value
}

// IsAssignableFrom implements Type
func (l *LiteralType) IsAssignableFrom(other Type) bool {
	return isAssignable(l, other, newSeen())
}

// Tag returns the primitive tag of the literal's value
func (l *LiteralType) Tag() string {
	switch l.Value.(type) {
	case string:
		return String
	case float64:
		return Number
	case bool:
		return Boolean
	default:
		return Unknown
	}
}

// UnionType represents A | B | ...
type UnionType struct {
	Members []Type
}

// NewUnionType creates a union. A single-member union collapses to that member.
func NewUnionType(members ...Type) Type {
	if len(members) == 1 {
		return members[0]
	}
	return &UnionType{Members: members}
}

// Kind implements Type
func (u *UnionType) Kind() Kind { return KindUnion }

func (u *UnionType) String() string {
	return joinTypes(u.Members, " | ")
}

// Equals compares members in order
func (u *UnionType) Equals(other Type) bool {
	o, ok := other.(*UnionType)
	return ok && equalLists(u.Members, o.Members)
}

// IsAssignableFrom implements Type
func (u *UnionType) IsAssignableFrom(other Type) bool {
	return isAssignable(u, other, newSeen())
}

// IntersectionType represents A & B & ...
type IntersectionType struct {
	Members []Type
}

// NewIntersectionType creates an intersection. A single member collapses to that member.
func NewIntersectionType(members ...Type) Type {
	if len(members) == 1 {
		return members[0]
	}
	return &IntersectionType{Members: members}
}

// Kind implements Type
func (i *IntersectionType) Kind() Kind { return KindIntersection }

func (i *IntersectionType) String() string {
	return joinTypes(i.Members, " & ")
}

// Equals compares members in order
func (i *IntersectionType) Equals(other Type) bool {
	o, ok := other.(*IntersectionType)
	return ok && equalLists(i.Members, o.Members)
}

// IsAssignableFrom implements Type
func (i *IntersectionType) IsAssignableFrom(other Type) bool {
	return isAssignable(i, other, newSeen())
}

// TupleType represents [A, B, ...]
type TupleType struct {
	Elements []Type
}

// NewTupleType creates a tuple type
func NewTupleType(elements ...Type) *TupleType {
	return &TupleType{Elements: elements}
}

// Kind implements Type
func (t *TupleType) Kind() Kind { return KindTuple }

func (t *TupleType) String() string {
	return "[" + joinTypes(t.Elements, ", ") + "]"
}

// Equals compares element types position by position
func (t *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	return ok && equalLists(t.Elements, o.Elements)
}

// IsAssignableFrom implements Type
func (t *TupleType) IsAssignableFrom(other Type) bool {
	return isAssignable(t, other, newSeen())
}

// ArrayType represents T[]
type ArrayType struct {
	Element Type
}

// NewArrayType creates an array type
func NewArrayType(element Type) *ArrayType {
	return &ArrayType{Element: element}
}

// Kind implements Type
func (a *ArrayType) Kind() Kind { return KindArray }

func (a *ArrayType) String() string {
	switch a.Element.Kind() {
	case KindUnion, KindIntersection:
		return "(" + a.Element.String() + ")[]"
	}
	return a.Element.String() + "[]"
}

// Equals checks element identity
func (a *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.Element.Equals(o.Element)
}

// IsAssignableFrom implements Type
func (a *ArrayType) IsAssignableFrom(other Type) bool {
	return isAssignable(a, other, newSeen())
}

// Field is a named member of an object shape
type Field struct {
	Name     string
	Type     Type
	Optional bool
}

// ObjectType represents an object shape. Field order is declaration order.
type ObjectType struct {
	Fields []Field
}

// NewObjectType creates an object shape
func NewObjectType(fields ...Field) *ObjectType {
	return &ObjectType{Fields: fields}
}

// Kind implements Type
func (o *ObjectType) Kind() Kind { return KindObject }

func (o *ObjectType) String() string {
	if len(o.Fields) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", f.Name, opt, f.Type.String()))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Equals checks if two shapes have identical fields, independent of order
func (o *ObjectType) Equals(other Type) bool {
	oo, ok := other.(*ObjectType)
	if !ok || len(o.Fields) != len(oo.Fields) {
		return false
	}
	for _, f := range o.Fields {
		of, ok := oo.Field(f.Name)
		if !ok || of.Optional != f.Optional || !f.Type.Equals(of.Type) {
			return false
		}
	}
	return true
}

// IsAssignableFrom implements Type
func (o *ObjectType) IsAssignableFrom(other Type) bool {
	return isAssignable(o, other, newSeen())
}

// Field looks up a field by name
func (o *ObjectType) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ReferenceType refers to a named declaration. For interfaces and aliases,
// Target is the resolved body; for classes, Target is nil and Bases lists the
// ancestor classes nearest first.
type ReferenceType struct {
	Decl   *ast.Declaration
	Args   []Type
	Target Type
	Bases  []*ast.Declaration
}

// Kind implements Type
func (r *ReferenceType) Kind() Kind { return KindReference }

func (r *ReferenceType) String() string {
	if len(r.Args) == 0 {
		return r.Decl.Name
	}
	return r.Decl.Name + "<" + joinTypes(r.Args, ", ") + ">"
}

// Equals checks declaration identity and type arguments
func (r *ReferenceType) Equals(other Type) bool {
	o, ok := other.(*ReferenceType)
	return ok && o.Decl == r.Decl && equalLists(r.Args, o.Args)
}

// IsAssignableFrom implements Type
func (r *ReferenceType) IsAssignableFrom(other Type) bool {
	return isAssignable(r, other, newSeen())
}

// IsClass reports whether the reference names a class
func (r *ReferenceType) IsClass() bool {
	return r.Decl.Kind == ast.DeclClass
}

// Inherits reports whether the referenced class is decl or derives from it
func (r *ReferenceType) Inherits(decl *ast.Declaration) bool {
	if r.Decl == decl {
		return true
	}
	for _, b := range r.Bases {
		if b == decl {
			return true
		}
	}
	return false
}

// DeferredType is a type known only after inference (`typeof expr`).
// Guards for it always accept.
type DeferredType struct {
	Source string
}

// Kind implements Type
func (d *DeferredType) Kind() Kind { return KindDeferred }

func (d *DeferredType) String() string {
	if d.Source == "" {
		return "<deferred>"
	}
	return "typeof " + d.Source
}

// Equals is false: two deferred types are never known to be identical
func (d *DeferredType) Equals(other Type) bool { return false }

// IsAssignableFrom implements Type
func (d *DeferredType) IsAssignableFrom(other Type) bool { return false }

// UnrepresentableType stands for anything outside the static grammar
// (unbound generics, conditional and function types).
type UnrepresentableType struct {
	Reason string
}

// NewUnrepresentable creates an unrepresentable type with a reason
func NewUnrepresentable(format string, args ...interface{}) *UnrepresentableType {
	return &UnrepresentableType{Reason: fmt.Sprintf(format, args...)}
}

// Kind implements Type
func (u *UnrepresentableType) Kind() Kind { return KindUnrepresentable }

func (u *UnrepresentableType) String() string {
	return "<unrepresentable: " + u.Reason + ">"
}

// Equals is false: identity cannot be established
func (u *UnrepresentableType) Equals(other Type) bool { return false }

// IsAssignableFrom implements Type
func (u *UnrepresentableType) IsAssignableFrom(other Type) bool { return false }

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func equalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Fields enumerates the named fields of an object-shaped type, looking through
// named references and merging intersections. Later members of an
// intersection override earlier ones. A type that contains itself has no
// field list.
func Fields(t Type) ([]Field, bool) {
	return collectFields(t, make(map[Type]bool))
}

func collectFields(t Type, visiting map[Type]bool) ([]Field, bool) {
	if visiting[t] {
		return nil, false
	}
	switch t := t.(type) {
	case *ObjectType:
		return t.Fields, true
	case *ReferenceType:
		if t.Target == nil {
			return nil, false
		}
		visiting[t] = true
		defer delete(visiting, t)
		return collectFields(t.Target, visiting)
	case *IntersectionType:
		visiting[t] = true
		defer delete(visiting, t)
		var merged []Field
		for _, m := range t.Members {
			fields, ok := collectFields(m, visiting)
			if !ok {
				return nil, false
			}
			for _, f := range fields {
				merged = setField(merged, f)
			}
		}
		return merged, true
	}
	return nil, false
}

func setField(fields []Field, f Field) []Field {
	for i := range fields {
		if fields[i].Name == f.Name {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}
