// Package guard compiles TypeModel types into validator expression trees and
// evaluates those trees against runtime values.
//
// Trees print in the combinator syntax of the runtime type-checking library
// (t.string, t.union(...), t.interface({...})), which is what the emitter writes
// into registration statements.
package guard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
)

// Kind enumerates validator node kinds
type Kind int

const (
	// KindTypeOf checks a runtime type tag
	KindTypeOf Kind = iota
	// KindLiteral checks equality with one literal
	KindLiteral
	// KindOneOf checks membership in a literal set
	KindOneOf
	// KindAll requires every item to pass
	KindAll
	// KindAny requires at least one item to pass
	KindAny
	// KindShape checks named fields of an object
	KindShape
	// KindArrayOf checks every element of an array
	KindArrayOf
	// KindTuple checks each position of a fixed-length array
	KindTuple
	// KindInstanceOf checks class membership
	KindInstanceOf
	// KindRef defers to a named validator in the arena
	KindRef
	// KindAlways accepts every value
	KindAlways
)

func (k Kind) String() string {
	switch k {
	case KindTypeOf:
		return "typeof"
	case KindLiteral:
		return "literal"
	case KindOneOf:
		return "oneOf"
	case KindAll:
		return "all"
	case KindAny:
		return "any"
	case KindShape:
		return "shape"
	case KindArrayOf:
		return "arrayOf"
	case KindTuple:
		return "tuple"
	case KindInstanceOf:
		return "instanceOf"
	case KindRef:
		return "ref"
	case KindAlways:
		return "always"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Expr is a validator expression tree node. Trees are immutable once built.
type Expr interface {
	Kind() Kind
	String() string
}

// TypeOf checks the runtime type tag of a value
type TypeOf struct {
	Tag string
}

// Literal checks equality with a string, float64 or bool value
type Literal struct {
	Value interface{}
}

// OneOf checks that a value equals one of Values
type OneOf struct {
	Values []interface{}
}

// All is a logical AND
type All struct {
	Items []Expr
}

// Any is a logical OR. An empty Any rejects every value.
type Any struct {
	Items []Expr
}

// Field is one named check of a Shape
type Field struct {
	Name     string
	Optional bool
	Guard    Expr
}

// Shape checks the named fields of an object. Fields not listed are ignored.
type Shape struct {
	Fields []Field
}

// ArrayOf checks that a value is an array whose elements all pass Elem
type ArrayOf struct {
	Elem Expr
}

// Tuple checks a fixed-length array position by position
type Tuple struct {
	Elems []Expr
}

// InstanceOf checks that a value is an instance of the class with UID
type InstanceOf struct {
	UID string
}

// Ref defers to the arena validator stored under Key
type Ref struct {
	Key string
}

// Always accepts every value. A non-empty Reason marks reduced safety.
type Always struct {
	Reason string
}

// Kind implements Expr
func (*TypeOf) Kind() Kind { return KindTypeOf }

// Kind implements Expr
func (*Literal) Kind() Kind { return KindLiteral }

// Kind implements Expr
func (*OneOf) Kind() Kind { return KindOneOf }

// Kind implements Expr
func (*All) Kind() Kind { return KindAll }

// Kind implements Expr
func (*Any) Kind() Kind { return KindAny }

// Kind implements Expr
func (*Shape) Kind() Kind { return KindShape }

// Kind implements Expr
func (*ArrayOf) Kind() Kind { return KindArrayOf }

// Kind implements Expr
func (*Tuple) Kind() Kind { return KindTuple }

// Kind implements Expr
func (*InstanceOf) Kind() Kind { return KindInstanceOf }

// Kind implements Expr
func (*Ref) Kind() Kind { return KindRef }

// Kind implements Expr
func (*Always) Kind() Kind { return KindAlways }

func (g *TypeOf) String() string { return "t." + g.Tag }

func (g *Literal) String() string { return "t.literal(" + ast.FormatLiteral(g.Value) + ")" }

func (g *OneOf) String() string {
	parts := make([]string, len(g.Values))
	for i, v := range g.Values {
		parts[i] = ast.FormatLiteral(v)
	}
	return "t.literal(" + strings.Join(parts, ", ") + ")"
}

func (g *All) String() string { return "t.intersection(" + join(g.Items) + ")" }

func (g *Any) String() string {
	if len(g.Items) == 0 {
		return "t.never"
	}
	return "t.union(" + join(g.Items) + ")"
}

func (g *Shape) String() string {
	if len(g.Fields) == 0 {
		return "t.interface({})"
	}
	parts := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		inner := f.Guard.String()
		if f.Optional {
			inner = "t.optional(" + inner + ")"
		}
		parts[i] = formatKey(f.Name) + ": " + inner
	}
	return "t.interface({ " + strings.Join(parts, ", ") + " })"
}

func (g *ArrayOf) String() string { return "t.array(" + g.Elem.String() + ")" }

func (g *Tuple) String() string { return "t.tuple(" + join(g.Elems) + ")" }

func (g *InstanceOf) String() string { return "t.instanceOf(" + strconv.Quote(g.UID) + ")" }

func (g *Ref) String() string { return "t.ref(" + strconv.Quote(g.Key) + ")" }

func (g *Always) String() string { return "t.any" }

func join(items []Expr) string {
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func formatKey(name string) string {
	for i, r := range name {
		ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

// Optional wraps g so that an absent value also passes
func Optional(g Expr) Expr {
	return &Any{Items: []Expr{&TypeOf{Tag: "undefined"}, g}}
}

// Reasons collects the reduced-safety reasons of every Always node in e.
// Arena validators behind Ref nodes are not visited.
func Reasons(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *Always:
			if e.Reason != "" {
				out = append(out, e.Reason)
			}
		case *All:
			for _, i := range e.Items {
				walk(i)
			}
		case *Any:
			for _, i := range e.Items {
				walk(i)
			}
		case *Shape:
			for _, f := range e.Fields {
				walk(f.Guard)
			}
		case *ArrayOf:
			walk(e.Elem)
		case *Tuple:
			for _, i := range e.Elems {
				walk(i)
			}
		}
	}
	walk(e)
	return out
}
