package guard

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

// Identities assigns UIDs to declarations
type Identities interface {
	UID(decl *ast.Declaration) (string, error)
}

// Arena holds named validators addressed by key, in definition order
type Arena struct {
	entries map[string]Expr
	order   []string
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{entries: make(map[string]Expr)}
}

// Lookup returns the validator stored under key
func (a *Arena) Lookup(key string) (Expr, bool) {
	e, ok := a.entries[key]
	return e, ok
}

// Len returns the number of stored validators
func (a *Arena) Len() int {
	return len(a.order)
}

// Keys lists keys in definition order, starting at index from
func (a *Arena) Keys(from int) []string {
	if from >= len(a.order) {
		return nil
	}
	out := make([]string, len(a.order)-from)
	copy(out, a.order[from:])
	return out
}

func (a *Arena) define(key string, e Expr) {
	if _, ok := a.entries[key]; !ok {
		a.order = append(a.order, key)
	}
	a.entries[key] = e
}

// Warning records a place where a guard degraded to always-accept
type Warning struct {
	Type   types.Type
	Reason string
}

// NamedGuard is the compiled guard of one field of an object shape
type NamedGuard struct {
	Name     string
	Optional bool
	Guard    Expr
}

// Compiler compiles types into validator trees. Named interfaces and aliases
// are compiled once into the arena and referenced by key from every use
// site, so recursive types terminate and repeated compilation is idempotent.
type Compiler struct {
	ids      Identities
	arena    *Arena
	visiting map[string]bool
	warnings []Warning
}

// NewCompiler creates a compiler writing named validators into arena
func NewCompiler(ids Identities, arena *Arena) *Compiler {
	if arena == nil {
		arena = NewArena()
	}
	return &Compiler{
		ids:      ids,
		arena:    arena,
		visiting: make(map[string]bool),
	}
}

// Arena returns the arena of named validators
func (c *Compiler) Arena() *Arena {
	return c.arena
}

// Warnings returns and clears the warnings recorded since the last call
func (c *Compiler) Warnings() []Warning {
	w := c.warnings
	c.warnings = nil
	return w
}

// CompileGuard compiles one type into a validator tree. It only fails when a
// referenced declaration cannot be given a UID.
func (c *Compiler) CompileGuard(t types.Type) (Expr, error) {
	return c.compile(t)
}

// CompileGuards compiles each field of an object-shaped type. Types that are
// not object-shaped yield no guards; unrepresentable ones also record a
// warning.
func (c *Compiler) CompileGuards(shape types.Type) ([]NamedGuard, error) {
	fields, ok := types.Fields(shape)
	if !ok {
		switch shape.Kind() {
		case types.KindUnrepresentable, types.KindDeferred:
			c.warn(shape)
		}
		return nil, nil
	}

	out := make([]NamedGuard, 0, len(fields))
	for _, f := range fields {
		g, err := c.compile(f.Type)
		if err != nil {
			return nil, err
		}
		if f.Optional {
			g = Optional(g)
		}
		out = append(out, NamedGuard{Name: f.Name, Optional: f.Optional, Guard: g})
	}
	return out, nil
}

//nolint:gocyclo // One case per TypeModel variant
func (c *Compiler) compile(t types.Type) (Expr, error) {
	switch t := t.(type) {
	case *types.PrimitiveType:
		switch t.Name {
		case types.Any, types.Unknown:
			return &Always{}, nil
		case types.Never:
			return &Any{}, nil
		}
		return &TypeOf{Tag: t.Name}, nil

	case *types.LiteralType:
		return &Literal{Value: t.Value}, nil

	case *types.UnionType:
		if values, ok := literalSet(t); ok {
			return &OneOf{Values: values}, nil
		}
		items, err := c.compileAll(t.Members)
		if err != nil {
			return nil, err
		}
		return &Any{Items: items}, nil

	case *types.IntersectionType:
		items, err := c.compileAll(t.Members)
		if err != nil {
			return nil, err
		}
		return &All{Items: items}, nil

	case *types.ArrayType:
		elem, err := c.compile(t.Element)
		if err != nil {
			return nil, err
		}
		return &ArrayOf{Elem: elem}, nil

	case *types.TupleType:
		elems, err := c.compileAll(t.Elements)
		if err != nil {
			return nil, err
		}
		return &Tuple{Elems: elems}, nil

	case *types.ObjectType:
		fields := make([]Field, 0, len(t.Fields))
		for _, f := range t.Fields {
			g, err := c.compile(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: f.Name, Optional: f.Optional, Guard: g})
		}
		return &Shape{Fields: fields}, nil

	case *types.ReferenceType:
		return c.compileReference(t)

	case *types.DeferredType:
		return c.warn(t), nil

	case *types.UnrepresentableType:
		return c.warn(t), nil
	}

	return c.warn(types.NewUnrepresentable("unknown type %T", t)), nil
}

func (c *Compiler) compileAll(ts []types.Type) ([]Expr, error) {
	out := make([]Expr, 0, len(ts))
	for _, t := range ts {
		g, err := c.compile(t)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (c *Compiler) compileReference(r *types.ReferenceType) (Expr, error) {
	uid, err := c.ids.UID(r.Decl)
	if err != nil {
		return nil, err
	}
	if r.IsClass() {
		return &InstanceOf{UID: uid}, nil
	}

	key := uid
	if len(r.Args) > 0 {
		key = uid + "<" + joinTypes(r.Args) + ">"
	}
	if _, ok := c.arena.Lookup(key); ok || c.visiting[key] {
		return &Ref{Key: key}, nil
	}
	if r.Target == nil {
		return c.warn(types.NewUnrepresentable("%s has no body", r.Decl.Name)), nil
	}

	c.visiting[key] = true
	body, err := c.compile(r.Target)
	delete(c.visiting, key)
	if err != nil {
		return nil, err
	}
	c.arena.define(key, body)
	return &Ref{Key: key}, nil
}

func (c *Compiler) warn(t types.Type) *Always {
	reason := t.String()
	if u, ok := t.(*types.UnrepresentableType); ok {
		reason = u.Reason
	}
	c.warnings = append(c.warnings, Warning{Type: t, Reason: reason})
	return &Always{Reason: reason}
}

// literalSet returns the values of a union made only of literals
func literalSet(u *types.UnionType) ([]interface{}, bool) {
	values := make([]interface{}, 0, len(u.Members))
	for _, m := range u.Members {
		l, ok := m.(*types.LiteralType)
		if !ok {
			return nil, false
		}
		values = append(values, l.Value)
	}
	return values, true
}

func joinTypes(ts []types.Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}
