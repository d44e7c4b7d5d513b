package metadata

import (
	"strconv"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/guard"
)

// Value is a metadata value. Values print as source expressions.
type Value interface {
	String() string
	value()
}

// String is a string literal value
type String struct {
	Value string
}

// Bool is a boolean literal value
type Bool struct {
	Value bool
}

// List is an array of values
type List struct {
	Items []Value
}

// Entry is one key of an Object
type Entry struct {
	Key   string
	Value Value
}

// Object is an object literal with ordered keys
type Object struct {
	Entries []Entry
}

// Raw is an author expression kept verbatim
type Raw struct {
	Expr ast.Expr
}

// Guard is a compiled validator
type Guard struct {
	Expr guard.Expr
}

func (String) value()  {}
func (Bool) value()    {}
func (*List) value()   {}
func (*Object) value() {}
func (Raw) value()     {}
func (Guard) value()   {}

func (s String) String() string { return strconv.Quote(s.Value) }

func (b Bool) String() string { return strconv.FormatBool(b.Value) }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *Object) String() string {
	if len(o.Entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		parts[i] = formatKey(e.Key) + ": " + e.Value.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (r Raw) String() string { return ast.FormatExpr(r.Expr) }

func (g Guard) String() string { return g.Expr.String() }

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	for _, e := range o.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set replaces the value under key, or appends a new entry
func (o *Object) Set(key string, v Value) {
	for i := range o.Entries {
		if o.Entries[i].Key == key {
			o.Entries[i].Value = v
			return
		}
	}
	o.Entries = append(o.Entries, Entry{Key: key, Value: v})
}

// Prepend inserts an entry first, removing any existing entry for key
func (o *Object) Prepend(key string, v Value) {
	entries := make([]Entry, 0, len(o.Entries)+1)
	entries = append(entries, Entry{Key: key, Value: v})
	for _, e := range o.Entries {
		if e.Key != key {
			entries = append(entries, e)
		}
	}
	o.Entries = entries
}

// Keys lists the object's keys in order
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		keys[i] = e.Key
	}
	return keys
}

// FromExpr converts an object literal into an Object whose values stay
// verbatim, except nested object literals which are converted recursively
func FromExpr(e *ast.ObjectExpr) *Object {
	obj := &Object{}
	for _, p := range e.Properties {
		if nested, ok := p.Value.(*ast.ObjectExpr); ok {
			obj.Set(p.Key, FromExpr(nested))
			continue
		}
		obj.Set(p.Key, Raw{Expr: p.Value})
	}
	return obj
}

func formatKey(key string) string {
	if key == "" {
		return `""`
	}
	for i, r := range key {
		ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return strconv.Quote(key)
		}
	}
	return key
}
