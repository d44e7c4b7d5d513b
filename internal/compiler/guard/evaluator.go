package guard

import (
	"math/big"
)

// maxDepth bounds Ref resolution for degenerate self-referential validators
const maxDepth = 256

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the runtime undefined value. nil stands for null.
var Undefined = undefined{}

// Symbol is a runtime symbol value
type Symbol struct {
	Description string
}

// Instance is implemented by runtime class instances
type Instance interface {
	// InstanceOf reports whether the instance belongs to the class with uid
	// or one of its subclasses
	InstanceOf(uid string) bool
}

// Resolver looks up named validators
type Resolver interface {
	Lookup(key string) (Expr, bool)
}

// Evaluator checks runtime values against validator trees
type Evaluator struct {
	refs Resolver
}

// NewEvaluator creates an evaluator resolving Ref nodes through refs.
// refs may be nil when trees contain no references.
func NewEvaluator(refs Resolver) *Evaluator {
	return &Evaluator{refs: refs}
}

// Check reports whether v passes e
func (ev *Evaluator) Check(e Expr, v interface{}) bool {
	return ev.check(e, v, 0)
}

//nolint:gocyclo // One case per validator kind
func (ev *Evaluator) check(e Expr, v interface{}, depth int) bool {
	switch e := e.(type) {
	case *Always:
		return true

	case *TypeOf:
		return TypeTag(v) == e.Tag

	case *Literal:
		return literalEquals(e.Value, v)

	case *OneOf:
		for _, want := range e.Values {
			if literalEquals(want, v) {
				return true
			}
		}
		return false

	case *All:
		for _, item := range e.Items {
			if !ev.check(item, v, depth) {
				return false
			}
		}
		return true

	case *Any:
		for _, item := range e.Items {
			if ev.check(item, v, depth) {
				return true
			}
		}
		return false

	case *Shape:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for _, f := range e.Fields {
			fv, present := obj[f.Name]
			if !present || fv == Undefined {
				if f.Optional {
					continue
				}
				fv = Undefined
			}
			if !ev.check(f.Guard, fv, depth) {
				return false
			}
		}
		return true

	case *ArrayOf:
		arr, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, item := range arr {
			if !ev.check(e.Elem, item, depth) {
				return false
			}
		}
		return true

	case *Tuple:
		arr, ok := v.([]interface{})
		if !ok || len(arr) != len(e.Elems) {
			return false
		}
		for i, item := range arr {
			if !ev.check(e.Elems[i], item, depth) {
				return false
			}
		}
		return true

	case *InstanceOf:
		inst, ok := v.(Instance)
		return ok && inst.InstanceOf(e.UID)

	case *Ref:
		if ev.refs == nil || depth >= maxDepth {
			return false
		}
		target, ok := ev.refs.Lookup(e.Key)
		if !ok {
			return false
		}
		return ev.check(target, v, depth+1)
	}

	return false
}

// TypeTag returns the runtime type tag of v
func TypeTag(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case *big.Int:
		return "bigint"
	case Symbol, *Symbol:
		return "symbol"
	case map[string]interface{}, []interface{}, Instance:
		return "object"
	}
	return "unknown"
}

func literalEquals(want, v interface{}) bool {
	switch w := want.(type) {
	case float64:
		n, ok := toNumber(v)
		return ok && n == w
	case string:
		s, ok := v.(string)
		return ok && s == w
	case bool:
		b, ok := v.(bool)
		return ok && b == w
	case nil:
		return v == nil
	}
	return false
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
