package ast

// TypeKind represents the kind of a type annotation
type TypeKind int

const (
	// TypeReference is a named type with optional type arguments (string, Foo, Map<K, V>)
	TypeReference TypeKind = iota
	// TypeLiteral is a literal type ("a", 1, true)
	TypeLiteral
	// TypeUnion is A | B
	TypeUnion
	// TypeIntersection is A & B
	TypeIntersection
	// TypeArray is T[]
	TypeArray
	// TypeTuple is [A, B]
	TypeTuple
	// TypeObject is an inline object type { a: T; b?: U }
	TypeObject
	// TypeQuery is `typeof expr`
	TypeQuery
	// TypeFunction is a function type (...) => T
	TypeFunction
	// TypeConditional is C extends E ? T : F; Members holds [C, E, T, F]
	TypeConditional
)

// TypeNode represents a type annotation as written in source
type TypeNode struct {
	Kind       TypeKind
	Name       string          // For TypeReference
	Args       []*TypeNode     // Type arguments for TypeReference
	Literal    interface{}     // For TypeLiteral: string, float64 or bool
	Members    []*TypeNode     // For TypeUnion, TypeIntersection, TypeTuple and TypeConditional
	Element    *TypeNode       // For TypeArray
	Properties []*PropertyType // For TypeObject
	Query      Expr            // For TypeQuery
	Params     []*Parameter    // For TypeFunction
	Result     *TypeNode       // For TypeFunction
	Loc        SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the source location of the type node
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

// PropertyType is one property of an inline object type
type PropertyType struct {
	Name     string
	Optional bool
	Type     *TypeNode
}

// NewTypeRef builds a reference type node
func NewTypeRef(name string, args ...*TypeNode) *TypeNode {
	return &TypeNode{Kind: TypeReference, Name: name, Args: args}
}
