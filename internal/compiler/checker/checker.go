// Package checker is the type-query service of the transform. It resolves
// declared types into the TypeModel, substitutes generic arguments along
// inheritance chains, tests assignability and derives per-class facts.
package checker

import (
	"fmt"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

// maxInstantiationDepth bounds nested generic instantiation
const maxInstantiationDepth = 64

// Env binds type parameter names to types
type Env map[string]types.Type

// Checker answers type queries over one program. It caches resolved named
// types so that recursive declarations share a single ReferenceType.
type Checker struct {
	program     *ast.Program
	files       map[*ast.Declaration]*ast.SourceFile
	classes     map[*ast.Declaration]*ast.ClassDecl
	interfaces  map[*ast.Declaration]*ast.InterfaceDecl
	aliases     map[*ast.Declaration]*ast.TypeAliasDecl
	annotations map[*ast.Declaration]*ast.AnnotationDecl

	refs  map[string]*types.ReferenceType
	depth int
}

// New indexes the declarations of program
func New(program *ast.Program) *Checker {
	c := &Checker{
		program:     program,
		files:       make(map[*ast.Declaration]*ast.SourceFile),
		classes:     make(map[*ast.Declaration]*ast.ClassDecl),
		interfaces:  make(map[*ast.Declaration]*ast.InterfaceDecl),
		aliases:     make(map[*ast.Declaration]*ast.TypeAliasDecl),
		annotations: make(map[*ast.Declaration]*ast.AnnotationDecl),
		refs:        make(map[string]*types.ReferenceType),
	}

	for _, f := range program.Files {
		for _, cl := range f.Classes {
			c.classes[cl.Decl] = cl
		}
		for _, i := range f.Interfaces {
			c.interfaces[i.Decl] = i
		}
		for _, a := range f.TypeAliases {
			c.aliases[a.Decl] = a
		}
		for _, a := range f.Annotations {
			c.annotations[a.Decl] = a
		}
		for _, d := range f.Declarations() {
			c.files[d] = f
		}
	}

	return c
}

// Program returns the program the checker was built for
func (c *Checker) Program() *ast.Program {
	return c.program
}

// FileOf returns the source file declaring decl
func (c *Checker) FileOf(decl *ast.Declaration) *ast.SourceFile {
	return c.files[decl]
}

// Class returns the class declared by decl
func (c *Checker) Class(decl *ast.Declaration) (*ast.ClassDecl, bool) {
	cl, ok := c.classes[decl]
	return cl, ok
}

// Annotation returns the annotation declared by decl
func (c *Checker) Annotation(decl *ast.Declaration) (*ast.AnnotationDecl, bool) {
	a, ok := c.annotations[decl]
	return a, ok
}

// Interface returns the interface declared by decl
func (c *Checker) Interface(decl *ast.Declaration) (*ast.InterfaceDecl, bool) {
	i, ok := c.interfaces[decl]
	return i, ok
}

// ResolveIdentifier resolves a declaration name as seen from scope.
// Declarations of the same file win over the rest of the program, which is
// searched in file order.
func (c *Checker) ResolveIdentifier(name string, scope *ast.SourceFile) (*ast.Declaration, bool) {
	if scope != nil {
		for _, d := range scope.Declarations() {
			if d.Name == name {
				return d, true
			}
		}
	}
	found := c.program.Find(name)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// ResolveType converts a type annotation into the TypeModel. Names resolve in
// order: env (type parameters), built-in primitives, declarations visible
// from scope.
//
//nolint:gocyclo // One case per type syntax kind
func (c *Checker) ResolveType(node *ast.TypeNode, scope *ast.SourceFile, env Env) types.Type {
	if node == nil {
		return types.NewUnrepresentable("missing type annotation")
	}

	switch node.Kind {
	case ast.TypeReference:
		return c.resolveReference(node, scope, env)

	case ast.TypeLiteral:
		return types.NewLiteralType(node.Literal)

	case ast.TypeUnion:
		members := make([]types.Type, 0, len(node.Members))
		for _, m := range node.Members {
			t := c.ResolveType(m, scope, env)
			if u, ok := t.(*types.UnionType); ok {
				members = append(members, u.Members...)
				continue
			}
			members = append(members, t)
		}
		return types.NewUnionType(members...)

	case ast.TypeIntersection:
		members := make([]types.Type, 0, len(node.Members))
		for _, m := range node.Members {
			members = append(members, c.ResolveType(m, scope, env))
		}
		return types.NewIntersectionType(members...)

	case ast.TypeArray:
		return types.NewArrayType(c.ResolveType(node.Element, scope, env))

	case ast.TypeTuple:
		elems := make([]types.Type, 0, len(node.Members))
		for _, m := range node.Members {
			elems = append(elems, c.ResolveType(m, scope, env))
		}
		return types.NewTupleType(elems...)

	case ast.TypeObject:
		fields := make([]types.Field, 0, len(node.Properties))
		for _, p := range node.Properties {
			fields = append(fields, types.Field{
				Name:     p.Name,
				Type:     c.ResolveType(p.Type, scope, env),
				Optional: p.Optional,
			})
		}
		return types.NewObjectType(fields...)

	case ast.TypeQuery:
		return &types.DeferredType{Source: ast.FormatExpr(node.Query)}

	case ast.TypeFunction:
		return types.NewUnrepresentable("function type %s", ast.FormatType(node))

	case ast.TypeConditional:
		return types.NewUnrepresentable("conditional type %s", ast.FormatType(node))
	}

	return types.NewUnrepresentable("unsupported type syntax %s", ast.FormatType(node))
}

var arrayNames = map[string]bool{"Array": true, "ReadonlyArray": true}

func (c *Checker) resolveReference(node *ast.TypeNode, scope *ast.SourceFile, env Env) types.Type {
	if t, ok := env[node.Name]; ok && len(node.Args) == 0 {
		return t
	}
	if types.IsPrimitiveName(node.Name) && len(node.Args) == 0 {
		return types.NewPrimitiveType(node.Name)
	}

	args := make([]types.Type, 0, len(node.Args))
	for _, a := range node.Args {
		args = append(args, c.ResolveType(a, scope, env))
	}

	decl, ok := c.ResolveIdentifier(node.Name, scope)
	if !ok {
		if arrayNames[node.Name] && len(args) == 1 {
			return types.NewArrayType(args[0])
		}
		return types.NewUnrepresentable("unresolved type name %s", node.Name)
	}
	return c.Instantiate(decl, args)
}

// Instantiate builds the reference type for decl applied to args. Missing
// arguments take the declaration's defaults; parameters without either stay
// unbound and resolve to Unrepresentable.
func (c *Checker) Instantiate(decl *ast.Declaration, args []types.Type) types.Type {
	switch decl.Kind {
	case ast.DeclClass:
		class := c.classes[decl]
		return &types.ReferenceType{
			Decl:  decl,
			Args:  c.bindArgs(class.TypeParams, args, c.files[decl]).list(class.TypeParams),
			Bases: c.ancestors(class),
		}
	case ast.DeclInterface, ast.DeclTypeAlias:
		return c.instantiateNamed(decl, args)
	}
	return types.NewUnrepresentable("%s %s is not a type", decl.Kind, decl.Name)
}

func (c *Checker) instantiateNamed(decl *ast.Declaration, args []types.Type) types.Type {
	var params []ast.TypeParam
	if i, ok := c.interfaces[decl]; ok {
		params = i.TypeParams
	} else {
		params = c.aliases[decl].TypeParams
	}
	env := c.bindArgs(params, args, c.files[decl])
	boundArgs := env.list(params)

	key := refKey(decl, boundArgs)
	if ref, ok := c.refs[key]; ok {
		return ref
	}
	if c.depth >= maxInstantiationDepth {
		return types.NewUnrepresentable("instantiation of %s is too deep", decl.Name)
	}

	ref := &types.ReferenceType{Decl: decl, Args: boundArgs}
	c.refs[key] = ref

	c.depth++
	defer func() { c.depth-- }()

	if i, ok := c.interfaces[decl]; ok {
		ref.Target = c.interfaceShape(i, env)
	} else {
		alias := c.aliases[decl]
		ref.Target = c.ResolveType(alias.Type, c.files[decl], env)
	}
	return ref
}

// interfaceShape merges the fields of extended interfaces with the interface's
// own fields; own fields win. Methods are not part of the runtime shape.
func (c *Checker) interfaceShape(i *ast.InterfaceDecl, env Env) types.Type {
	scope := c.files[i.Decl]
	shape := &types.ObjectType{}

	for _, ext := range i.Extends {
		base, ok := c.Fields(c.ResolveType(ext, scope, env))
		if !ok {
			continue
		}
		for _, f := range base {
			shape.Fields = setField(shape.Fields, f)
		}
	}
	for _, f := range i.Fields {
		shape.Fields = setField(shape.Fields, types.Field{
			Name:     f.Name,
			Type:     c.ResolveType(f.Type, scope, env),
			Optional: f.Optional,
		})
	}
	return shape
}

func setField(fields []types.Field, f types.Field) []types.Field {
	for i := range fields {
		if fields[i].Name == f.Name {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}

// bindArgs builds the environment of a generic declaration. Defaults are
// resolved in the declaring file and may refer to earlier parameters.
func (c *Checker) bindArgs(params []ast.TypeParam, args []types.Type, scope *ast.SourceFile) Env {
	env := make(Env, len(params))
	for i, p := range params {
		switch {
		case i < len(args):
			env[p.Name] = args[i]
		case p.Default != nil:
			env[p.Name] = c.ResolveType(p.Default, scope, env)
		default:
			env[p.Name] = unbound(p.Name)
		}
	}
	return env
}

func (e Env) list(params []ast.TypeParam) []types.Type {
	if len(params) == 0 {
		return nil
	}
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = e[p.Name]
	}
	return out
}

func unbound(name string) types.Type {
	return types.NewUnrepresentable("unbound type parameter %s", name)
}

func refKey(decl *ast.Declaration, args []types.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%p<%s>", decl, strings.Join(parts, ","))
}

// IsAssignable reports whether a value of type source can be assigned to target
func (c *Checker) IsAssignable(target, source types.Type) bool {
	return target.IsAssignableFrom(source)
}

// Fields enumerates the named fields of an object-shaped type
func (c *Checker) Fields(t types.Type) ([]types.Field, bool) {
	return types.Fields(t)
}
