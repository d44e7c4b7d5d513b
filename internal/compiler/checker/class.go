package checker

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

// ClassInfo holds the per-class facts derived once per class
type ClassInfo struct {
	IsExternal  bool
	Annotations []AnnotationInfo
}

// AnnotationInfo describes one annotation applied to a class
type AnnotationInfo struct {
	Name       string
	Decl       *ast.Declaration
	Annotation *ast.AnnotationDecl
	Arguments  []ast.Expr

	// Recognized marks the runtime's own annotation kinds
	Recognized bool
	// Component marks component-kind annotations
	Component bool
	// WithNodes marks annotations whose arguments feed the configuration builder
	WithNodes bool

	Loc ast.SourceLocation
}

// ClassInfo resolves the annotations of class. An annotation name that does
// not resolve to an annotation declaration is a FLM100 error.
func (c *Checker) ClassInfo(class *ast.ClassDecl) (ClassInfo, error) {
	file := c.files[class.Decl]
	info := ClassInfo{IsExternal: file != nil && file.External}

	for _, a := range class.Annotations {
		decl, ok := c.ResolveIdentifier(a.Name, file)
		if !ok || decl.Kind != ast.DeclAnnotation {
			return ClassInfo{}, errors.NewDeclarationNotFound(a.Loc, a.Name).
				WithFile(class.Decl.File).
				WithClass(class.Name())
		}
		ad := c.annotations[decl]
		info.Annotations = append(info.Annotations, AnnotationInfo{
			Name:       a.Name,
			Decl:       decl,
			Annotation: ad,
			Arguments:  a.Arguments,
			Recognized: ad.Recognized,
			Component:  ad.Component,
			WithNodes:  ad.WithNodes,
			Loc:        a.Loc,
		})
	}

	return info, nil
}

// Superclass returns the class named by the first extends clause
func (c *Checker) Superclass(class *ast.ClassDecl) (*ast.ClassDecl, bool) {
	if class.Extends == nil {
		return nil, false
	}
	decl, ok := c.ResolveIdentifier(class.Extends.Name, c.files[class.Decl])
	if !ok {
		return nil, false
	}
	super, ok := c.classes[decl]
	return super, ok
}

// ancestors lists the superclass chain of class, nearest first
func (c *Checker) ancestors(class *ast.ClassDecl) []*ast.Declaration {
	var out []*ast.Declaration
	seen := map[*ast.ClassDecl]bool{class: true}
	for {
		super, ok := c.Superclass(class)
		if !ok || seen[super] {
			return out
		}
		seen[super] = true
		out = append(out, super.Decl)
		class = super
	}
}

// InstanceType returns the type of an instance of class with its type
// parameters at their defaults
func (c *Checker) InstanceType(class *ast.ClassDecl) types.Type {
	return c.Instantiate(class.Decl, nil)
}

// PropertyType returns the effective type of property name on class. The
// class's own type parameters take their defaults and type arguments are
// substituted along the extends chain.
func (c *Checker) PropertyType(class *ast.ClassDecl, name string) (types.Type, bool) {
	env := c.bindArgs(class.TypeParams, nil, c.files[class.Decl])
	return c.propertyIn(class, name, env, map[*ast.ClassDecl]bool{})
}

// DeclaredPropertyType returns the type of property name as declared in
// class's own generic context. Type parameters of class stay unbound.
func (c *Checker) DeclaredPropertyType(class *ast.ClassDecl, name string) (types.Type, bool) {
	env := make(Env, len(class.TypeParams))
	for _, p := range class.TypeParams {
		env[p.Name] = unbound(p.Name)
	}
	return c.propertyIn(class, name, env, map[*ast.ClassDecl]bool{})
}

func (c *Checker) propertyIn(class *ast.ClassDecl, name string, env Env, seen map[*ast.ClassDecl]bool) (types.Type, bool) {
	if seen[class] {
		return nil, false
	}
	seen[class] = true
	scope := c.files[class.Decl]

	for _, f := range class.Fields() {
		if f.Static || f.Name != name {
			continue
		}
		return c.FieldType(f, scope, env), true
	}

	super, ok := c.Superclass(class)
	if !ok {
		return nil, false
	}
	args := make([]types.Type, 0, len(class.Extends.Args))
	for _, a := range class.Extends.Args {
		args = append(args, c.ResolveType(a, scope, env))
	}
	superEnv := c.bindArgs(super.TypeParams, args, c.files[super.Decl])
	return c.propertyIn(super, name, superEnv, seen)
}

// FieldType resolves the declared type of a field. A field without an
// annotation is typed by inference from its initializer.
func (c *Checker) FieldType(f *ast.FieldDecl, scope *ast.SourceFile, env Env) types.Type {
	if f.Type != nil {
		return c.ResolveType(f.Type, scope, env)
	}
	if f.Initializer != nil {
		return &types.DeferredType{Source: ast.FormatExpr(f.Initializer)}
	}
	return &types.DeferredType{}
}
