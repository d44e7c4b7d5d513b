// Package ast defines the program model consumed by the flamekit transform.
// It provides declarations, class members, type syntax, expressions and statements.
package ast

import "fmt"

// SourceLocation tracks the position of a node in source code
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// String returns "line:column"
func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// DeclKind identifies what a Declaration names
type DeclKind int

const (
	// DeclClass is a class declaration
	DeclClass DeclKind = iota
	// DeclInterface is an interface declaration
	DeclInterface
	// DeclTypeAlias is a type alias declaration
	DeclTypeAlias
	// DeclAnnotation is an annotation (decorator) declaration
	DeclAnnotation
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclTypeAlias:
		return "type"
	case DeclAnnotation:
		return "annotation"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Declaration is any named construct with decidable identity.
// Declarations are compared by pointer.
type Declaration struct {
	Name string
	Kind DeclKind
	File string // Path of the declaring source file
	Loc  SourceLocation
}

// Program is the root of the program model
type Program struct {
	Files []*SourceFile
}

// SourceFile groups the declarations of one source file
type SourceFile struct {
	Path        string
	External    bool // Declared by a dependency rather than the project
	Ambient     bool // Declarations only; classes are never transformed
	Classes     []*ClassDecl
	Interfaces  []*InterfaceDecl
	TypeAliases []*TypeAliasDecl
	Annotations []*AnnotationDecl
}

// TypeParam is a generic type parameter with an optional default
type TypeParam struct {
	Name    string
	Default *TypeNode
}

// Find returns the declarations of the program matching name, in file order
func (p *Program) Find(name string) []*Declaration {
	var out []*Declaration
	for _, f := range p.Files {
		for _, d := range f.Declarations() {
			if d.Name == name {
				out = append(out, d)
			}
		}
	}
	return out
}

// Declarations lists every declaration of the file
func (f *SourceFile) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, len(f.Classes)+len(f.Interfaces)+len(f.TypeAliases)+len(f.Annotations))
	for _, c := range f.Classes {
		decls = append(decls, c.Decl)
	}
	for _, i := range f.Interfaces {
		decls = append(decls, i.Decl)
	}
	for _, t := range f.TypeAliases {
		decls = append(decls, t.Decl)
	}
	for _, a := range f.Annotations {
		decls = append(decls, a.Decl)
	}
	return decls
}

// ClassDecl represents a class declaration
type ClassDecl struct {
	Decl        *Declaration
	TypeParams  []TypeParam
	Extends     *TypeNode   // nil when the class has no superclass
	Implements  []*TypeNode // implements clause, in source order
	Annotations []*Annotation
	Members     []Member
	Loc         SourceLocation
}

func (c *ClassDecl) node() {}

// Location returns the source location of the class
func (c *ClassDecl) Location() SourceLocation {
	return c.Loc
}

// Name returns the declared class name
func (c *ClassDecl) Name() string {
	return c.Decl.Name
}

// Constructor returns the class constructor, or nil
func (c *ClassDecl) Constructor() *ConstructorDecl {
	for _, m := range c.Members {
		if ctor, ok := m.(*ConstructorDecl); ok {
			return ctor
		}
	}
	return nil
}

// Fields returns the field members in declaration order
func (c *ClassDecl) Fields() []*FieldDecl {
	fields := make([]*FieldDecl, 0, len(c.Members))
	for _, m := range c.Members {
		if f, ok := m.(*FieldDecl); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Member looks up a named member. Constructors are never returned.
func (c *ClassDecl) Member(name string) Member {
	for _, m := range c.Members {
		if m.MemberKind() != MemberConstructor && m.MemberName() == name {
			return m
		}
	}
	return nil
}

// InterfaceDecl represents an interface declaration
type InterfaceDecl struct {
	Decl       *Declaration
	TypeParams []TypeParam
	Extends    []*TypeNode
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	Loc        SourceLocation
}

func (i *InterfaceDecl) node() {}

// Location returns the source location of the interface
func (i *InterfaceDecl) Location() SourceLocation {
	return i.Loc
}

// TypeAliasDecl represents `type Name<T> = ...`
type TypeAliasDecl struct {
	Decl       *Declaration
	TypeParams []TypeParam
	Type       *TypeNode
	Loc        SourceLocation
}

func (t *TypeAliasDecl) node() {}

// Location returns the source location of the alias
func (t *TypeAliasDecl) Location() SourceLocation {
	return t.Loc
}

// AnnotationDecl declares an annotation that classes may carry
type AnnotationDecl struct {
	Decl *Declaration

	// Recognized marks the runtime's own annotation kinds.
	Recognized bool
	// Component marks component-kind annotations (attributes, instance, lifecycle hook).
	Component bool
	// WithNodes marks annotations whose argument expressions are kept and
	// fed to the configuration builder.
	WithNodes bool

	Loc SourceLocation
}

func (a *AnnotationDecl) node() {}

// Location returns the source location of the annotation declaration
func (a *AnnotationDecl) Location() SourceLocation {
	return a.Loc
}

// Annotation is an annotation applied to a class
type Annotation struct {
	Name      string
	Arguments []Expr
	Loc       SourceLocation
}

func (a *Annotation) node() {}

// Location returns the source location of the annotation usage
func (a *Annotation) Location() SourceLocation {
	return a.Loc
}

// MemberKind is the closed set of class member kinds
type MemberKind int

const (
	// MemberField is a property declaration
	MemberField MemberKind = iota
	// MemberMethod is a method declaration
	MemberMethod
	// MemberConstructor is the class constructor
	MemberConstructor
)

// Member is a class member
type Member interface {
	Node
	MemberKind() MemberKind
	MemberName() string
}

// FieldDecl represents a field (class property or interface property)
type FieldDecl struct {
	Name        string
	Type        *TypeNode // nil when the type is left to inference
	Optional    bool
	Static      bool
	Readonly    bool
	Definite    bool // `name!: T`
	Initializer Expr
	Loc         SourceLocation
}

func (f *FieldDecl) node() {}

// Location returns the source location of the field
func (f *FieldDecl) Location() SourceLocation {
	return f.Loc
}

// MemberKind implements Member
func (f *FieldDecl) MemberKind() MemberKind { return MemberField }

// MemberName implements Member
func (f *FieldDecl) MemberName() string { return f.Name }

// Parameter is a function, method or constructor parameter
type Parameter struct {
	Name     string
	Type     *TypeNode
	Optional bool
	Modifier string // "", "public", "private", "protected" or "readonly"
	Loc      SourceLocation
}

func (p *Parameter) node() {}

// Location returns the source location of the parameter
func (p *Parameter) Location() SourceLocation {
	return p.Loc
}

// MethodDecl represents a method
type MethodDecl struct {
	Name       string
	Params     []*Parameter
	ReturnType *TypeNode
	Static     bool
	Body       []Stmt
	Loc        SourceLocation
}

func (m *MethodDecl) node() {}

// Location returns the source location of the method
func (m *MethodDecl) Location() SourceLocation {
	return m.Loc
}

// MemberKind implements Member
func (m *MethodDecl) MemberKind() MemberKind { return MemberMethod }

// MemberName implements Member
func (m *MethodDecl) MemberName() string { return m.Name }

// ConstructorDecl represents the class constructor
type ConstructorDecl struct {
	Params []*Parameter
	Body   []Stmt
	Loc    SourceLocation
}

func (c *ConstructorDecl) node() {}

// Location returns the source location of the constructor
func (c *ConstructorDecl) Location() SourceLocation {
	return c.Loc
}

// MemberKind implements Member
func (c *ConstructorDecl) MemberKind() MemberKind { return MemberConstructor }

// MemberName implements Member
func (c *ConstructorDecl) MemberName() string { return "constructor" }
