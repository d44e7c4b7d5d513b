// Package loader builds the program model from a YAML program description.
// Every program is loaded together with the runtime prelude, which declares
// the annotations, lifecycle interfaces and base classes of the component runtime.
package loader

import (
	"bytes"
	_ "embed"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/parser"
)

//go:embed prelude.yaml
var preludeSource []byte

// DefaultRuntimeModule is the module path given to the prelude when none is configured
const DefaultRuntimeModule = "@flamework/components"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Loader reads program descriptions
type Loader struct {
	runtimeModule string
}

// New creates a loader whose prelude is declared as runtimeModule
func New(runtimeModule string) *Loader {
	if runtimeModule == "" {
		runtimeModule = DefaultRuntimeModule
	}
	return &Loader{runtimeModule: runtimeModule}
}

// LoadFile reads and loads the program description at path
func (l *Loader) LoadFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program description: %w", err)
	}
	return l.Load(path, data)
}

// Load builds a program from a YAML document. name identifies the document in
// diagnostics. The prelude is always the first file of the program.
func (l *Loader) Load(name string, data []byte) (*ast.Program, error) {
	prelude, err := l.Prelude()
	if err != nil {
		return nil, err
	}

	files, err := decode(name, data)
	if err != nil {
		return nil, err
	}

	program := &ast.Program{Files: make([]*ast.SourceFile, 0, len(files)+1)}
	program.Files = append(program.Files, prelude)
	program.Files = append(program.Files, files...)
	return program, nil
}

// Prelude builds the runtime declarations
func (l *Loader) Prelude() (*ast.SourceFile, error) {
	files, err := decode("prelude.yaml", preludeSource)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime prelude: %w", err)
	}
	if len(files) != 1 {
		return nil, fmt.Errorf("invalid runtime prelude: expected one file, found %d", len(files))
	}

	prelude := files[0]
	prelude.Path = l.runtimeModule
	prelude.External = true
	prelude.Ambient = true
	for _, d := range prelude.Declarations() {
		d.File = l.runtimeModule
	}
	return prelude, nil
}

func decode(name string, data []byte) ([]*ast.SourceFile, error) {
	var doc programDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.NewInvalidProgram(ast.SourceLocation{}, err.Error()).WithFile(name)
	}

	files := make([]*ast.SourceFile, 0, len(doc.Files))
	for i := range doc.Files {
		b := &builder{document: name}
		f, err := b.file(&doc.Files[i])
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// builder converts one file document into program-model declarations
type builder struct {
	document string
	src      *ast.SourceFile
}

func (b *builder) file(doc *fileDoc) (*ast.SourceFile, error) {
	b.src = &ast.SourceFile{Path: doc.Path, External: doc.External}

	for i := range doc.Annotations {
		a, err := b.annotationDecl(&doc.Annotations[i])
		if err != nil {
			return nil, err
		}
		b.src.Annotations = append(b.src.Annotations, a)
	}
	for i := range doc.Interfaces {
		iface, err := b.interfaceDecl(&doc.Interfaces[i])
		if err != nil {
			return nil, err
		}
		b.src.Interfaces = append(b.src.Interfaces, iface)
	}
	for i := range doc.Types {
		alias, err := b.aliasDecl(&doc.Types[i])
		if err != nil {
			return nil, err
		}
		b.src.TypeAliases = append(b.src.TypeAliases, alias)
	}
	for i := range doc.Classes {
		class, err := b.classDecl(&doc.Classes[i])
		if err != nil {
			return nil, err
		}
		b.src.Classes = append(b.src.Classes, class)
	}

	return b.src, nil
}

func (b *builder) declaration(name snippet, kind ast.DeclKind) (*ast.Declaration, error) {
	if !identifierPattern.MatchString(name.Text) {
		return nil, b.invalid(name.Loc, fmt.Sprintf("invalid %s name %q", kind, name.Text))
	}
	return &ast.Declaration{Name: name.Text, Kind: kind, File: b.src.Path, Loc: name.Loc}, nil
}

func (b *builder) annotationDecl(doc *annotationDoc) (*ast.AnnotationDecl, error) {
	decl, err := b.declaration(doc.Name, ast.DeclAnnotation)
	if err != nil {
		return nil, err
	}
	return &ast.AnnotationDecl{
		Decl:       decl,
		Recognized: doc.Recognized,
		Component:  doc.Component,
		WithNodes:  doc.WithNodes,
		Loc:        doc.Name.Loc,
	}, nil
}

func (b *builder) interfaceDecl(doc *interfaceDoc) (*ast.InterfaceDecl, error) {
	decl, err := b.declaration(doc.Name, ast.DeclInterface)
	if err != nil {
		return nil, err
	}
	iface := &ast.InterfaceDecl{Decl: decl, Loc: doc.Name.Loc}

	if iface.TypeParams, err = b.typeParams(doc.TypeParams); err != nil {
		return nil, err
	}
	for _, s := range doc.Extends {
		t, err := b.parseType(s)
		if err != nil {
			return nil, err
		}
		iface.Extends = append(iface.Extends, t)
	}
	for _, s := range doc.Fields {
		f, err := b.parseField(s)
		if err != nil {
			return nil, err
		}
		if f.Initializer != nil {
			return nil, b.invalid(s.Loc, fmt.Sprintf("interface field '%s' cannot have an initializer", f.Name))
		}
		iface.Fields = append(iface.Fields, f)
	}
	for _, s := range doc.Methods {
		m, err := b.parseMethod(s)
		if err != nil {
			return nil, err
		}
		iface.Methods = append(iface.Methods, m)
	}
	return iface, nil
}

func (b *builder) aliasDecl(doc *aliasDoc) (*ast.TypeAliasDecl, error) {
	decl, err := b.declaration(doc.Name, ast.DeclTypeAlias)
	if err != nil {
		return nil, err
	}
	alias := &ast.TypeAliasDecl{Decl: decl, Loc: doc.Name.Loc}

	if alias.TypeParams, err = b.typeParams(doc.TypeParams); err != nil {
		return nil, err
	}
	if doc.Type.Text == "" {
		return nil, b.invalid(doc.Name.Loc, fmt.Sprintf("type alias '%s' has no type", decl.Name))
	}
	if alias.Type, err = b.parseType(doc.Type); err != nil {
		return nil, err
	}
	return alias, nil
}

//nolint:gocyclo // One branch per class section
func (b *builder) classDecl(doc *classDoc) (*ast.ClassDecl, error) {
	decl, err := b.declaration(doc.Name, ast.DeclClass)
	if err != nil {
		return nil, err
	}
	class := &ast.ClassDecl{Decl: decl, Loc: doc.Name.Loc}

	if class.TypeParams, err = b.typeParams(doc.TypeParams); err != nil {
		return nil, err
	}
	if doc.Extends != nil {
		if class.Extends, err = b.parseType(*doc.Extends); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Implements {
		t, err := b.parseType(s)
		if err != nil {
			return nil, err
		}
		class.Implements = append(class.Implements, t)
	}

	for _, a := range doc.Annotations {
		use := &ast.Annotation{Name: a.Name.Text, Arguments: make([]ast.Expr, 0, len(a.Args)), Loc: a.Name.Loc}
		for _, s := range a.Args {
			arg, err := b.parseExpr(s)
			if err != nil {
				return nil, err
			}
			use.Arguments = append(use.Arguments, arg)
		}
		class.Annotations = append(class.Annotations, use)
	}

	if doc.Constructor != nil {
		ctor := &ast.ConstructorDecl{Params: make([]*ast.Parameter, 0), Loc: doc.Name.Loc}
		for _, s := range doc.Constructor.Params {
			p, err := b.parseParam(s)
			if err != nil {
				return nil, err
			}
			ctor.Params = append(ctor.Params, p)
		}
		if ctor.Body, err = b.parseBody(doc.Constructor.Body); err != nil {
			return nil, err
		}
		class.Members = append(class.Members, ctor)
	}

	for _, m := range doc.Members {
		member, err := b.member(m, doc.Name)
		if err != nil {
			return nil, err
		}
		class.Members = append(class.Members, member)
	}

	return class, nil
}

func (b *builder) member(doc memberDoc, class snippet) (ast.Member, error) {
	switch {
	case doc.Field != nil && doc.Method == nil:
		if len(doc.Body) > 0 {
			return nil, b.invalid(doc.Field.Loc, "a field member cannot have a body")
		}
		return b.parseField(*doc.Field)
	case doc.Method != nil && doc.Field == nil:
		m, err := b.parseMethod(*doc.Method)
		if err != nil {
			return nil, err
		}
		if m.Body, err = b.parseBody(doc.Body); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, b.invalid(class.Loc, fmt.Sprintf("class '%s': each member needs exactly one of 'field' or 'method'", class.Text))
}

func (b *builder) typeParams(snippets []snippet) ([]ast.TypeParam, error) {
	params := make([]ast.TypeParam, 0, len(snippets))
	for _, s := range snippets {
		p, err := parser.New(s.Text, s.Loc)
		if err != nil {
			return nil, b.parseError(err, s)
		}
		param, err := p.TypeParam()
		if err != nil {
			return nil, b.parseError(err, s)
		}
		params = append(params, param)
	}
	return params, nil
}

func (b *builder) parseBody(snippets []snippet) ([]ast.Stmt, error) {
	body := make([]ast.Stmt, 0, len(snippets))
	for _, s := range snippets {
		p, err := parser.New(s.Text, s.Loc)
		if err != nil {
			return nil, b.parseError(err, s)
		}
		stmt, err := p.Stmt()
		if err != nil {
			return nil, b.parseError(err, s)
		}
		body = append(body, stmt)
	}
	return body, nil
}

func (b *builder) parseType(s snippet) (*ast.TypeNode, error) {
	p, err := parser.New(s.Text, s.Loc)
	if err != nil {
		return nil, b.parseError(err, s)
	}
	t, err := p.Type()
	if err != nil {
		return nil, b.parseError(err, s)
	}
	return t, nil
}

func (b *builder) parseExpr(s snippet) (ast.Expr, error) {
	p, err := parser.New(s.Text, s.Loc)
	if err != nil {
		return nil, b.parseError(err, s)
	}
	e, err := p.Expr()
	if err != nil {
		return nil, b.parseError(err, s)
	}
	return e, nil
}

func (b *builder) parseField(s snippet) (*ast.FieldDecl, error) {
	p, err := parser.New(s.Text, s.Loc)
	if err != nil {
		return nil, b.parseError(err, s)
	}
	f, err := p.Field()
	if err != nil {
		return nil, b.parseError(err, s)
	}
	return f, nil
}

func (b *builder) parseParam(s snippet) (*ast.Parameter, error) {
	p, err := parser.New(s.Text, s.Loc)
	if err != nil {
		return nil, b.parseError(err, s)
	}
	param, err := p.Param()
	if err != nil {
		return nil, b.parseError(err, s)
	}
	return param, nil
}

func (b *builder) parseMethod(s snippet) (*ast.MethodDecl, error) {
	p, err := parser.New(s.Text, s.Loc)
	if err != nil {
		return nil, b.parseError(err, s)
	}
	m, err := p.MethodSignature()
	if err != nil {
		return nil, b.parseError(err, s)
	}
	return m, nil
}

// parseError converts the first snippet parse error into a coded diagnostic
func (b *builder) parseError(err error, s snippet) error {
	var list parser.ErrorList
	if stderrors.As(err, &list) && len(list) > 0 {
		return b.invalid(list[0].Location, fmt.Sprintf("invalid snippet %q: %s", s.Text, list[0].Message))
	}
	return b.invalid(s.Loc, err.Error())
}

func (b *builder) invalid(loc ast.SourceLocation, message string) error {
	return errors.NewInvalidProgram(loc, message).WithFile(b.document)
}
