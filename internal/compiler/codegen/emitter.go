// Package codegen prints the output of a transform unit: rewritten classes
// followed by validator definitions and metadata registration statements.
package codegen

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/lifecycle"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

// Header marks generated files
const Header = "// Code generated by flamekit. DO NOT EDIT."

// Emitter prints transform output as TypeScript-like source
type Emitter struct {
	buf           *bytes.Buffer
	indent        int
	runtimeModule string
}

// NewEmitter creates an emitter importing its helpers from runtimeModule
func NewEmitter(runtimeModule string) *Emitter {
	return &Emitter{
		buf:           &bytes.Buffer{},
		runtimeModule: runtimeModule,
	}
}

// GenerateUnit prints one output file per source file, keyed by source
// path, in source order
func (e *Emitter) GenerateUnit(out *transform.Output) (map[string]string, []string) {
	files := make(map[string]string)
	var order []string
	byFile := make(map[string][]*transform.ClassOutput)

	for _, c := range out.Classes {
		if _, ok := byFile[c.File]; !ok {
			order = append(order, c.File)
		}
		byFile[c.File] = append(byFile[c.File], c)
	}
	for _, file := range order {
		files[file] = e.GenerateFile(byFile[file])
	}
	return files, order
}

// GenerateFile prints the classes of one source file
func (e *Emitter) GenerateFile(classes []*transform.ClassOutput) string {
	e.reset()

	e.writeLine(Header)
	if e.runtimeModule != "" {
		e.writeLine("import { Reflect, t } from %s;", strconv.Quote(e.runtimeModule))
	}
	if fileUsesIdentity(classes) {
		e.writeLine("declare function %s<T>(value: T): T;", lifecycle.IdentityFunc)
	}

	for _, c := range classes {
		e.writeLine("")
		e.writeClass(c.Class)
		e.writeRegistrations(c)
	}

	return e.buf.String()
}

// GenerateClass prints a single class and its registrations
func (e *Emitter) GenerateClass(c *transform.ClassOutput) string {
	e.reset()
	e.writeClass(c.Class)
	e.writeRegistrations(c)
	return e.buf.String()
}

func (e *Emitter) writeRegistrations(c *transform.ClassOutput) {
	for _, def := range c.Guards {
		e.writeLine("Reflect.defineGuard(%s, %s);", strconv.Quote(def.Key), def.Expr.String())
	}
	for i, r := range c.Records {
		if i == 0 {
			e.writeLine("// (Flamework) %s metadata", c.Class.Name())
		}
		e.writeLine("Reflect.defineMetadata(%s, %s, %s);", c.Class.Name(), strconv.Quote(r.Key), r.Value.String())
	}
}

func (e *Emitter) writeClass(class *ast.ClassDecl) {
	for _, a := range class.Annotations {
		args := make([]string, len(a.Arguments))
		for i, arg := range a.Arguments {
			args[i] = ast.FormatExpr(arg)
		}
		e.writeLine("@%s(%s)", a.Name, strings.Join(args, ", "))
	}

	var head strings.Builder
	head.WriteString("class " + class.Name())
	if len(class.TypeParams) > 0 {
		params := make([]string, len(class.TypeParams))
		for i, p := range class.TypeParams {
			params[i] = p.Name
			if p.Default != nil {
				params[i] += " = " + ast.FormatType(p.Default)
			}
		}
		head.WriteString("<" + strings.Join(params, ", ") + ">")
	}
	if class.Extends != nil {
		head.WriteString(" extends " + ast.FormatType(class.Extends))
	}
	if len(class.Implements) > 0 {
		impls := make([]string, len(class.Implements))
		for i, n := range class.Implements {
			impls[i] = ast.FormatType(n)
		}
		head.WriteString(" implements " + strings.Join(impls, ", "))
	}

	if len(class.Members) == 0 {
		e.writeLine("%s {}", head.String())
		return
	}

	e.writeLine("%s {", head.String())
	e.indent++
	for _, m := range class.Members {
		e.writeMember(m)
	}
	e.indent--
	e.writeLine("}")
}

func (e *Emitter) writeMember(m ast.Member) {
	switch m := m.(type) {
	case *ast.FieldDecl:
		e.writeLine("%s;", formatField(m))
	case *ast.ConstructorDecl:
		e.writeFunction("constructor", m.Params, nil, m.Body)
	case *ast.MethodDecl:
		name := m.Name
		if m.Static {
			name = "static " + name
		}
		e.writeFunction(name, m.Params, m.ReturnType, m.Body)
	}
}

func (e *Emitter) writeFunction(name string, params []*ast.Parameter, result *ast.TypeNode, body []ast.Stmt) {
	ps := make([]string, len(params))
	for i, p := range params {
		ps[i] = ast.FormatParam(p)
	}
	sig := name + "(" + strings.Join(ps, ", ") + ")"
	if result != nil {
		sig += ": " + ast.FormatType(result)
	}

	if len(body) == 0 {
		e.writeLine("%s {}", sig)
		return
	}
	e.writeLine("%s {", sig)
	e.writeBody(body)
	e.writeLine("}")
}

func (e *Emitter) writeBody(body []ast.Stmt) {
	e.indent++
	for _, s := range body {
		if block, ok := s.(*ast.BlockStmt); ok {
			e.writeLine("{")
			e.writeBody(block.Body)
			e.writeLine("}")
			continue
		}
		e.writeLine("%s", ast.FormatStmt(s))
	}
	e.indent--
}

func formatField(f *ast.FieldDecl) string {
	var b strings.Builder
	if f.Static {
		b.WriteString("static ")
	}
	if f.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(f.Name)
	switch {
	case f.Optional:
		b.WriteString("?")
	case f.Definite:
		b.WriteString("!")
	}
	if f.Type != nil {
		b.WriteString(": " + ast.FormatType(f.Type))
	}
	if f.Initializer != nil {
		b.WriteString(" = " + ast.FormatExpr(f.Initializer))
	}
	return b.String()
}

func fileUsesIdentity(classes []*transform.ClassOutput) bool {
	for _, c := range classes {
		if c.UsesIdentity {
			return true
		}
	}
	return false
}

// OutputPath maps a source path to its generated file name under dir
func OutputPath(dir, source string) string {
	base := strings.TrimSuffix(source, path.Ext(source))
	return path.Join(dir, base+".flamekit.ts")
}

// SortedPaths returns the keys of files in lexical order
func SortedPaths(files map[string]string) []string {
	out := make([]string, 0, len(files))
	for p := range files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (e *Emitter) reset() {
	e.buf.Reset()
	e.indent = 0
}

// writeLine writes a formatted line with proper indentation
func (e *Emitter) writeLine(format string, args ...interface{}) {
	if format == "" {
		e.buf.WriteString("\n")
		return
	}

	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("\t")
	}

	if len(args) > 0 {
		e.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		e.buf.WriteString(format)
	}
	e.buf.WriteString("\n")
}
