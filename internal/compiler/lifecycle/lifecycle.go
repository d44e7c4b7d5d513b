// Package lifecycle rewrites component classes so that field initialization
// and constructor logic run inside the lifecycle hook instead of during
// construction.
//
// For a class
//
//	class Door {
//	    speed: number = 10;
//	    constructor(lights: LightService) { super(); print(lights); }
//	    onStart() { go(); }
//	}
//
// the rewrite produces
//
//	class Door {
//	    speed!: number;
//	    __constructorArgs!: [LightService];
//	    constructor(lights: LightService) { super(); this.__constructorArgs = [lights]; }
//	    onStart() {
//	        this.speed = 10;
//	        { const [lights] = this.__constructorArgs; print(lights); }
//	        go();
//	    }
//	}
package lifecycle

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
)

// IdentityFunc is the helper used to type fields declared without a type
const IdentityFunc = "__identity"

// Options names the members the rewrite reads and writes
type Options struct {
	Hook      string
	ArgsField string
}

// DefaultOptions returns the runtime's member names
func DefaultOptions() Options {
	return Options{Hook: "onStart", ArgsField: "__constructorArgs"}
}

// Result is a rewritten class
type Result struct {
	Class *ast.ClassDecl
	// UsesIdentity is set when a field type was written as a typeof IdentityFunc query
	UsesIdentity bool
}

// Rewriter moves field initializers and constructor bodies into the hook
type Rewriter struct {
	opts Options
}

// New creates a rewriter. Empty option fields take their defaults.
func New(opts Options) *Rewriter {
	def := DefaultOptions()
	if opts.Hook == "" {
		opts.Hook = def.Hook
	}
	if opts.ArgsField == "" {
		opts.ArgsField = def.ArgsField
	}
	return &Rewriter{opts: opts}
}

// Rewrite returns a rewritten copy of class. On error nothing is rewritten
// and the original declaration is left untouched.
func (r *Rewriter) Rewrite(class *ast.ClassDecl) (*Result, error) {
	hook, synthesized, err := r.hook(class)
	if err != nil {
		return nil, err
	}

	fields := instanceFields(class)
	var assignments []ast.Stmt
	rewritten := make(map[*ast.FieldDecl]*ast.FieldDecl, len(fields))
	usesIdentity := false

	for i, f := range fields {
		if f.Initializer == nil {
			continue
		}
		if err := checkInitializer(f, fields[i:]); err != nil {
			return nil, r.locate(err, class)
		}

		assignments = append(assignments, &ast.ExprStmt{
			Expr: &ast.AssignExpr{Target: ast.ThisMember(f.Name), Value: f.Initializer, Loc: f.Loc},
			Loc:  f.Loc,
		})

		// The hook assigns the field, so it cannot stay readonly
		nf := *f
		nf.Initializer = nil
		nf.Readonly = false
		if nf.Type == nil {
			nf.Type = inferredType(f.Initializer)
			usesIdentity = true
		}
		if !nf.Optional {
			nf.Definite = true
		}
		rewritten[f] = &nf
	}

	members := make([]ast.Member, 0, len(class.Members)+2)
	if synthesized {
		members = append(members, hook)
	}

	var ctorBlock ast.Stmt
	for _, m := range class.Members {
		switch m := m.(type) {
		case *ast.FieldDecl:
			if nf, ok := rewritten[m]; ok {
				members = append(members, nf)
				continue
			}
			members = append(members, m)
		case *ast.ConstructorDecl:
			ctor, block, args := r.constructor(m)
			ctorBlock = block
			members = append(members, args, ctor)
		case *ast.MethodDecl:
			if m.Name == r.opts.Hook && !m.Static {
				members = append(members, hook)
				continue
			}
			members = append(members, m)
		default:
			members = append(members, m)
		}
	}

	body := make([]ast.Stmt, 0, len(assignments)+1+len(hook.Body))
	body = append(body, assignments...)
	if ctorBlock != nil {
		body = append(body, ctorBlock)
	}
	body = append(body, hook.Body...)
	hook.Body = body

	out := *class
	out.Members = members
	return &Result{Class: &out, UsesIdentity: usesIdentity}, nil
}

// hook returns a copy of the class's hook method, or a new empty one
func (r *Rewriter) hook(class *ast.ClassDecl) (*ast.MethodDecl, bool, error) {
	m := class.Member(r.opts.Hook)
	if m == nil {
		return &ast.MethodDecl{Name: r.opts.Hook, Loc: class.Loc}, true, nil
	}
	method, ok := m.(*ast.MethodDecl)
	if !ok || method.Static {
		return nil, false, r.locate(errors.NewMemberNameCollision(m.Location(), r.opts.Hook), class)
	}
	cp := *method
	return &cp, false, nil
}

// constructor splits the constructor into the part that must stay (the super
// call and parameter capture) and a block for the hook. It also returns the
// field declaration holding the captured parameters.
func (r *Rewriter) constructor(ctor *ast.ConstructorDecl) (*ast.ConstructorDecl, ast.Stmt, *ast.FieldDecl) {
	names := make([]string, len(ctor.Params))
	elems := make([]ast.Expr, len(ctor.Params))
	tuple := &ast.TypeNode{Kind: ast.TypeTuple, Loc: ctor.Loc}
	for i, p := range ctor.Params {
		names[i] = p.Name
		elems[i] = &ast.IdentifierExpr{Name: p.Name, Loc: p.Loc}
		t := p.Type
		if t == nil {
			t = ast.NewTypeRef("unknown")
		}
		tuple.Members = append(tuple.Members, t)
	}

	args := &ast.FieldDecl{Name: r.opts.ArgsField, Type: tuple, Definite: true, Loc: ctor.Loc}

	var body []ast.Stmt
	var rest []ast.Stmt
	for _, s := range ctor.Body {
		if body == nil && ast.IsSuperCall(s) {
			body = append(body, s)
			continue
		}
		rest = append(rest, s)
	}
	body = append(body, &ast.ExprStmt{
		Expr: &ast.AssignExpr{
			Target: ast.ThisMember(r.opts.ArgsField),
			Value:  &ast.ArrayExpr{Elements: elems, Loc: ctor.Loc},
			Loc:    ctor.Loc,
		},
		Loc: ctor.Loc,
	})

	block := make([]ast.Stmt, 0, len(rest)+1)
	if len(names) > 0 {
		block = append(block, &ast.VarStmt{
			Keyword: "const",
			Pattern: names,
			Init:    ast.ThisMember(r.opts.ArgsField),
			Loc:     ctor.Loc,
		})
	}
	block = append(block, rest...)

	cp := *ctor
	cp.Body = body
	return &cp, &ast.BlockStmt{Body: block, Loc: ctor.Loc}, args
}

func (r *Rewriter) locate(err *errors.CompilerError, class *ast.ClassDecl) *errors.CompilerError {
	return err.WithFile(class.Decl.File).WithClass(class.Name())
}

func instanceFields(class *ast.ClassDecl) []*ast.FieldDecl {
	var out []*ast.FieldDecl
	for _, f := range class.Fields() {
		if !f.Static {
			out = append(out, f)
		}
	}
	return out
}

// checkInitializer reports the first `this.<name>` in the initializer of
// fields[0] that names fields[0] itself or a field declared after it
func checkInitializer(f *ast.FieldDecl, fields []*ast.FieldDecl) *errors.CompilerError {
	later := make(map[string]bool, len(fields))
	for _, lf := range fields {
		later[lf.Name] = true
	}

	var found *errors.CompilerError
	ast.Inspect(f.Initializer, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		m, ok := n.(*ast.MemberExpr)
		if !ok {
			return true
		}
		if _, isThis := m.Object.(*ast.ThisExpr); isThis && later[m.Property] {
			loc := m.Loc
			if loc.Line == 0 {
				loc = f.Loc
			}
			found = errors.NewUseBeforeInitialization(loc, m.Property, f.Name)
			return false
		}
		return true
	})
	return found
}

// inferredType builds `typeof __identity(() => init)()`
func inferredType(init ast.Expr) *ast.TypeNode {
	thunk := &ast.ArrowFunc{Expr: init, Loc: init.Location()}
	call := &ast.CallExpr{
		Callee: &ast.CallExpr{
			Callee:    &ast.IdentifierExpr{Name: IdentityFunc},
			Arguments: []ast.Expr{thunk},
		},
	}
	return &ast.TypeNode{Kind: ast.TypeQuery, Query: call, Loc: init.Location()}
}
