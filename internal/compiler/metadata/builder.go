package metadata

import (
	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/checker"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/guard"
	"github.com/flamekit/flamekit/internal/compiler/inherit"
)

// Config keys written by the builder
const (
	KeyType          = "type"
	KeyKind          = "kind"
	KeyArguments     = "arguments"
	KeyAttributes    = "attributes"
	KeyInstanceGuard = "instanceGuard"
)

// Builder turns annotation arguments into configuration objects. For
// component-kind annotations it adds the compiled attribute and instance
// guards that the superclass does not already provide.
type Builder struct {
	checker  *checker.Checker
	guards   *guard.Compiler
	diff     *inherit.Engine
	warnings errors.ErrorList
}

// NewBuilder creates a configuration builder
func NewBuilder(c *checker.Checker, guards *guard.Compiler) *Builder {
	return &Builder{
		checker: c,
		guards:  guards,
		diff:    inherit.New(c),
	}
}

// Warnings returns and clears the reduced-safety warnings recorded so far
func (b *Builder) Warnings() errors.ErrorList {
	w := b.warnings
	b.warnings = nil
	return w
}

// BuildConfig computes the configuration of one annotation on class. The
// class declaration is never modified.
func (b *Builder) BuildConfig(class *ast.ClassDecl, a checker.AnnotationInfo, component bool) (*Object, error) {
	if !a.Recognized {
		args := &List{Items: make([]Value, 0, len(a.Arguments))}
		for _, arg := range a.Arguments {
			args.Items = append(args.Items, Raw{Expr: arg})
		}
		return &Object{Entries: []Entry{
			{Key: KeyKind, Value: String{Value: "Arbitrary"}},
			{Key: KeyArguments, Value: args},
		}}, nil
	}

	config := &Object{}
	if len(a.Arguments) > 0 {
		if lit, ok := a.Arguments[0].(*ast.ObjectExpr); ok {
			config = FromExpr(lit)
		}
	}

	if component {
		if err := b.addAttributeGuards(class, config); err != nil {
			return nil, err
		}
		if err := b.addInstanceGuard(class, config); err != nil {
			return nil, err
		}
	}

	config.Prepend(KeyType, String{Value: a.Name})
	return config, nil
}

func (b *Builder) addAttributeGuards(class *ast.ClassDecl, config *Object) error {
	attributes := &Object{}
	if existing, ok := config.Get(KeyAttributes); ok {
		obj, ok := existing.(*Object)
		if !ok {
			// An attributes expression other than a literal is the author's
			// complete validator set
			return nil
		}
		attributes = obj
	}

	shape, ok := b.checker.PropertyType(class, inherit.AttributesProperty)
	if !ok {
		config.Set(KeyAttributes, attributes)
		return nil
	}

	guards, err := b.guards.CompileGuards(shape)
	if err != nil {
		return b.located(err, class)
	}
	b.collect(class, "attributes of "+class.Name())

	omit := b.diff.ComputeOmissions(class, attributes.Keys())
	for _, g := range guards {
		if omit.Has(g.Name) {
			continue
		}
		attributes.Set(g.Name, Guard{Expr: g.Guard})
	}
	config.Set(KeyAttributes, attributes)
	return nil
}

func (b *Builder) addInstanceGuard(class *ast.ClassDecl, config *Object) error {
	if config.Has(KeyInstanceGuard) || b.diff.ShouldOmitInstanceGuard(class) {
		return nil
	}
	instance, ok := b.checker.PropertyType(class, inherit.InstanceProperty)
	if !ok {
		return nil
	}

	g, err := b.guards.CompileGuard(instance)
	if err != nil {
		return b.located(err, class)
	}
	b.collect(class, "instance of "+class.Name())

	config.Set(KeyInstanceGuard, Guard{Expr: g})
	return nil
}

// collect converts compiler warnings into FLM200 diagnostics
func (b *Builder) collect(class *ast.ClassDecl, subject string) {
	for _, w := range b.guards.Warnings() {
		b.warnings = append(b.warnings, errors.NewUnrepresentableType(class.Loc, subject, w.Reason).
			WithFile(class.Decl.File).
			WithClass(class.Name()))
	}
}

func (b *Builder) located(err error, class *ast.ClassDecl) error {
	if ce, ok := errors.AsCompilerError(err); ok {
		if ce.File == "" {
			ce.WithFile(class.Decl.File)
		}
		return ce.WithClass(class.Name())
	}
	return err
}
