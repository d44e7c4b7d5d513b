// Package metadata synthesizes the reflection records of a class: its
// identifier, dependencies, implemented interfaces and decorator configs.
package metadata

import (
	"fmt"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/checker"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/guard"
)

// Record names, in emission order
const (
	RecordIdentifier   = "identifier"
	RecordIsExternal   = "isExternal"
	RecordDependencies = "dependencies"
	RecordImplements   = "implements"
	RecordDecorators   = "decorators"
)

// DefaultPrefix namespaces every record key
const DefaultPrefix = "flamework"

// Record is one metadata key/value pair of a class
type Record struct {
	Key   string
	Value Value
}

// Options configures a Synthesizer
type Options struct {
	// Prefix namespaces record keys as "<prefix>:<name>"
	Prefix string
	// Hook is the lifecycle hook method name
	Hook string
	// HookInterface is the interface declaring Hook
	HookInterface string
	// Components names annotations treated as component kind in addition to
	// those declared with component: true
	Components []string
}

// DefaultOptions returns the runtime's conventions
func DefaultOptions() Options {
	return Options{
		Prefix:        DefaultPrefix,
		Hook:          "onStart",
		HookInterface: "OnStart",
	}
}

// Synthesizer produces the ordered metadata records of a class
type Synthesizer struct {
	checker *checker.Checker
	ids     guard.Identities
	builder *Builder
	opts    Options
}

// NewSynthesizer creates a synthesizer. Zero option fields take their defaults.
func NewSynthesizer(c *checker.Checker, ids guard.Identities, guards *guard.Compiler, opts Options) *Synthesizer {
	def := DefaultOptions()
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	if opts.Hook == "" {
		opts.Hook = def.Hook
	}
	if opts.HookInterface == "" {
		opts.HookInterface = def.HookInterface
	}
	return &Synthesizer{
		checker: c,
		ids:     ids,
		builder: NewBuilder(c, guards),
		opts:    opts,
	}
}

// Builder returns the configuration builder used for annotations
func (s *Synthesizer) Builder() *Builder {
	return s.builder
}

// IsComponent reports whether an annotation is of the component kind
func (s *Synthesizer) IsComponent(a checker.AnnotationInfo) bool {
	if a.Component {
		return true
	}
	for _, name := range s.opts.Components {
		if a.Name == name {
			return true
		}
	}
	return false
}

// HasComponent reports whether info carries a component-kind annotation
func (s *Synthesizer) HasComponent(info checker.ClassInfo) bool {
	for _, a := range info.Annotations {
		if s.IsComponent(a) {
			return true
		}
	}
	return false
}

// Synthesize returns the metadata records of class in emission order:
// identifier, isExternal, dependencies, implements, decorators and one
// decorators.<uid> record per annotation. Empty lists are not emitted.
func (s *Synthesizer) Synthesize(class *ast.ClassDecl, info checker.ClassInfo) ([]Record, error) {
	set := &recordSet{prefix: s.opts.Prefix, seen: make(map[string]bool)}

	uid, err := s.uid(class, class.Decl)
	if err != nil {
		return nil, err
	}
	set.add(RecordIdentifier, String{Value: uid})
	set.add(RecordIsExternal, Bool{Value: info.IsExternal})

	deps, err := s.dependencies(class)
	if err != nil {
		return nil, err
	}
	if deps != nil {
		set.add(RecordDependencies, deps)
	}

	impls, err := s.implements(class, info)
	if err != nil {
		return nil, err
	}
	if len(impls.Items) > 0 {
		set.add(RecordImplements, impls)
	}

	decorators := &List{}
	var configs []Record
	for _, a := range info.Annotations {
		if !a.WithNodes {
			continue
		}
		auid, err := s.uid(class, a.Decl)
		if err != nil {
			return nil, err
		}
		config, err := s.builder.BuildConfig(class, a, s.IsComponent(a))
		if err != nil {
			return nil, err
		}
		decorators.Items = append(decorators.Items, String{Value: auid})
		configs = append(configs, Record{Key: RecordDecorators + "." + auid, Value: config})
	}
	if len(decorators.Items) > 0 {
		set.add(RecordDecorators, decorators)
	}
	for _, r := range configs {
		if !set.add(r.Key, r.Value) {
			return nil, errors.NewInvalidProgram(class.Loc,
				fmt.Sprintf("annotation %s is applied more than once", r.Key[len(RecordDecorators)+1:])).
				WithFile(class.Decl.File).
				WithClass(class.Name())
		}
	}

	return set.records, nil
}

// dependencies lists the UIDs of the constructor parameter types. It returns
// nil when the class has no constructor or the constructor takes no
// parameters.
func (s *Synthesizer) dependencies(class *ast.ClassDecl) (*List, error) {
	ctor := class.Constructor()
	if ctor == nil || len(ctor.Params) == 0 {
		return nil, nil
	}

	deps := &List{}
	for _, p := range ctor.Params {
		decl, err := s.reference(class, p.Type, p.Loc, fmt.Sprintf("constructor parameter '%s'", p.Name))
		if err != nil {
			return nil, err
		}
		uid, err := s.uid(class, decl)
		if err != nil {
			return nil, err
		}
		deps.Items = append(deps.Items, String{Value: uid})
	}
	return deps, nil
}

// implements lists the UIDs of implemented interfaces, adding the lifecycle
// hook interface for component classes
func (s *Synthesizer) implements(class *ast.ClassDecl, info checker.ClassInfo) (*List, error) {
	impls := &List{}
	seen := make(map[*ast.Declaration]bool)

	for _, node := range class.Implements {
		decl, err := s.reference(class, node, node.Loc, "implements clause")
		if err != nil {
			return nil, err
		}
		uid, err := s.uid(class, decl)
		if err != nil {
			return nil, err
		}
		seen[decl] = true
		impls.Items = append(impls.Items, String{Value: uid})
	}

	if !s.HasComponent(info) {
		return impls, nil
	}

	hook, ok := s.checker.ResolveIdentifier(s.opts.HookInterface, s.checker.FileOf(class.Decl))
	if !ok {
		return nil, errors.NewDeclarationNotFound(class.Loc, s.opts.HookInterface).
			WithFile(class.Decl.File).
			WithClass(class.Name())
	}
	if seen[hook] {
		return impls, nil
	}
	if m := class.Member(s.opts.Hook); m != nil {
		method, ok := m.(*ast.MethodDecl)
		if !ok || method.Static {
			return nil, errors.NewMemberNameCollision(m.Location(), s.opts.Hook).
				WithFile(class.Decl.File).
				WithClass(class.Name())
		}
	}

	uid, err := s.uid(class, hook)
	if err != nil {
		return nil, err
	}
	impls.Items = append(impls.Items, String{Value: uid})
	return impls, nil
}

// reference resolves a type that must be a plain reference to a declaration
func (s *Synthesizer) reference(class *ast.ClassDecl, node *ast.TypeNode, loc ast.SourceLocation, subject string) (*ast.Declaration, error) {
	if node == nil || node.Kind != ast.TypeReference {
		return nil, errors.NewExpectedTypeReference(loc, subject).
			WithFile(class.Decl.File).
			WithClass(class.Name())
	}
	decl, ok := s.checker.ResolveIdentifier(node.Name, s.checker.FileOf(class.Decl))
	if !ok {
		return nil, errors.NewDeclarationNotFound(node.Loc, node.Name).
			WithFile(class.Decl.File).
			WithClass(class.Name())
	}
	return decl, nil
}

func (s *Synthesizer) uid(class *ast.ClassDecl, decl *ast.Declaration) (string, error) {
	uid, err := s.ids.UID(decl)
	if err != nil {
		if ce, ok := errors.AsCompilerError(err); ok {
			return "", ce.WithClass(class.Name())
		}
		return "", err
	}
	return uid, nil
}

type recordSet struct {
	prefix  string
	seen    map[string]bool
	records []Record
}

func (r *recordSet) add(name string, v Value) bool {
	key := r.prefix + ":" + name
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	r.records = append(r.records, Record{Key: key, Value: v})
	return true
}
