// Package transform drives the per-class passes over a program: metadata
// synthesis for every class, then the lifecycle rewrite for component
// classes. Classes are processed strictly in declaration order.
package transform

import (
	"go.uber.org/zap"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/checker"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/guard"
	"github.com/flamekit/flamekit/internal/compiler/identity"
	"github.com/flamekit/flamekit/internal/compiler/lifecycle"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
)

// Options configures a compilation unit
type Options struct {
	Metadata      metadata.Options
	Lifecycle     lifecycle.Options
	IdentityStyle identity.Style
}

// GuardDef is a named validator compiled while processing a class
type GuardDef struct {
	Key  string
	Expr guard.Expr
}

// ClassOutput is the result for one class
type ClassOutput struct {
	File     string
	Original *ast.ClassDecl
	// Class is the rewritten declaration, or Original when no rewrite applied
	Class     *ast.ClassDecl
	Rewritten bool
	// UsesIdentity is set when a rewritten field is typed through the
	// lifecycle identity helper
	UsesIdentity bool
	// Guards lists the arena validators first compiled for this class
	Guards  []GuardDef
	Records []metadata.Record
}

// Output is the result of a whole unit
type Output struct {
	Classes  []*ClassOutput
	Warnings errors.ErrorList
	// Arena holds every named validator of the unit
	Arena *guard.Arena
	// UsesIdentity is set when any class of the unit uses the identity helper
	UsesIdentity bool
}

// Unit is one compilation run over a program. The identity registry and the
// guard arena live as long as the unit.
type Unit struct {
	program  *ast.Program
	checker  *checker.Checker
	ids      *identity.Registry
	guards   *guard.Compiler
	synth    *metadata.Synthesizer
	rewriter *lifecycle.Rewriter
	logger   *zap.Logger
}

// New prepares a unit for program. A nil logger discards output.
func New(program *ast.Program, opts Options, logger *zap.Logger) *Unit {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := checker.New(program)
	ids := identity.NewRegistry(opts.IdentityStyle)
	guards := guard.NewCompiler(ids, guard.NewArena())

	return &Unit{
		program:  program,
		checker:  c,
		ids:      ids,
		guards:   guards,
		synth:    metadata.NewSynthesizer(c, ids, guards, opts.Metadata),
		rewriter: lifecycle.New(opts.Lifecycle),
		logger:   logger,
	}
}

// Identities returns the unit's identity registry
func (u *Unit) Identities() *identity.Registry {
	return u.ids
}

// Run processes every non-ambient class. The first fatal diagnostic aborts
// the unit and is returned as a *errors.CompilerError.
func (u *Unit) Run() (*Output, error) {
	out := &Output{Arena: u.guards.Arena()}

	for _, file := range u.program.Files {
		if file.Ambient {
			continue
		}
		for _, class := range file.Classes {
			co, err := u.class(file, class)
			out.Warnings = append(out.Warnings, u.synth.Builder().Warnings()...)
			if err != nil {
				u.logger.Error("transform aborted",
					zap.String("file", file.Path),
					zap.String("class", class.Name()),
					zap.Error(err),
				)
				return out, err
			}
			out.Classes = append(out.Classes, co)
			out.UsesIdentity = out.UsesIdentity || co.UsesIdentity
		}
	}

	for _, w := range out.Warnings {
		u.logger.Warn("reduced safety: guard always accepts",
			zap.String("code", string(w.Code)),
			zap.String("file", w.File),
			zap.String("class", w.Class),
			zap.String("reason", w.Message),
		)
	}

	u.logger.Info("transform finished",
		zap.Int("classes", len(out.Classes)),
		zap.Int("guards", out.Arena.Len()),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out, nil
}

func (u *Unit) class(file *ast.SourceFile, class *ast.ClassDecl) (*ClassOutput, error) {
	arenaStart := u.guards.Arena().Len()

	info, err := u.checker.ClassInfo(class)
	if err != nil {
		return nil, err
	}
	records, err := u.synth.Synthesize(class, info)
	if err != nil {
		return nil, err
	}

	co := &ClassOutput{
		File:     file.Path,
		Original: class,
		Class:    class,
		Records:  records,
	}
	for _, key := range u.guards.Arena().Keys(arenaStart) {
		e, _ := u.guards.Arena().Lookup(key)
		co.Guards = append(co.Guards, GuardDef{Key: key, Expr: e})
	}

	if u.synth.HasComponent(info) {
		res, err := u.rewriter.Rewrite(class)
		if err != nil {
			return nil, err
		}
		co.Class = res.Class
		co.Rewritten = true
		co.UsesIdentity = res.UsesIdentity
	}

	u.logger.Debug("class processed",
		zap.String("file", file.Path),
		zap.String("class", class.Name()),
		zap.Int("records", len(records)),
		zap.Int("guards", len(co.Guards)),
		zap.Bool("rewritten", co.Rewritten),
	)
	return co, nil
}
