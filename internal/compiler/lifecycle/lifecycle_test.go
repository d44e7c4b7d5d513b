package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/loader"
)

const program = `
files:
  - path: src/door.ts
    classes:
      - name: LightService
      - name: Door
        extends: "BaseComponent<{}, Part>"
        constructor:
          params: ["lights: LightService", "count: number"]
          body: ["print(lights)", "super()", "count = count + 1"]
        members:
          - field: "speed: number = 10"
          - field: "half = this.speed / 2"
          - field: "label?: string"
          - field: "static shared = 1"
          - method: "onStart()"
            body: ["go(this.half)"]
      - name: Plain
        members:
          - field: "a: number = 1"
      - name: Forward
        members:
          - field: "b: number = this.c + 1"
          - field: "c: number = 2"
      - name: Ordered
        members:
          - field: "c: number = 2"
          - field: "b: number = this.c + 1"
      - name: SelfRef
        members:
          - field: "a: number = this.a"
      - name: Nested
        members:
          - field: "f = () => this.later"
          - field: "later = 1"
      - name: Taken
        members:
          - field: "onStart = 1"
      - name: Locked
        members:
          - field: "readonly level: number = 1"
          - field: "readonly limit: number"
`

func classes(t *testing.T) map[string]*ast.ClassDecl {
	t.Helper()
	p, err := loader.New("").Load("door.yaml", []byte(program))
	require.NoError(t, err)

	out := make(map[string]*ast.ClassDecl)
	for _, c := range p.Files[1].Classes {
		out[c.Name()] = c
	}
	return out
}

func stmts(body []ast.Stmt) []string {
	out := make([]string, len(body))
	for i, s := range body {
		out[i] = ast.FormatStmt(s)
	}
	return out
}

func memberNames(c *ast.ClassDecl) []string {
	out := make([]string, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.MemberName()
	}
	return out
}

func TestRewrite_Component(t *testing.T) {
	door := classes(t)["Door"]
	before := len(door.Members)

	res, err := New(Options{}).Rewrite(door)
	require.NoError(t, err)
	out := res.Class

	assert.Equal(t, []string{
		"__constructorArgs", "constructor", "speed", "half", "label", "shared", "onStart",
	}, memberNames(out))

	// Constructor keeps the super call first, then captures its parameters
	ctor := out.Constructor()
	require.NotNil(t, ctor)
	assert.Equal(t, []string{
		"super();",
		"this.__constructorArgs = [lights, count];",
	}, stmts(ctor.Body))

	args, ok := out.Members[0].(*ast.FieldDecl)
	require.True(t, ok)
	assert.Equal(t, "[LightService, number]", ast.FormatType(args.Type))
	assert.True(t, args.Definite)

	// Hook runs field initializers, then the constructor body, then its own body
	hook, ok := out.Member("onStart").(*ast.MethodDecl)
	require.True(t, ok)
	assert.Equal(t, []string{
		"this.speed = 10;",
		"this.half = this.speed / 2;",
		"{ const [lights, count] = this.__constructorArgs; print(lights); count = count + 1; }",
		"go(this.half);",
	}, stmts(hook.Body))

	speed := out.Members[2].(*ast.FieldDecl)
	assert.Nil(t, speed.Initializer)
	assert.True(t, speed.Definite)
	assert.Equal(t, "number", ast.FormatType(speed.Type))

	half := out.Members[3].(*ast.FieldDecl)
	assert.Equal(t, "typeof __identity(() => this.speed / 2)()", ast.FormatType(half.Type))
	assert.True(t, res.UsesIdentity)

	label := out.Members[4].(*ast.FieldDecl)
	assert.False(t, label.Definite)

	shared := out.Members[5].(*ast.FieldDecl)
	assert.NotNil(t, shared.Initializer, "static fields keep their initializer")

	// The input declaration is unchanged
	assert.Len(t, door.Members, before)
	orig, ok := door.Member("onStart").(*ast.MethodDecl)
	require.True(t, ok)
	assert.Len(t, orig.Body, 1)
	assert.Len(t, door.Constructor().Body, 3)
	assert.NotNil(t, door.Fields()[0].Initializer)
}

func TestRewrite_SynthesizesHook(t *testing.T) {
	res, err := New(Options{}).Rewrite(classes(t)["Plain"])
	require.NoError(t, err)

	assert.Equal(t, []string{"onStart", "a"}, memberNames(res.Class))
	hook := res.Class.Members[0].(*ast.MethodDecl)
	assert.Equal(t, []string{"this.a = 1;"}, stmts(hook.Body))
	assert.False(t, res.UsesIdentity)
	assert.Nil(t, res.Class.Constructor())
}

func TestRewrite_ReadonlyField(t *testing.T) {
	res, err := New(Options{}).Rewrite(classes(t)["Locked"])
	require.NoError(t, err)

	hook := res.Class.Members[0].(*ast.MethodDecl)
	assert.Equal(t, []string{"this.level = 1;"}, stmts(hook.Body))

	level := res.Class.Members[1].(*ast.FieldDecl)
	assert.False(t, level.Readonly)
	assert.True(t, level.Definite)
	assert.Nil(t, level.Initializer)

	// Fields without an initializer are not assigned by the hook
	limit := res.Class.Members[2].(*ast.FieldDecl)
	assert.True(t, limit.Readonly)
}

func TestRewrite_UseBeforeInitialization(t *testing.T) {
	tests := []struct {
		class string
		used  string
	}{
		{"Forward", "c"},
		{"SelfRef", "a"},
		{"Nested", "later"},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			class := classes(t)[tt.class]
			_, err := New(Options{}).Rewrite(class)
			require.Error(t, err)

			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrUseBeforeInitialization, ce.Code)
			assert.Contains(t, ce.Message, "'"+tt.used+"' is used before its initialization")
			assert.Equal(t, tt.class, ce.Class)
			assert.Equal(t, "src/door.ts", ce.File)
			assert.NotZero(t, ce.Location.Line)
		})
	}

	// Declaring the referenced field first removes the error
	_, err := New(Options{}).Rewrite(classes(t)["Ordered"])
	assert.NoError(t, err)
}

func TestRewrite_HookNameTaken(t *testing.T) {
	_, err := New(Options{}).Rewrite(classes(t)["Taken"])
	require.Error(t, err)

	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrMemberNameCollision, ce.Code)
}

func TestRewrite_CustomNames(t *testing.T) {
	res, err := New(Options{Hook: "init", ArgsField: "__args"}).Rewrite(classes(t)["Door"])
	require.NoError(t, err)

	names := memberNames(res.Class)
	assert.Equal(t, "init", names[0])
	assert.Contains(t, names, "__args")
	assert.Contains(t, names, "onStart", "the default hook is an ordinary method here")
}
