package guard

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/identity"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

// samples holds one runtime value per type tag
var samples = map[string]interface{}{
	"string":    "hello",
	"number":    4.5,
	"boolean":   true,
	"bigint":    big.NewInt(7),
	"symbol":    Symbol{Description: "s"},
	"undefined": Undefined,
	"null":      nil,
	"object":    map[string]interface{}{},
}

type part struct{ classes []string }

func (p part) InstanceOf(uid string) bool {
	for _, c := range p.classes {
		if c == uid {
			return true
		}
	}
	return false
}

func newCompiler() *Compiler {
	return NewCompiler(identity.NewRegistry(identity.StylePath), nil)
}

func prim(name string) types.Type { return types.NewPrimitiveType(name) }

func mustCompile(t *testing.T, c *Compiler, ty types.Type) Expr {
	t.Helper()
	g, err := c.CompileGuard(ty)
	require.NoError(t, err)
	return g
}

func TestCompileGuard_Primitives(t *testing.T) {
	for tag := range samples {
		t.Run(tag, func(t *testing.T) {
			c := newCompiler()
			g := mustCompile(t, c, prim(tag))
			ev := NewEvaluator(c.Arena())

			for other, v := range samples {
				assert.Equal(t, other == tag, ev.Check(g, v), "value of tag %s", other)
			}
		})
	}
}

func TestCompileGuard_NumbersOfAnyWidth(t *testing.T) {
	g := mustCompile(t, newCompiler(), prim("number"))
	ev := NewEvaluator(nil)

	for _, v := range []interface{}{1, int64(2), uint8(3), float32(1.5), 2.0} {
		assert.True(t, ev.Check(g, v), "%T", v)
	}
}

func TestCompileGuard_Union(t *testing.T) {
	c := newCompiler()
	a, b := prim("string"), types.NewArrayType(prim("number"))
	ev := NewEvaluator(c.Arena())

	ga := mustCompile(t, c, a)
	gb := mustCompile(t, c, b)
	gu := mustCompile(t, c, types.NewUnionType(a, b))

	values := []interface{}{"x", []interface{}{1.0, 2.0}, []interface{}{"no"}, 3.0, nil, Undefined}
	for _, v := range values {
		assert.Equal(t, ev.Check(ga, v) || ev.Check(gb, v), ev.Check(gu, v), "%v", v)
	}
}

func TestCompileGuard_LiteralUnionCollapses(t *testing.T) {
	u := types.NewUnionType(types.NewLiteralType("open"), types.NewLiteralType("closed"), types.NewLiteralType(2.0))

	g := mustCompile(t, newCompiler(), u)
	want := &OneOf{Values: []interface{}{"open", "closed", 2.0}}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("CompileGuard mismatch (-want +got):\n%s", diff)
	}

	ev := NewEvaluator(nil)
	assert.True(t, ev.Check(g, "open"))
	assert.True(t, ev.Check(g, 2))
	assert.False(t, ev.Check(g, "ajar"))
	assert.False(t, ev.Check(g, true))

	// A mixed union keeps per-member checks
	mixed := types.NewUnionType(types.NewLiteralType("open"), prim("number"))
	g = mustCompile(t, newCompiler(), mixed)
	assert.Equal(t, `t.union(t.literal("open"), t.number)`, g.String())
}

func TestCompileGuard_ObjectShape(t *testing.T) {
	shape := types.NewObjectType(
		types.Field{Name: "open", Type: prim("boolean")},
		types.Field{Name: "label", Type: prim("string"), Optional: true},
	)
	g := mustCompile(t, newCompiler(), shape)
	ev := NewEvaluator(nil)

	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"all fields", map[string]interface{}{"open": true, "label": "a"}, true},
		{"optional absent", map[string]interface{}{"open": false}, true},
		{"optional undefined", map[string]interface{}{"open": false, "label": Undefined}, true},
		{"extra fields ignored", map[string]interface{}{"open": false, "other": 1}, true},
		{"required missing", map[string]interface{}{"label": "a"}, false},
		{"required undefined", map[string]interface{}{"open": Undefined}, false},
		{"optional wrong type", map[string]interface{}{"open": true, "label": 1}, false},
		{"not an object", "open", false},
		{"null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.Check(g, tt.value))
		})
	}
}

func TestCompileGuard_ArraysAndTuples(t *testing.T) {
	c := newCompiler()
	ev := NewEvaluator(nil)

	arr := mustCompile(t, c, types.NewArrayType(prim("string")))
	assert.True(t, ev.Check(arr, []interface{}{}))
	assert.True(t, ev.Check(arr, []interface{}{"a", "b"}))
	assert.False(t, ev.Check(arr, []interface{}{"a", 1}))
	assert.False(t, ev.Check(arr, map[string]interface{}{}))

	tup := mustCompile(t, c, types.NewTupleType(prim("string"), prim("number")))
	assert.True(t, ev.Check(tup, []interface{}{"a", 1}))
	assert.False(t, ev.Check(tup, []interface{}{1, "a"}))
	assert.False(t, ev.Check(tup, []interface{}{"a"}))
	assert.False(t, ev.Check(tup, []interface{}{"a", 1, 2}))
}

func TestCompileGuard_Intersection(t *testing.T) {
	a := types.NewObjectType(types.Field{Name: "a", Type: prim("string")})
	b := types.NewObjectType(types.Field{Name: "b", Type: prim("number")})

	g := mustCompile(t, newCompiler(), types.NewIntersectionType(a, b))
	ev := NewEvaluator(nil)

	assert.True(t, ev.Check(g, map[string]interface{}{"a": "x", "b": 1}))
	assert.False(t, ev.Check(g, map[string]interface{}{"a": "x"}))
}

func TestCompileGuard_RecursiveReference(t *testing.T) {
	decl := &ast.Declaration{Name: "Tree", Kind: ast.DeclTypeAlias, File: "src/tree.ts"}
	tree := &types.ReferenceType{Decl: decl}
	tree.Target = types.NewObjectType(
		types.Field{Name: "value", Type: prim("number")},
		types.Field{Name: "children", Type: types.NewArrayType(tree)},
	)

	c := newCompiler()
	g := mustCompile(t, c, tree)
	assert.Equal(t, &Ref{Key: "src/tree@Tree"}, g)

	body, ok := c.Arena().Lookup("src/tree@Tree")
	require.True(t, ok)
	assert.Equal(t, `t.interface({ value: t.number, children: t.array(t.ref("src/tree@Tree")) })`, body.String())
	assert.Equal(t, []string{"src/tree@Tree"}, c.Arena().Keys(0))

	ev := NewEvaluator(c.Arena())
	leaf := map[string]interface{}{"value": 1, "children": []interface{}{}}
	assert.True(t, ev.Check(g, map[string]interface{}{"value": 0, "children": []interface{}{leaf, leaf}}))

	bad := map[string]interface{}{"value": "x", "children": []interface{}{}}
	assert.False(t, ev.Check(g, map[string]interface{}{"value": 0, "children": []interface{}{leaf, bad}}))
}

func TestCompileGuard_GenericInstantiationsAreKeyedByArguments(t *testing.T) {
	decl := &ast.Declaration{Name: "Box", Kind: ast.DeclInterface, File: "src/box.ts"}
	box := func(arg types.Type) *types.ReferenceType {
		return &types.ReferenceType{
			Decl:   decl,
			Args:   []types.Type{arg},
			Target: types.NewObjectType(types.Field{Name: "value", Type: arg}),
		}
	}

	c := newCompiler()
	gs := mustCompile(t, c, box(prim("string")))
	gn := mustCompile(t, c, box(prim("number")))

	assert.Equal(t, &Ref{Key: "src/box@Box<string>"}, gs)
	assert.Equal(t, &Ref{Key: "src/box@Box<number>"}, gn)
	assert.Equal(t, 2, c.Arena().Len())
}

func TestCompileGuard_Idempotent(t *testing.T) {
	decl := &ast.Declaration{Name: "Attrs", Kind: ast.DeclInterface, File: "src/a.ts"}
	ref := &types.ReferenceType{
		Decl:   decl,
		Target: types.NewObjectType(types.Field{Name: "x", Type: prim("number")}),
	}
	ty := types.NewObjectType(
		types.Field{Name: "attrs", Type: ref},
		types.Field{Name: "tags", Type: types.NewArrayType(types.NewUnionType(types.NewLiteralType("a"), types.NewLiteralType("b")))},
	)

	c := newCompiler()
	first := mustCompile(t, c, ty)
	second := mustCompile(t, c, ty)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recompilation differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, 1, c.Arena().Len())
}

func TestCompileGuard_ClassReference(t *testing.T) {
	decl := &ast.Declaration{Name: "Part", Kind: ast.DeclClass, File: "@flamework/components"}
	g := mustCompile(t, newCompiler(), &types.ReferenceType{Decl: decl})

	assert.Equal(t, &InstanceOf{UID: "@flamework/components@Part"}, g)

	ev := NewEvaluator(nil)
	assert.True(t, ev.Check(g, part{classes: []string{"@flamework/components@Part"}}))
	assert.False(t, ev.Check(g, part{}))
	assert.False(t, ev.Check(g, map[string]interface{}{}))
}

func TestCompileGuard_ReducedSafety(t *testing.T) {
	c := newCompiler()

	g := mustCompile(t, c, types.NewUnrepresentable("unbound type parameter T"))
	assert.Equal(t, &Always{Reason: "unbound type parameter T"}, g)

	g = mustCompile(t, c, types.NewObjectType(types.Field{Name: "d", Type: &types.DeferredType{Source: "x"}}))
	assert.Equal(t, []string{"typeof x"}, Reasons(g))

	warnings := c.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "unbound type parameter T", warnings[0].Reason)
	assert.Empty(t, c.Warnings(), "warnings are drained")

	// Top types accept everything without reducing safety
	g = mustCompile(t, c, prim("unknown"))
	assert.Equal(t, &Always{}, g)
	assert.Empty(t, c.Warnings())

	never := mustCompile(t, c, prim("never"))
	for _, v := range samples {
		assert.False(t, NewEvaluator(nil).Check(never, v))
	}
}

func TestCompileGuard_UnresolvedIdentity(t *testing.T) {
	_, err := newCompiler().CompileGuard(&types.ReferenceType{Decl: &ast.Declaration{Kind: ast.DeclClass}})
	assert.Error(t, err)
}

func TestCompileGuards(t *testing.T) {
	shape := types.NewObjectType(
		types.Field{Name: "open", Type: prim("boolean")},
		types.Field{Name: "label", Type: prim("string"), Optional: true},
	)

	c := newCompiler()
	got, err := c.CompileGuards(shape)
	require.NoError(t, err)

	want := []NamedGuard{
		{Name: "open", Guard: &TypeOf{Tag: "boolean"}},
		{Name: "label", Optional: true, Guard: Optional(&TypeOf{Tag: "string"})},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompileGuards mismatch (-want +got):\n%s", diff)
	}

	got, err = c.CompileGuards(prim("string"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, c.Warnings())

	got, err = c.CompileGuards(types.NewUnrepresentable("unbound type parameter A"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, c.Warnings(), 1)
}

func TestString(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{&TypeOf{Tag: "string"}, "t.string"},
		{&Literal{Value: "a"}, `t.literal("a")`},
		{&OneOf{Values: []interface{}{"a", 1.0, true}}, `t.literal("a", 1, true)`},
		{&All{Items: []Expr{&TypeOf{Tag: "string"}, &Always{}}}, "t.intersection(t.string, t.any)"},
		{&Any{}, "t.never"},
		{&Shape{}, "t.interface({})"},
		{&Shape{Fields: []Field{{Name: "data-id", Optional: true, Guard: &TypeOf{Tag: "number"}}}}, `t.interface({ "data-id": t.optional(t.number) })`},
		{&Tuple{Elems: []Expr{&InstanceOf{UID: "a@B"}}}, `t.tuple(t.instanceOf("a@B"))`},
		{&ArrayOf{Elem: &Ref{Key: "a@C"}}, `t.array(t.ref("a@C"))`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}
