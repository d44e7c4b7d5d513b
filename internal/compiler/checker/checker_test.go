package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/loader"
	"github.com/flamekit/flamekit/internal/compiler/parser"
	"github.com/flamekit/flamekit/internal/compiler/types"
)

const program = `
files:
  - path: src/door.ts
    interfaces:
      - name: DoorAttributes
        fields: ["open: boolean", "label?: string"]
      - name: LockedAttributes
        extends: ["DoorAttributes"]
        fields: ["code: number", "open: false"]
      - name: Box
        type_params: ["T"]
        fields: ["value: T"]
    types:
      - name: Tree
        type: "{ value: number; children: Tree[] }"
      - name: State
        type: '"open" | "closed"'
    annotations:
      - name: Tag
        with_nodes: true
    classes:
      - name: LightService
      - name: Door
        extends: "BaseComponent<DoorAttributes, Part>"
        annotations:
          - name: Component
          - name: Tag
            args: ["1", "2"]
        members:
          - field: "speed: number = 10"
          - field: "label = \"door\""
      - name: LockedDoor
        extends: "Door"
      - name: Broken
        annotations:
          - name: Missing
`

func load(t *testing.T) (*Checker, *ast.SourceFile) {
	t.Helper()
	p, err := loader.New("").Load("door.yaml", []byte(program))
	require.NoError(t, err)
	return New(p), p.Files[1]
}

func class(t *testing.T, c *Checker, name string) *ast.ClassDecl {
	t.Helper()
	decl, ok := c.ResolveIdentifier(name, nil)
	require.True(t, ok, name)
	cl, ok := c.Class(decl)
	require.True(t, ok, name)
	return cl
}

func resolve(t *testing.T, c *Checker, scope *ast.SourceFile, src string) types.Type {
	t.Helper()
	node, err := parser.ParseType(src)
	require.NoError(t, err)
	return c.ResolveType(node, scope, nil)
}

func TestResolveType(t *testing.T) {
	c, file := load(t)

	tests := []struct {
		input string
		kind  types.Kind
		str   string
	}{
		{"string", types.KindPrimitive, "string"},
		{"void", types.KindPrimitive, "undefined"},
		{`"a" | 1 | true`, types.KindUnion, `"a" | 1 | true`},
		{"(string | number)[]", types.KindArray, "(string | number)[]"},
		{"Array<boolean>", types.KindArray, "boolean[]"},
		{"[LightService, number]", types.KindTuple, "[LightService, number]"},
		{"{ a: string; b?: number }", types.KindObject, "{ a: string; b?: number }"},
		{"DoorAttributes", types.KindReference, "DoorAttributes"},
		{"Box<string>", types.KindReference, "Box<string>"},
		{"typeof x", types.KindDeferred, "typeof x"},
		{"Map<string, number>", types.KindUnrepresentable, ""},
		{"(x: number) => void", types.KindUnrepresentable, ""},
		{"T extends string ? 1 : 2", types.KindUnrepresentable, ""},
		{"Nope", types.KindUnrepresentable, ""},
		{"Tag", types.KindUnrepresentable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := resolve(t, c, file, tt.input)
			assert.Equal(t, tt.kind, got.Kind())
			if tt.str != "" {
				assert.Equal(t, tt.str, got.String())
			}
		})
	}
}

func TestResolveType_FlattensNestedUnions(t *testing.T) {
	c, file := load(t)

	got := resolve(t, c, file, "State | undefined")
	// State is a reference, so it is kept as one member
	u, ok := got.(*types.UnionType)
	require.True(t, ok)
	assert.Len(t, u.Members, 2)

	got = resolve(t, c, file, `("a" | "b") | "c"`)
	u, ok = got.(*types.UnionType)
	require.True(t, ok)
	assert.Len(t, u.Members, 3)
}

func TestResolveType_GenericInterface(t *testing.T) {
	c, file := load(t)

	ref, ok := resolve(t, c, file, "Box<number>").(*types.ReferenceType)
	require.True(t, ok)
	fields, ok := c.Fields(ref)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "number", fields[0].Type.String())

	// Missing arguments without a default stay unbound
	ref, ok = resolve(t, c, file, "Box").(*types.ReferenceType)
	require.True(t, ok)
	fields, ok = c.Fields(ref)
	require.True(t, ok)
	assert.Equal(t, types.KindUnrepresentable, fields[0].Type.Kind())
}

func TestResolveType_RecursiveAlias(t *testing.T) {
	c, file := load(t)

	tree, ok := resolve(t, c, file, "Tree").(*types.ReferenceType)
	require.True(t, ok)

	fields, ok := c.Fields(tree)
	require.True(t, ok)
	require.Len(t, fields, 2)

	children, ok := fields[1].Type.(*types.ArrayType)
	require.True(t, ok)
	assert.Same(t, tree, children.Element, "recursive reference shares the instantiation")
}

func TestResolveType_InterfaceExtends(t *testing.T) {
	c, file := load(t)

	fields, ok := c.Fields(resolve(t, c, file, "LockedAttributes"))
	require.True(t, ok)

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"open", "label", "code"}, names)
	assert.Equal(t, "false", fields[0].Type.String(), "own field overrides the inherited one")
}

func TestPropertyType(t *testing.T) {
	c, _ := load(t)
	door := class(t, c, "Door")

	attrs, ok := c.PropertyType(door, "attributes")
	require.True(t, ok)
	assert.Equal(t, "DoorAttributes", attrs.String())

	instance, ok := c.PropertyType(door, "instance")
	require.True(t, ok)
	assert.Equal(t, "Part", instance.String())

	speed, ok := c.PropertyType(door, "speed")
	require.True(t, ok)
	assert.Equal(t, "number", speed.String())

	label, ok := c.PropertyType(door, "label")
	require.True(t, ok)
	assert.Equal(t, types.KindDeferred, label.Kind())

	_, ok = c.PropertyType(door, "missing")
	assert.False(t, ok)

	// Through two levels of inheritance
	locked := class(t, c, "LockedDoor")
	attrs, ok = c.PropertyType(locked, "attributes")
	require.True(t, ok)
	assert.Equal(t, "DoorAttributes", attrs.String())
}

func TestDeclaredPropertyType(t *testing.T) {
	c, _ := load(t)

	base := class(t, c, "BaseComponent")
	attrs, ok := c.DeclaredPropertyType(base, "attributes")
	require.True(t, ok)
	assert.Equal(t, types.KindUnrepresentable, attrs.Kind())

	// Defaults apply when the class is used as a plain type
	attrs, ok = c.PropertyType(base, "attributes")
	require.True(t, ok)
	assert.Equal(t, "{}", attrs.String())

	door := class(t, c, "Door")
	attrs, ok = c.DeclaredPropertyType(door, "attributes")
	require.True(t, ok)
	assert.Equal(t, "DoorAttributes", attrs.String())
}

func TestSuperclassAndAssignability(t *testing.T) {
	c, _ := load(t)

	locked := class(t, c, "LockedDoor")
	door := class(t, c, "Door")
	part := class(t, c, "Part")
	instance := class(t, c, "Instance")

	super, ok := c.Superclass(locked)
	require.True(t, ok)
	assert.Same(t, door, super)

	_, ok = c.Superclass(instance)
	assert.False(t, ok)

	assert.True(t, c.IsAssignable(c.InstanceType(instance), c.InstanceType(part)))
	assert.False(t, c.IsAssignable(c.InstanceType(part), c.InstanceType(instance)))
	assert.True(t, c.IsAssignable(c.InstanceType(door), c.InstanceType(locked)))
}

func TestClassInfo(t *testing.T) {
	c, _ := load(t)

	info, err := c.ClassInfo(class(t, c, "Door"))
	require.NoError(t, err)
	assert.False(t, info.IsExternal)
	require.Len(t, info.Annotations, 2)

	component := info.Annotations[0]
	assert.Equal(t, "Component", component.Name)
	assert.True(t, component.Recognized)
	assert.True(t, component.Component)
	assert.True(t, component.WithNodes)

	tag := info.Annotations[1]
	assert.False(t, tag.Recognized)
	assert.True(t, tag.WithNodes)
	assert.Len(t, tag.Arguments, 2)

	info, err = c.ClassInfo(class(t, c, "Instance"))
	require.NoError(t, err)
	assert.True(t, info.IsExternal)
	assert.Empty(t, info.Annotations)
}

func TestClassInfo_UnresolvedAnnotation(t *testing.T) {
	c, _ := load(t)

	_, err := c.ClassInfo(class(t, c, "Broken"))
	require.Error(t, err)

	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnresolvedTypeReference, ce.Code)
	assert.Equal(t, "Broken", ce.Class)
	assert.Contains(t, ce.Message, "'Missing'")
}
