package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
)

const doorProgram = `
files:
  - path: src/door.ts
    interfaces:
      - name: DoorAttributes
        fields: ["open: boolean", "label?: string"]
    types:
      - name: Tree
        type: "{ value: number; children: Tree[] }"
    annotations:
      - name: Tag
        with_nodes: true
    classes:
      - name: LightService
      - name: Door
        extends: "BaseComponent<DoorAttributes, Part>"
        implements: ["OnStart"]
        annotations:
          - name: Component
            args: ['{ tag: "door" }']
        constructor:
          params: ["lights: LightService"]
          body: ["super()"]
        members:
          - field: "speed: number = 10"
          - method: "onStart()"
            body: ["print(this.speed)"]
`

func TestLoad_Program(t *testing.T) {
	program, err := New("").Load("door.yaml", []byte(doorProgram))
	require.NoError(t, err)
	require.Len(t, program.Files, 2)

	prelude := program.Files[0]
	assert.Equal(t, DefaultRuntimeModule, prelude.Path)
	assert.True(t, prelude.External)
	assert.True(t, prelude.Ambient)

	file := program.Files[1]
	assert.Equal(t, "src/door.ts", file.Path)
	assert.False(t, file.External)
	assert.False(t, file.Ambient)
	require.Len(t, file.Interfaces, 1)
	require.Len(t, file.TypeAliases, 1)
	require.Len(t, file.Annotations, 1)
	require.Len(t, file.Classes, 2)

	assert.True(t, file.Annotations[0].WithNodes)
	assert.False(t, file.Annotations[0].Recognized)

	door := file.Classes[1]
	assert.Equal(t, "Door", door.Name())
	assert.Equal(t, ast.DeclClass, door.Decl.Kind)
	assert.Equal(t, "src/door.ts", door.Decl.File)
	assert.Equal(t, "BaseComponent", door.Extends.Name)
	require.Len(t, door.Implements, 1)
	require.Len(t, door.Annotations, 1)
	assert.IsType(t, &ast.ObjectExpr{}, door.Annotations[0].Arguments[0])

	// Constructor comes first, then members in document order
	require.Len(t, door.Members, 3)
	ctor := door.Constructor()
	require.NotNil(t, ctor)
	require.Len(t, ctor.Params, 1)
	assert.True(t, ast.IsSuperCall(ctor.Body[0]))
	assert.Equal(t, "speed", door.Members[1].MemberName())
	method, ok := door.Member("onStart").(*ast.MethodDecl)
	require.True(t, ok)
	assert.Len(t, method.Body, 1)
}

func TestLoad_SnippetLocations(t *testing.T) {
	program, err := New("").Load("door.yaml", []byte(doorProgram))
	require.NoError(t, err)

	iface := program.Files[1].Interfaces[0]
	assert.Equal(t, 5, iface.Decl.Loc.Line)

	// Quoted scalars point past the opening quote
	open := iface.Fields[0]
	assert.Equal(t, ast.SourceLocation{Line: 6, Column: 19}, open.Loc)
}

func TestPrelude(t *testing.T) {
	prelude, err := New("@rbxts/runtime").Prelude()
	require.NoError(t, err)

	assert.Equal(t, "@rbxts/runtime", prelude.Path)
	for _, d := range prelude.Declarations() {
		assert.Equal(t, "@rbxts/runtime", d.File, d.Name)
	}

	var component *ast.AnnotationDecl
	for _, a := range prelude.Annotations {
		if a.Decl.Name == "Component" {
			component = a
		}
	}
	require.NotNil(t, component)
	assert.True(t, component.Recognized)
	assert.True(t, component.Component)
	assert.True(t, component.WithNodes)

	var base *ast.ClassDecl
	for _, c := range prelude.Classes {
		if c.Name() == "BaseComponent" {
			base = c
		}
	}
	require.NotNil(t, base)
	require.Len(t, base.TypeParams, 2)
	assert.Equal(t, "A", base.TypeParams[0].Name)
	assert.Equal(t, ast.TypeObject, base.TypeParams[0].Default.Kind)
	assert.Equal(t, "Instance", base.TypeParams[1].Default.Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
	}{
		{
			name:    "unknown key",
			input:   "files:\n  - path: a.ts\n    clases: []\n",
			message: "clases",
		},
		{
			name:    "bad snippet",
			input:   "files:\n  - path: a.ts\n    classes:\n      - name: A\n        members:\n          - field: \"x: Array<\"\n",
			message: "invalid snippet",
			line:    6,
		},
		{
			name:    "field and method",
			input:   "files:\n  - path: a.ts\n    classes:\n      - name: A\n        members:\n          - field: \"x: number\"\n            method: \"y()\"\n",
			message: "exactly one of 'field' or 'method'",
		},
		{
			name:    "invalid class name",
			input:   "files:\n  - path: a.ts\n    classes:\n      - name: \"not a name\"\n",
			message: "invalid class name",
			line:    4,
		},
		{
			name:    "interface initializer",
			input:   "files:\n  - path: a.ts\n    interfaces:\n      - name: I\n        fields: [\"x: number = 1\"]\n",
			message: "cannot have an initializer",
		},
		{
			name:    "mapping where snippet expected",
			input:   "files:\n  - path: a.ts\n    classes:\n      - name: {a: 1}\n",
			message: "expected a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("").Load("bad.yaml", []byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrInvalidProgram, ce.Code)
			assert.Equal(t, "bad.yaml", ce.File)
			if tt.line > 0 {
				assert.Equal(t, tt.line, ce.Location.Line)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doorProgram), 0o600))

	program, err := New("").LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, program.Files, 2)

	_, err = New("").LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read program description")
}
