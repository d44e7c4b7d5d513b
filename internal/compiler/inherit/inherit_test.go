package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/checker"
	"github.com/flamekit/flamekit/internal/compiler/loader"
)

const program = `
files:
  - path: src/doors.ts
    interfaces:
      - name: DoorAttributes
        fields: ["open: boolean", "label?: string"]
      - name: LockedAttributes
        extends: ["DoorAttributes"]
        fields: ["open: false", "code: number"]
    classes:
      - name: MeshPart
        extends: Part
      - name: Door
        extends: "BaseComponent<DoorAttributes, Part>"
      - name: Sliding
        extends: Door
      - name: Locked
        extends: Door
        members:
          - field: "attributes: LockedAttributes"
      - name: MeshDoor
        extends: Door
        members:
          - field: "instance: MeshPart"
      - name: AnyDoor
        extends: Door
        members:
          - field: "instance: Instance"
      - name: Loose
`

func setup(t *testing.T) (*Engine, func(string) *ast.ClassDecl) {
	t.Helper()
	p, err := loader.New("").Load("doors.yaml", []byte(program))
	require.NoError(t, err)
	c := checker.New(p)

	lookup := func(name string) *ast.ClassDecl {
		decl, ok := c.ResolveIdentifier(name, nil)
		require.True(t, ok, name)
		cl, ok := c.Class(decl)
		require.True(t, ok, name)
		return cl
	}
	return New(c), lookup
}

func TestComputeOmissions(t *testing.T) {
	e, class := setup(t)

	tests := []struct {
		name     string
		class    string
		explicit []string
		want     []string
	}{
		{"no superclass", "Loose", nil, []string{}},
		{"no superclass keeps explicit names", "Loose", []string{"open"}, []string{"open"}},
		{"generic base declares nothing", "Door", nil, []string{}},
		{"explicit override always omitted", "Door", []string{"label"}, []string{"label"}},
		{"identical fields omitted", "Sliding", nil, []string{"label", "open"}},
		{"narrowed field keeps its guard", "Locked", nil, []string{"label"}},
		{"explicit plus identical", "Locked", []string{"code"}, []string{"code", "label"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeOmissions(class(tt.class), tt.explicit)
			assert.Equal(t, tt.want, got.Names())
		})
	}
}

func TestShouldOmitInstanceGuard(t *testing.T) {
	e, class := setup(t)

	tests := []struct {
		class string
		want  bool
	}{
		{"Loose", false},
		{"Door", false},     // base instance type is an unbound parameter
		{"Sliding", true},   // inherits Part unchanged
		{"MeshDoor", false}, // sharpens Part to MeshPart
		{"AnyDoor", true},   // widening adds no check
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ShouldOmitInstanceGuard(class(tt.class)))
		})
	}
}

func TestOmissionSet(t *testing.T) {
	s := OmissionSet{"b": {}, "a": {}}
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b"}, s.Names())
}
