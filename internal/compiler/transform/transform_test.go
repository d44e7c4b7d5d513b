package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/identity"
	"github.com/flamekit/flamekit/internal/compiler/loader"
)

const program = `
files:
  - path: src/door.ts
    interfaces:
      - name: DoorAttributes
        fields: ["open: boolean", "hinge: Hinge"]
      - name: Hinge
        fields: ["angle: number"]
    classes:
      - name: LightService
        annotations: [{name: Service}]
      - name: Door
        extends: "BaseComponent<DoorAttributes, Part>"
        annotations: [{name: Component}]
        constructor:
          params: ["lights: LightService"]
          body: ["super()"]
        members:
          - field: "speed: number = 10"
  - path: src/window.ts
    classes:
      - name: Window
        extends: "BaseComponent<{ hinge: Hinge; cb: (x: number) => void }>"
        annotations: [{name: Component}]
`

func load(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := loader.New("").Load("unit.yaml", []byte(src))
	require.NoError(t, err)
	return p
}

func TestUnit_Run(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	unit := New(load(t, program), Options{}, zap.New(core))

	out, err := unit.Run()
	require.NoError(t, err)

	// Ambient prelude classes are not processed
	require.Len(t, out.Classes, 3)
	names := []string{out.Classes[0].Class.Name(), out.Classes[1].Class.Name(), out.Classes[2].Class.Name()}
	assert.Equal(t, []string{"LightService", "Door", "Window"}, names)

	light := out.Classes[0]
	assert.False(t, light.Rewritten)
	assert.Same(t, light.Original, light.Class)

	door := out.Classes[1]
	assert.True(t, door.Rewritten)
	assert.NotSame(t, door.Original, door.Class)
	assert.Equal(t, "flamework:identifier", door.Records[0].Key)

	// Hinge is compiled once, while processing Door, and only referenced by Window
	require.Len(t, door.Guards, 1)
	assert.Equal(t, "src/door@Hinge", door.Guards[0].Key)
	assert.Empty(t, out.Classes[2].Guards)
	assert.Equal(t, 1, out.Arena.Len())
	assert.Contains(t, out.Classes[2].Records[len(out.Classes[2].Records)-1].Value.String(), `hinge: t.ref("src/door@Hinge")`)

	// Window's callback attribute is reported once
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "Window", out.Warnings[0].Class)
	assert.Equal(t, 1, logs.FilterMessage("reduced safety: guard always accepts").Len())
	assert.Equal(t, 3, logs.FilterMessage("class processed").Len())
	assert.False(t, out.UsesIdentity)
}

func TestUnit_AbortsOnFatalDiagnostic(t *testing.T) {
	const broken = `
files:
  - path: src/a.ts
    classes:
      - name: Ok
      - name: Bad
        annotations: [{name: Component}]
        members:
          - field: "a: number = this.b"
          - field: "b: number = 1"
      - name: Never
`
	core, logs := observer.New(zapcore.ErrorLevel)
	out, err := New(load(t, broken), Options{}, zap.New(core)).Run()
	require.Error(t, err)

	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUseBeforeInitialization, ce.Code)
	assert.Equal(t, "Bad", ce.Class)

	// Classes after the failing one are not processed
	require.Len(t, out.Classes, 1)
	assert.Equal(t, "Ok", out.Classes[0].Class.Name())
	assert.Equal(t, 1, logs.FilterMessage("transform aborted").Len())
}

func TestUnit_Options(t *testing.T) {
	const src = `
files:
  - path: src/a.ts
    classes:
      - name: Spinner
        annotations: [{name: Component}]
        members:
          - field: "rate = 2"
`
	unit := New(load(t, src), Options{IdentityStyle: identity.StyleHashed}, nil)
	out, err := unit.Run()
	require.NoError(t, err)

	spinner := out.Classes[0]
	assert.True(t, out.UsesIdentity)
	assert.Len(t, spinner.Records[0].Value.String(), len(`"00000000-0000-0000-0000-000000000000"`))
	assert.Equal(t, 3, unit.Identities().Len(), "class, annotation and lifecycle interface")
}
