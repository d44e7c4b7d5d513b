package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/parser"
)

func TestFormatExpr_RoundTrip(t *testing.T) {
	inputs := []string{
		`{ tag: "door", nested: { depth: 2 } }`,
		"this.speed * (a + b)",
		"__identity(() => this.speed + 1)()",
		"new Signal()",
		"[1, true, null]",
		"(x) => { return x; }",
		"items[0].value",
		"!ready",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			e, err := parser.ParseExpr(input)
			require.NoError(t, err)
			assert.Equal(t, input, ast.FormatExpr(e))
		})
	}
}

func TestFormatType(t *testing.T) {
	inputs := []string{
		"BaseComponent<DoorAttributes, Part>",
		`"open" | "closed"`,
		"(string | number)[]",
		"{ value: number; label?: string }",
		"[LightService, number]",
		"typeof __identity(() => 10)()",
		"(value: number) => void",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			n, err := parser.ParseType(input)
			require.NoError(t, err)
			assert.Equal(t, input, ast.FormatType(n))
		})
	}
}

func TestFormatStmt(t *testing.T) {
	s, err := parser.ParseStmt("const [lights, count] = this.__constructorArgs")
	require.NoError(t, err)
	assert.Equal(t, "const [lights, count] = this.__constructorArgs;", ast.FormatStmt(s))

	s, err = parser.ParseStmt("{ super(); return }")
	require.NoError(t, err)
	assert.Equal(t, "{ super(); return; }", ast.FormatStmt(s))
}

func TestInspect(t *testing.T) {
	e, err := parser.ParseExpr("foo(() => this.a, [this.b])")
	require.NoError(t, err)

	var members []string
	ast.Inspect(e, func(n ast.Node) bool {
		if m, ok := n.(*ast.MemberExpr); ok {
			members = append(members, m.Property)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b"}, members)
}
