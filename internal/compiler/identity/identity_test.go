package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
)

func TestRegistry_PathStyle(t *testing.T) {
	r := NewRegistry(StylePath)

	door := &ast.Declaration{Name: "Door", Kind: ast.DeclClass, File: "src/door.ts"}
	start := &ast.Declaration{Name: "OnStart", Kind: ast.DeclInterface, File: "@flamework/components"}
	typings := &ast.Declaration{Name: "Part", Kind: ast.DeclClass, File: "types/roblox.d.ts"}

	tests := []struct {
		decl *ast.Declaration
		want string
	}{
		{door, "src/door@Door"},
		{start, "@flamework/components@OnStart"},
		{typings, "types/roblox@Part"},
	}

	for _, tt := range tests {
		uid, err := r.UID(tt.decl)
		require.NoError(t, err)
		assert.Equal(t, tt.want, uid)
	}

	// Stable on repeated lookups
	uid, err := r.UID(door)
	require.NoError(t, err)
	assert.Equal(t, "src/door@Door", uid)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Collisions(t *testing.T) {
	r := NewRegistry(StylePath)

	first := &ast.Declaration{Name: "Door", Kind: ast.DeclClass, File: "src/door.ts"}
	second := &ast.Declaration{Name: "Door", Kind: ast.DeclInterface, File: "src/door.ts"}
	third := &ast.Declaration{Name: "Door", Kind: ast.DeclTypeAlias, File: "src/door.tsx"}

	uids := make([]string, 0, 3)
	for _, d := range []*ast.Declaration{first, second, third} {
		uid, err := r.UID(d)
		require.NoError(t, err)
		uids = append(uids, uid)
	}

	assert.Equal(t, []string{"src/door@Door", "src/door@Door#2", "src/door@Door#3"}, uids)

	// The first declaration keeps its identifier
	uid, err := r.UID(first)
	require.NoError(t, err)
	assert.Equal(t, "src/door@Door", uid)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_HashedStyle(t *testing.T) {
	r := NewRegistry(StyleHashed)
	door := &ast.Declaration{Name: "Door", Kind: ast.DeclClass, File: "src/door.ts"}

	uid, err := r.UID(door)
	require.NoError(t, err)

	want := uuid.NewSHA1(uuid.NameSpaceOID, []byte("src/door@Door")).String()
	assert.Equal(t, want, uid)

	// Deterministic across registries
	again, err := NewRegistry(StyleHashed).UID(&ast.Declaration{Name: "Door", File: "src/door.ts"})
	require.NoError(t, err)
	assert.Equal(t, uid, again)
}

func TestRegistry_Unresolvable(t *testing.T) {
	r := NewRegistry("")

	_, err := r.UID(nil)
	require.Error(t, err)

	_, err = r.UID(&ast.Declaration{Kind: ast.DeclClass, File: "src/a.ts"})
	require.Error(t, err)
	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnresolvedIdentity, ce.Code)
	assert.Equal(t, "src/a.ts", ce.File)
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("hashed")
	require.NoError(t, err)
	assert.Equal(t, StyleHashed, s)

	s, err = ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StylePath, s)

	_, err = ParseStyle("sequential")
	assert.Error(t, err)
}
