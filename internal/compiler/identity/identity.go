// Package identity assigns stable identifiers to declarations. One Registry
// lives for a whole compilation run and is shared by every class processed in
// it.
package identity

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
)

// Style selects how identifiers are rendered
type Style string

const (
	// StylePath renders "<file without extension>@<Name>"
	StylePath Style = "path"
	// StyleHashed renders a name-based UUID of the path identifier
	StyleHashed Style = "hashed"
)

// ParseStyle validates a style name
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StylePath, StyleHashed:
		return Style(s), nil
	case "":
		return StylePath, nil
	}
	return "", fmt.Errorf("unknown identity style %q (expected path or hashed)", s)
}

// Registry maps declarations to UIDs. Assignment is append-only: a
// declaration keeps its first UID for the lifetime of the registry.
type Registry struct {
	style Style
	uids  map[*ast.Declaration]string
	owner map[string]*ast.Declaration
}

// NewRegistry creates an empty registry
func NewRegistry(style Style) *Registry {
	if style == "" {
		style = StylePath
	}
	return &Registry{
		style: style,
		uids:  make(map[*ast.Declaration]string),
		owner: make(map[string]*ast.Declaration),
	}
}

// UID returns the identifier of decl, assigning one on first use
func (r *Registry) UID(decl *ast.Declaration) (string, error) {
	if decl == nil {
		return "", errors.NewUnresolvedIdentity(ast.SourceLocation{}, "<nil>")
	}
	if uid, ok := r.uids[decl]; ok {
		return uid, nil
	}
	if decl.Name == "" {
		return "", errors.NewUnresolvedIdentity(decl.Loc, decl.Kind.String()).WithFile(decl.File)
	}

	base := r.render(pathUID(decl))
	uid := base
	for n := 2; r.owner[uid] != nil; n++ {
		uid = fmt.Sprintf("%s#%d", base, n)
	}

	r.uids[decl] = uid
	r.owner[uid] = decl
	return uid, nil
}

// Len returns the number of assigned identifiers
func (r *Registry) Len() int {
	return len(r.uids)
}

func (r *Registry) render(id string) string {
	if r.style == StyleHashed {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
	}
	return id
}

func pathUID(decl *ast.Declaration) string {
	file := strings.TrimSuffix(decl.File, ".d.ts")
	file = strings.TrimSuffix(file, path.Ext(file))
	return file + "@" + decl.Name
}
