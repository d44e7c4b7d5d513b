package reflect

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamekit/flamekit/internal/compiler/guard"
	"github.com/flamekit/flamekit/internal/compiler/loader"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

func TestRegistry_DefineMetadata(t *testing.T) {
	r := New()

	require.NoError(t, r.DefineMetadata("Door", "flamework:identifier", metadata.String{Value: "src/door@Door"}))
	require.NoError(t, r.DefineMetadata("Door", "flamework:isExternal", metadata.Bool{Value: false}))
	require.NoError(t, r.DefineMetadata("Lamp", "flamework:identifier", metadata.String{Value: "src/lamp@Lamp"}))

	err := r.DefineMetadata("Door", "flamework:identifier", metadata.String{Value: "other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	// First registration wins
	v, ok := r.GetMetadata("Door", "flamework:identifier")
	require.True(t, ok)
	assert.Equal(t, metadata.String{Value: "src/door@Door"}, v)

	assert.Equal(t, []string{"flamework:identifier", "flamework:isExternal"}, r.Keys("Door"))
	assert.Equal(t, []string{"Door", "Lamp"}, r.Objects())

	_, ok = r.GetMetadata("Door", "flamework:dependencies")
	assert.False(t, ok)
	_, ok = r.GetMetadata("Window", "flamework:identifier")
	assert.False(t, ok)
	assert.Nil(t, r.Keys("Window"))
}

func TestRegistry_KeysReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.DefineMetadata("Door", "a", metadata.Bool{Value: true}))

	keys := r.Keys("Door")
	keys[0] = "modified"
	objects := r.Objects()
	objects[0] = "modified"

	assert.Equal(t, []string{"a"}, r.Keys("Door"))
	assert.Equal(t, []string{"Door"}, r.Objects())
}

type part struct{ uids map[string]bool }

func (p part) InstanceOf(uid string) bool { return p.uids[uid] }

func TestRegistry_Validate(t *testing.T) {
	r := New()

	// type Tree = { value: number; children: Tree[] }
	tree := &guard.Shape{Fields: []guard.Field{
		{Name: "value", Guard: &guard.TypeOf{Tag: "number"}},
		{Name: "children", Guard: &guard.ArrayOf{Elem: &guard.Ref{Key: "src/tree@Tree"}}},
	}}
	require.NoError(t, r.DefineGuard("src/tree@Tree", tree))
	require.NoError(t, r.DefineGuard("src/part@Part", &guard.InstanceOf{UID: "src/part@Part"}))

	err := r.DefineGuard("src/tree@Tree", &guard.Always{})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	got, ok := r.Guard("src/tree@Tree")
	require.True(t, ok)
	assert.Same(t, tree, got)

	leaf := map[string]interface{}{"value": 1, "children": []interface{}{}}
	tests := []struct {
		name  string
		uid   string
		value interface{}
		want  bool
	}{
		{"leaf", "src/tree@Tree", leaf, true},
		{"nested", "src/tree@Tree", map[string]interface{}{"value": 2.5, "children": []interface{}{leaf, leaf}}, true},
		{"bad child", "src/tree@Tree", map[string]interface{}{"value": 1, "children": []interface{}{"x"}}, false},
		{"missing field", "src/tree@Tree", map[string]interface{}{"value": 1}, false},
		{"instance", "src/part@Part", part{uids: map[string]bool{"src/part@Part": true}}, true},
		{"other instance", "src/part@Part", part{}, false},
		{"plain object", "src/part@Part", map[string]interface{}{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := r.Validate(tt.uid, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err = r.Validate("src/nope@Nope", 1)
	assert.True(t, errors.Is(err, ErrUnknownGuard))
}

func TestRegistry_Load(t *testing.T) {
	const program = `
files:
  - path: src/door.ts
    interfaces:
      - name: Hinge
        fields: ["angle: number"]
    classes:
      - name: Door
        extends: "BaseComponent<{ hinge: Hinge }>"
        annotations: [{name: Component}]
      - name: Window
        extends: "BaseComponent<{ hinge: Hinge }>"
        annotations: [{name: Component}]
`
	p, err := loader.New("").Load("door.yaml", []byte(program))
	require.NoError(t, err)
	out, err := transform.New(p, transform.Options{}, nil).Run()
	require.NoError(t, err)

	r := New()
	require.NoError(t, r.Load(out))

	assert.Equal(t, []string{"src/door@Door", "src/door@Window"}, r.Objects())
	assert.Equal(t, "src/door@Door", ObjectID(out.Classes[0]))

	keys := r.Keys("src/door@Door")
	require.NotEmpty(t, keys)
	assert.Equal(t, "flamework:identifier", keys[0])

	ok, err := r.Validate("src/door@Hinge", map[string]interface{}{"angle": 90})
	require.NoError(t, err)
	assert.True(t, ok)

	// The attribute guard of the component config checks against the same arena
	config, ok := r.GetMetadata("src/door@Door", "flamework:decorators.@flamework/components@Component")
	require.True(t, ok)
	attrs, ok := config.(*metadata.Object).Get("attributes")
	require.True(t, ok)
	hinge, ok := attrs.(*metadata.Object).Get("hinge")
	require.True(t, ok)
	assert.True(t, r.Check(hinge.(metadata.Guard).Expr, map[string]interface{}{"angle": 1}))
	assert.False(t, r.Check(hinge.(metadata.Guard).Expr, map[string]interface{}{"angle": "1"}))

	// Loading the same output again reports every duplicate
	err = r.Load(out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	require.NoError(t, r.DefineGuard("n", &guard.TypeOf{Tag: "number"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("obj%d", i)
			for j := 0; j < 50; j++ {
				_ = r.DefineMetadata(id, fmt.Sprintf("k%d", j), metadata.String{Value: fmt.Sprint(j)})
				_, _ = r.GetMetadata(id, "k0")
				_, _ = r.Validate("n", j)
				_ = r.Objects()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Objects(), 16)
	for _, id := range r.Objects() {
		assert.Len(t, r.Keys(id), 50)
	}
}
