package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContent(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashContent(nil))
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", HashContent([]byte("hello world")))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashContent([]byte("hello world")), hash)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCache_Changed(t *testing.T) {
	c := New()

	assert.True(t, c.Changed("out/door.flamekit.ts", "a"))
	assert.False(t, c.Changed("out/door.flamekit.ts", "a"))
	assert.True(t, c.Changed("out/door.flamekit.ts", "b"))

	entry, ok := c.Get("out/door.flamekit.ts")
	require.True(t, ok)
	assert.Equal(t, "b", entry.Hash)

	c.Invalidate("out/door.flamekit.ts")
	assert.True(t, c.Changed("out/door.flamekit.ts", "b"))
}

func TestCache_Refresh(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "program.yaml")
	config := filepath.Join(dir, "flamekit.yaml")
	require.NoError(t, os.WriteFile(program, []byte("files: []\n"), 0o644))
	require.NoError(t, os.WriteFile(config, []byte("{}\n"), 0o644))

	c := New()
	changed, err := c.Refresh(program, config)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, c.Size())

	// Touching without changing content is not a change
	require.NoError(t, os.WriteFile(program, []byte("files: []\n"), 0o644))
	changed, err = c.Refresh(program, config)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(config, []byte("metadata: {prefix: acme}\n"), 0o644))
	changed, err = c.Refresh(program, config)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, os.Remove(program))
	changed, err = c.Refresh(program, config)
	assert.Error(t, err)
	assert.True(t, changed)
	_, ok := c.Get(program)
	assert.False(t, ok)
}

func TestCache_PruneAndInvalidateAll(t *testing.T) {
	c := New()
	c.Set("a", "1")
	c.Set("b", "2")

	assert.Equal(t, 0, c.Prune(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, c.Prune(time.Millisecond))
	assert.Equal(t, 0, c.Size())

	c.Set("a", "1")
	c.InvalidateAll()
	assert.Equal(t, 0, c.Size())
}

func TestCache_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := filepath.Join("out", string(rune('a'+i)))
			c.Changed(path, "x")
			c.Get(path)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, c.Size())
}
