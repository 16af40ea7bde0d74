package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathUnconfined(t *testing.T) {
	root := t.TempDir()
	c := Context{WorkingRoot: root}

	got, err := c.resolvePath("a/../b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b.txt"), got)

	outside := filepath.Join(filepath.Dir(root), "elsewhere")
	got, err = c.resolvePath("../elsewhere")
	require.NoError(t, err)
	assert.Equal(t, outside, got)
}

func TestResolvePathConfined(t *testing.T) {
	root := t.TempDir()
	c := Context{WorkingRoot: root, Confine: true}

	_, err := c.resolvePath("inside/new.txt")
	require.NoError(t, err)

	_, err = c.resolvePath("../escape.txt")
	require.ErrorIs(t, err, ErrOutsideRoot)

	_, err = c.resolvePath("/etc/passwd")
	require.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolvePathConfinedFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	c := Context{WorkingRoot: root, Confine: true}

	_, err := c.resolvePath("link/secret.txt")
	require.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolvePathConfinedUnderSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "root")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(target, "a.txt"), []byte("a"), 0o644))
	c := Context{WorkingRoot: link, Confine: true}

	_, err := c.resolvePath("a.txt")
	require.NoError(t, err)
	_, err = c.resolvePath("sub/new.txt")
	require.NoError(t, err)

	_, err = c.resolvePath("../outside.txt")
	require.ErrorIs(t, err, ErrOutsideRoot)
}

func TestConfinedExecutorRejectsEscape(t *testing.T) {
	root := t.TempDir()
	e := New(Context{WorkingRoot: root, Confine: true})

	out := e.Execute(context.Background(), "write_file", `{"path":"../x.txt","content":"x"}`)
	assert.Contains(t, out, "Error: path outside working directory")
}

func TestWithin(t *testing.T) {
	sep := string(filepath.Separator)
	assert.True(t, within(sep+"a", sep+"a"))
	assert.True(t, within(sep+"a", filepath.Join(sep+"a", "b")))
	assert.True(t, within(sep+"a", filepath.Join(sep+"a", "..b")))
	assert.False(t, within(sep+"a", sep+"ab"))
	assert.False(t, within(sep+"a", filepath.Join(sep+"a", "..", "c")))
}
