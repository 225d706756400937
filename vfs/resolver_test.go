package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVirtualTraversalStaysRooted(t *testing.T) {
	require.Equal(t, "/", NormalizeVirtual("/", "../../.."))
	require.Equal(t, "/etc", NormalizeVirtual("/home/bob", "../../etc"))
	require.Equal(t, "/a/b", NormalizeVirtual("/a", "b"))
	require.Equal(t, "/x", NormalizeVirtual("/a/b", "/x"))
}

func TestNewMemResolverResolveDoesNotTouchDisk(t *testing.T) {
	r := NewMemResolver(afero.NewMemMapFs())

	got, err := r.Resolve("/home", "../../../etc/passwd")
	require.NoError(t, err)
	require.Equal(t, "/etc/passwd", got)
}

func TestOSResolverRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("shh"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	r, err := NewOSResolver(root)
	require.NoError(t, err)

	_, err = r.Resolve("/", "escape/secret.txt")
	require.ErrorIs(t, err, ErrSandboxViolation)
}

func TestOSResolverAllowsPathsInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "f.txt"), []byte("hi"), 0o644))

	r, err := NewOSResolver(root)
	require.NoError(t, err)

	got, err := r.Resolve("/", "sub/f.txt")
	require.NoError(t, err)
	require.Equal(t, "/sub/f.txt", got)
}

func TestOSResolverAllowsNotYetExistingLeaf(t *testing.T) {
	root := t.TempDir()

	r, err := NewOSResolver(root)
	require.NoError(t, err)

	got, err := r.Resolve("/", "newdir/newfile.txt")
	require.NoError(t, err)
	require.Equal(t, "/newdir/newfile.txt", got)
}

func TestOSResolverRejectsEscapeThroughNotYetExistingLeaf(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	r, err := NewOSResolver(root)
	require.NoError(t, err)

	_, err = r.Resolve("/", "escape/not-yet-created.txt")
	require.ErrorIs(t, err, ErrSandboxViolation)
}
