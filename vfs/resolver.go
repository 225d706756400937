// Package vfs implements the Path Resolver: mapping a virtual, "/"-rooted
// FTP path onto an absolute host path and enforcing that the result never
// escapes the sandbox root, as spec'd in FTP's §4.4.
package vfs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrSandboxViolation is returned when a resolved path would leave the
// sandbox root, including via a symlink that points outside it.
var ErrSandboxViolation = errors.New("path escapes sandbox root")

// Resolver maps virtual FTP paths onto an afero.Fs rooted at Root, and
// separately verifies host-path containment against the real filesystem
// when the Resolver is backed by the OS (NewOSResolver). A Resolver built
// over an in-memory afero.Fs (NewMemResolver, used in unit tests) skips the
// symlink check since there are no inodes to escape through.
type Resolver struct {
	root   string // absolute, symlink-resolved host root; "" for in-memory fs
	fs     afero.Fs
	onDisk bool
}

// NewOSResolver canonicalizes root (resolving symlinks, requiring it to
// exist and be a directory) and returns a Resolver backed by the real
// filesystem, sandboxed with afero.NewBasePathFs.
func NewOSResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}

	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}

	info, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("stat sandbox root: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %q is not a directory", canon)
	}

	return &Resolver{
		root:   canon,
		fs:     afero.NewBasePathFs(afero.NewOsFs(), canon),
		onDisk: true,
	}, nil
}

// NewMemResolver builds a Resolver over an arbitrary afero.Fs, used for
// fast unit tests that don't need real symlink-escape protection.
func NewMemResolver(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// Fs returns the underlying, already-sandboxed afero.Fs. Callers pass the
// virtual path returned by Resolve straight into its methods.
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// NormalizeVirtual collapses "." and ".." segments and duplicate slashes in
// a virtual path, without touching the filesystem. The result always
// starts with "/" and never contains a trailing slash except for "/"
// itself. ".." segments never pop past the root.
func NormalizeVirtual(cwd, arg string) string {
	var candidate string
	if strings.HasPrefix(arg, "/") {
		candidate = arg
	} else {
		candidate = path.Join(cwd, arg)
	}

	clean := path.Clean("/" + candidate)

	return clean
}

// Resolve maps arg (absolute or relative to cwd) onto a virtual path
// guaranteed to resolve to a location at or under the sandbox root, and
// returns that normalized virtual path for use with Fs(). It never
// performs I/O beyond symlink resolution used for the containment check.
func (r *Resolver) Resolve(cwd, arg string) (string, error) {
	virtual := NormalizeVirtual(cwd, arg)

	if !r.onDisk {
		return virtual, nil
	}

	rel := strings.TrimPrefix(virtual, "/")
	hostPath := filepath.Join(r.root, filepath.FromSlash(rel))

	canon, err := canonicalizeBestEffort(hostPath)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", arg, err)
	}

	if canon != r.root && !strings.HasPrefix(canon, r.root+string(filepath.Separator)) {
		return "", ErrSandboxViolation
	}

	return virtual, nil
}

// canonicalizeBestEffort resolves symlinks along path, tolerating a path
// whose final component(s) don't exist yet (as for MKD, STOR of a new
// file, or RNTO's destination) by resolving the nearest existing ancestor
// and rejoining the remainder unresolved.
func canonicalizeBestEffort(p string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved, nil
	}

	parent, base := filepath.Split(p)
	parent = filepath.Clean(parent)

	if parent == p {
		return "", fmt.Errorf("cannot resolve %q", p)
	}

	resolvedParent, err := canonicalizeBestEffort(parent)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedParent, base), nil
}
