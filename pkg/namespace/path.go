package namespace

import (
	"fmt"
	"path"
	"strings"
)

// Root is the namespace root directory. It always exists.
const Root = "/"

// CleanPath validates and normalizes an absolute namespace path: duplicate
// slashes, "." and ".." elements are resolved and trailing slashes removed.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, p)
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidPath, p)
	}
	return path.Clean(p), nil
}

// Parent returns the parent of a cleaned path. The parent of the root is the
// root itself.
func Parent(p string) string {
	if p == Root {
		return Root
	}
	return path.Dir(p)
}

// Ancestors returns the path followed by each of its ancestors up to and
// including the root, nearest first.
//
//	Ancestors("/a/b") == []string{"/a/b", "/a", "/"}
func Ancestors(p string) []string {
	out := []string{p}
	for p != Root {
		p = Parent(p)
		out = append(out, p)
	}
	return out
}
