package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolvePath joins relative paths onto the working root. No containment is
// enforced unless Confine is set.
func (c Context) resolvePath(p string) (string, error) {
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(c.WorkingRoot, p)
	}
	full = filepath.Clean(full)
	if !c.Confine {
		return full, nil
	}
	if err := validatePathWithinRoot(full, c.WorkingRoot); err != nil {
		return "", err
	}
	return full, nil
}

// validatePathWithinRoot ensures an absolute path lies inside root, following
// symlinks on the existing part of both.
func validatePathWithinRoot(path, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	resolvedRoot := evalExisting(filepath.Clean(abs))
	if within(resolvedRoot, evalExisting(filepath.Clean(path))) {
		return nil
	}
	return fmt.Errorf("%w: %s (allowed: %s)", ErrOutsideRoot, path, resolvedRoot)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// evalExisting resolves symlinks on the longest existing prefix of p and
// re-appends the missing tail.
func evalExisting(p string) string {
	tail := ""
	cur := p
	for {
		if _, err := os.Lstat(cur); err == nil {
			resolved, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return p
			}
			return filepath.Join(resolved, tail)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		tail = filepath.Join(filepath.Base(cur), tail)
		cur = parent
	}
}
