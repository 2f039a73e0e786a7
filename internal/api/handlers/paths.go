package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveUploadPath maps a client supplied path onto uploadDir. Relative
// paths are joined to it; the result, with symlinks followed, must stay
// strictly inside uploadDir.
func resolveUploadPath(uploadDir, p string) (string, error) {
	base, err := filepath.Abs(uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolve upload directory: %w", err)
	}

	target := filepath.FromSlash(p)
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	if !within(base, target) {
		return "", fmt.Errorf("%s is outside the upload directory", p)
	}

	if real, err := filepath.EvalSymlinks(target); err == nil {
		realBase, err := filepath.EvalSymlinks(base)
		if err != nil {
			realBase = base
		}
		if !within(realBase, real) {
			return "", fmt.Errorf("%s is outside the upload directory", p)
		}
	}
	return target, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
