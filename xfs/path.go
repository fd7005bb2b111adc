package xfs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RelativePath returns the path of to relative to the directory from, both
// cleaned first. It fails with ErrDifferentRoots when the two cannot be
// related: one absolute and one relative, or different volumes.
//
// Example:
//
//	rel, _ := xfs.RelativePath("/srv/app/conf", "/srv/app/data/x.db") // "../data/x.db"
func RelativePath(from, to string) (string, error) {
	if filepath.IsAbs(from) != filepath.IsAbs(to) ||
		!strings.EqualFold(filepath.VolumeName(from), filepath.VolumeName(to)) {
		return "", fmt.Errorf("%w: %q and %q", ErrDifferentRoots, from, to)
	}
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDifferentRoots, err)
	}
	return rel, nil
}

// CommonPath returns the longest directory prefix shared by every path, or
// "" when there is none. Prefixes are compared element by element, so
// "/a/bc" and "/a/bd" share "/a", not "/a/b".
func CommonPath(paths ...string) string {
	if len(paths) == 0 {
		return ""
	}
	sep := string(filepath.Separator)
	common := strings.Split(filepath.Clean(paths[0]), sep)
	for _, p := range paths[1:] {
		elems := strings.Split(filepath.Clean(p), sep)
		n := 0
		for n < len(common) && n < len(elems) && common[n] == elems[n] {
			n++
		}
		common = common[:n]
	}
	switch {
	case len(common) == 0:
		return ""
	case len(common) == 1 && common[0] == "":
		// Only the root of absolute paths is shared.
		return sep
	}
	return strings.Join(common, sep)
}
