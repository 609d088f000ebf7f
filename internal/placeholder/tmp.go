package placeholder

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// allocTmp returns the directory allocated for key within the current
// command, creating it (and the run-scoped tmp root) on first reference.
// Subsequent references to the same key within the same command return the
// same path; BeginCommand clears the cache so the next command gets fresh
// directories.
func (r *Resolver) allocTmp(key string) (string, error) {
	if dir, ok := r.tmpCache[key]; ok {
		return dir, nil
	}

	if err := os.MkdirAll(r.tmpRoot, 0o755); err != nil {
		return "", err
	}

	dir := filepath.Join(r.tmpRoot, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	r.tmpCache[key] = dir
	return dir, nil
}
