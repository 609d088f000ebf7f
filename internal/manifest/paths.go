package manifest

import (
	"os"
	"path/filepath"
	"strings"
)

// expandPath expands a leading "~" to the user's home directory, expands
// embedded environment variables, and resolves the result against base if
// it is not already absolute.
func expandPath(base, raw string) (string, error) {
	s := raw

	if s == "~" || strings.HasPrefix(s, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		s = filepath.Join(home, strings.TrimPrefix(s, "~"))
	}

	s = os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})

	if !filepath.IsAbs(s) {
		s = filepath.Join(base, s)
	}

	return filepath.Clean(s), nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
