package fsutil

import (
	"os"
	"path/filepath"
)

// ProjectPath returns the base directory for relative cache paths: the
// directory of the running executable, or the working directory when the
// executable location cannot be determined (tests, go run).
func ProjectPath() (string, error) {
	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Dir(exe)
		// go run and test binaries live in throwaway temp dirs; the working
		// directory is the useful base there.
		if !isTempPath(dir) {
			return dir, nil
		}
	}
	return os.Getwd()
}

func isTempPath(dir string) bool {
	tmp := os.TempDir()
	rel, err := filepath.Rel(tmp, dir)
	if err != nil {
		return false
	}
	return rel == "." || (len(rel) > 0 && rel[0] != '.')
}
