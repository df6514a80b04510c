package fu

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

/*
EnsureDir creates the directory with all parents if it does not exist
*/
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", dir)
	}
	return nil
}

/*
Filename builds the artifact name <prefix>_<a>_<b>..<suffix> inside dir
*/
func Filename(dir string, suffix string, parts ...string) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "_"
		}
		s += p
	}
	return filepath.Join(dir, s+suffix)
}
