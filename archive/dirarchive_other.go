//go:build !unix

package archive

import "os"

// statMode falls back to Go's portable FileMode on non-Unix platforms,
// where the raw stat_t permission bits have no equivalent.
func statMode(fi os.FileInfo) uint32 {
	return uint32(fi.Mode().Perm())
}
