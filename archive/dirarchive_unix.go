//go:build unix

package archive

import (
	"os"

	"golang.org/x/sys/unix"
)

// statMode extracts the raw permission bits via the platform stat_t,
// generalizing the teacher's per-OS inode_linux.go/inode_darwin.go
// split (there used to fill FUSE attrs; here used to round-trip a
// mirrored file's mode across save).
func statMode(fi os.FileInfo) uint32 {
	if st, ok := fi.Sys().(*unix.Stat_t); ok {
		return uint32(st.Mode) & 0o7777
	}
	return uint32(fi.Mode().Perm())
}
