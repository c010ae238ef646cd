package archive

import (
	"encoding/binary"
	"os"
)

// OpenOptions controls format-specific behavior of Open when it must
// be inferred rather than chosen explicitly by the caller.
type OpenOptions struct {
	IwadLock               bool
	ZipMaxEntrySizeMB      float64
	DirIgnoreHidden        bool
}

// Open inspects path and dispatches to the matching codec's own Open*
// constructor: a directory goes to OpenDir, otherwise the first bytes
// are sniffed for WAD/WadJ/ZIP/VWAD magic (spec.md §4.1 "format
// detection precedes codec dispatch").
func Open(path string, opts OpenOptions, progress ProgressSink) (*Archive, error) {
	if progress == nil {
		progress = NoopProgress
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrap(ErrFileNotFound, "%s", path)
	}
	if info.IsDir() {
		return OpenDir(path, opts.DirIgnoreHidden, progress)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(ErrFileUnreadable, "%s: %v", path, err)
	}

	src := Source{Path: path, Bytes: data}
	switch {
	case len(data) >= 4 && isWadArchive(data, binary.LittleEndian):
		return OpenWAD(src, opts.IwadLock, progress)
	case len(data) >= 4 && isWadArchive(data, binary.BigEndian):
		return OpenWadJ(src, opts.IwadLock, progress)
	case len(data) >= 4 && (string(data[:4]) == "PK\x03\x04" || string(data[:4]) == "PK\x05\x06"):
		maxMB := opts.ZipMaxEntrySizeMB
		if maxMB == 0 {
			maxMB = 256
		}
		return OpenZip(src, maxMB, progress)
	case len(data) >= 4 && string(data[:4]) == vwadMagic:
		return OpenVWad(src, progress)
	default:
		return nil, wrap(ErrInvalidFormat, "%s: unrecognized archive format", path)
	}
}
