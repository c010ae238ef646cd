package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/sirjuddington/slade-core/property"
)

// flateRegisterOnce swaps stdlib archive/zip's DEFLATE codec for
// klauspost/compress/flate, the same compression library the rest of
// the pack's container formats standardize on, without reinventing the
// ZIP central-directory format stdlib already gets right.
var flateRegisterOnce sync.Once

func registerKlauspostFlate() {
	flateRegisterOnce.Do(func() {
		zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
			return flate.NewReader(r)
		})
		zip.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		})
	})
}

// zipCodec implements Codec over a real ZIP container (spec.md §4.3).
// Unmodified entries are carried forward at save time via CreateRaw,
// copying their original compressed bytes instead of recompressing —
// the ZIP realization of the teacher's incremental-save, reuse-what-
// hasn't-changed idiom (writer.go's temp-file block cache).
type zipCodec struct {
	maxEntrySizeMB float64

	zr     *zip.Reader
	rc     *zip.ReadCloser
	srcLen int64
}

// NewZipCodec constructs a ZIP codec; maxEntrySizeMB <= 0 disables the
// per-entry size limit.
func NewZipCodec(maxEntrySizeMB float64) Codec {
	registerKlauspostFlate()
	return &zipCodec{maxEntrySizeMB: maxEntrySizeMB}
}

// OpenZip opens src as a ZIP archive.
func OpenZip(src Source, maxEntrySizeMB float64, progress ProgressSink) (*Archive, error) {
	a := newArchive(NewZipCodec(maxEntrySizeMB))
	if err := a.Open(src, progress); err != nil {
		return nil, err
	}
	return a, nil
}

func (z *zipCodec) FormatID() string { return "zip" }
func (z *zipCodec) Treeless() bool   { return false }

func (z *zipCodec) Open(a *Archive, src Source, progress ProgressSink) error {
	switch {
	case src.Path != "":
		rc, err := zip.OpenReader(src.Path)
		if err != nil {
			return wrap(ErrInvalidFormat, "%s: %v", src.Path, err)
		}
		z.rc = rc
		z.zr = &rc.Reader
	case src.Bytes != nil:
		zr, err := zip.NewReader(bytes.NewReader(src.Bytes), int64(len(src.Bytes)))
		if err != nil {
			return wrap(ErrInvalidFormat, "%v", err)
		}
		z.zr = zr
		z.srcLen = int64(len(src.Bytes))
	case src.Entry != nil:
		data, err := src.Entry.Data()
		if err != nil {
			return err
		}
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return wrap(ErrInvalidFormat, "%v", err)
		}
		z.zr = zr
		z.srcLen = int64(len(data))
	default:
		return wrap(ErrInvalidFormat, "no source provided")
	}

	progress.Message("Reading zip archive data")

	for i, zf := range z.zr.File {
		progress.Progress(float64(i) / float64(len(z.zr.File)))

		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			dirPath := strings.Trim(zf.Name, "/")
			if dirPath != "" {
				a.CreateDir(dirPath)
			}
			continue
		}

		if z.maxEntrySizeMB > 0 && float64(zf.UncompressedSize64) > z.maxEntrySizeMB*1024*1024 {
			return &EntryTooLargeError{Name: zf.Name, MB: float64(zf.UncompressedSize64) / (1024 * 1024)}
		}

		dirPath, name := splitZipPath(zf.Name)
		dir := a.CreateDir(dirPath)

		e := newLazyEntry(name, int64(zf.UncompressedSize64))
		e.ExProps().Set("ZipIndex", property.Int(int32(i)))
		if dirPath != "" {
			e.ExProps().Set("filePath", property.String(dirPath))
		}

		dir.insertEntry(e, len(dir.entries))
		e.parent = a
		e.forceUnmodified()
	}

	return nil
}

// splitZipPath splits a zip-internal path "a/b/c.txt" into ("a/b", "c.txt").
func splitZipPath(name string) (dir, file string) {
	name = strings.TrimPrefix(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (z *zipCodec) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	prop, ok := e.ExProps().GetIf("ZipIndex")
	if !ok || z.zr == nil {
		return nil, wrap(ErrCorrupt, "entry %q has no backing zip record", e.Name())
	}
	idx := int(prop.AsInt())
	if idx < 0 || idx >= len(z.zr.File) {
		return nil, wrap(ErrCorrupt, "entry %q: zip index out of range", e.Name())
	}
	rc, err := z.zr.File[idx].Open()
	if err != nil {
		return nil, wrap(ErrCorrupt, "%s: %v", e.Name(), err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func entryFullPath(e *Entry) string {
	if e.dir == nil || e.dir.parent == nil {
		return e.Name()
	}
	return strings.TrimPrefix(e.dir.Path(), "/") + e.Name()
}

func (z *zipCodec) Save(a *Archive, pathOut string, progress ProgressSink) error {
	tmpPath := pathOut + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return wrap(ErrFileUnwritable, "%s: %v", tmpPath, err)
	}
	zw := zip.NewWriter(f)

	progress.Message("Writing zip archive data")

	var walk func(d *Dir) error
	walk = func(d *Dir) error {
		if d.parent != nil && len(d.entries) == 0 && len(d.dirs) == 0 {
			_, err := zw.Create(strings.TrimPrefix(d.Path(), "/"))
			if err != nil {
				return err
			}
		}
		for _, e := range d.entries {
			if err := z.writeEntry(zw, e); err != nil {
				return err
			}
		}
		for _, c := range d.dirs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(a.root); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return wrap(ErrFileUnwritable, "%v", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return wrap(ErrFileUnwritable, "%v", err)
	}
	if err := os.Rename(tmpPath, pathOut); err != nil {
		return wrap(ErrFileUnwritable, "%v", err)
	}
	return nil
}

// writeEntry carries an unmodified entry's original compressed bytes
// forward unchanged (CreateRaw), or (re)compresses new/modified data.
func (z *zipCodec) writeEntry(zw *zip.Writer, e *Entry) error {
	name := entryFullPath(e)

	if e.State() == StateUnmodified && z.zr != nil {
		if prop, ok := e.ExProps().GetIf("ZipIndex"); ok {
			idx := int(prop.AsInt())
			if idx >= 0 && idx < len(z.zr.File) {
				zf := z.zr.File[idx]
				rawR, err := zf.OpenRaw()
				if err == nil {
					fh := zf.FileHeader
					fh.Name = name
					w, err := zw.CreateRaw(&fh)
					if err == nil {
						_, err = io.Copy(w, rawR)
						if err == nil {
							e.setOnDiskPos(0, uint32(fh.CompressedSize64))
							return nil
						}
					}
				}
			}
		}
	}

	data, err := e.Data()
	if err != nil {
		return err
	}
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip: creating %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func (z *zipCodec) DetectMaps(a *Archive) []MapDesc {
	return detectMapsUnderMapsDir(a)
}

// detectMapsUnderMapsDir scans a "maps/<name>/" subdirectory convention
// for UDMF maps (spec.md §4.3) — shared by the tree-structured
// container formats (ZIP, VWAD, directory).
func detectMapsUnderMapsDir(a *Archive) []MapDesc {
	mapsDir := a.root.Child("maps")
	if mapsDir == nil {
		return nil
	}
	var out []MapDesc
	for _, md := range mapsDir.dirs {
		entries := md.entries
		for i, e := range entries {
			if e.UpperName() == "TEXTMAP" {
				end := e
				var unk []*Entry
				for j := i + 1; j < len(entries); j++ {
					if entries[j].UpperName() == "ENDMAP" {
						end = entries[j]
						break
					}
					unk = append(unk, entries[j])
				}
				out = append(out, MapDesc{Name: md.Name(), Format: MapFormatUDMF, Head: md.self, End: end, Unk: unk})
				break
			}
		}
	}
	return out
}
