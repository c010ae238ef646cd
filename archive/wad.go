package archive

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"

	"github.com/sirjuddington/slade-core/property"
)

// doomMapLumps is the ordered family of binary map lumps recognized
// when scanning for a map header (SPEC_FULL.md §10 — a superset of the
// required 5 so interleaved SEGS/NODES/REJECT/BLOCKMAP/BEHAVIOR/
// SCRIPTS lumps don't break detection).
var doomMapLumps = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
	"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
	"BEHAVIOR", "SCRIPTS", "LEAFS", "LIGHTS", "MACROS",
}

var requiredMapLumps = []string{"VERTEXES", "LINEDEFS", "SIDEDEFS", "THINGS", "SECTORS"}

// wadCodec implements Codec for both WAD (little-endian) and WadJ
// (big-endian, Jaguar) archives; see spec.md §4.2.
type wadCodec struct {
	order      binary.ByteOrder
	formatID   string
	isIWAD     bool
	iwadLock   bool
	spriteDot  bool // WadJArchive's "entry after this one is named '.'" sprite override
	allowEmptyDupeNames bool

	namespaces      []nsRange
	namespacesDirty bool

	rawSource []byte // retained for lazy reload of not-yet-decoded entries
}

// NewWadCodec constructs the little-endian WAD codec.
func NewWadCodec(iwadLock bool) Codec {
	return &wadCodec{order: binary.LittleEndian, formatID: "wad", iwadLock: iwadLock, namespacesDirty: true}
}

// NewWadJCodec constructs the big-endian (Jaguar) WAD codec.
func NewWadJCodec(iwadLock bool) Codec {
	return &wadCodec{order: binary.BigEndian, formatID: "wadj", iwadLock: iwadLock, spriteDot: true, namespacesDirty: true}
}

// OpenWAD opens src as a little-endian WAD archive.
func OpenWAD(src Source, iwadLock bool, progress ProgressSink) (*Archive, error) {
	a := newArchive(NewWadCodec(iwadLock))
	if err := a.Open(src, progress); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenWadJ opens src as a big-endian Jaguar WAD archive.
func OpenWadJ(src Source, iwadLock bool, progress ProgressSink) (*Archive, error) {
	a := newArchive(NewWadJCodec(iwadLock))
	if err := a.Open(src, progress); err != nil {
		return nil, err
	}
	return a, nil
}

func (w *wadCodec) FormatID() string { return w.formatID }
func (w *wadCodec) Treeless() bool   { return true }

// LimitName implements wadNameLimiter: WAD names are truncated to 8
// chars with any extension stripped, unless the rename is forced.
func (w *wadCodec) LimitName(name string) string {
	name = noExt(name)
	if len(name) > 8 {
		name = name[:8]
	}
	return strings.ToUpper(name)
}

func resolveSourceBytes(src Source) ([]byte, error) {
	switch {
	case src.Bytes != nil:
		return src.Bytes, nil
	case src.Path != "":
		b, err := os.ReadFile(src.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, wrap(ErrFileNotFound, "%s", src.Path)
			}
			return nil, wrap(ErrFileUnreadable, "%s", src.Path)
		}
		return b, nil
	case src.Entry != nil:
		return src.Entry.Data()
	default:
		return nil, wrap(ErrInvalidFormat, "no source provided")
	}
}

// isWadArchive checks the structural validity conditions of spec.md
// §4.2 without fully parsing the directory.
func isWadArchive(data []byte, order binary.ByteOrder) bool {
	if len(data) < 12 {
		return false
	}
	magic := string(data[:4])
	if magic[1:] != "WAD" {
		return false
	}
	numLumps := order.Uint32(data[4:8])
	dirOffset := order.Uint32(data[8:12])
	if dirOffset < 12 {
		return false
	}
	end := uint64(dirOffset) + 16*uint64(numLumps)
	return end <= uint64(len(data))
}

func (w *wadCodec) Open(a *Archive, src Source, progress ProgressSink) error {
	data, err := resolveSourceBytes(src)
	if err != nil {
		return err
	}
	if !isWadArchive(data, w.order) {
		return wrap(ErrInvalidFormat, "not a valid WAD")
	}
	w.rawSource = data

	magic := string(data[:4])
	w.isIWAD = magic[0] == 'I'
	numLumps := w.order.Uint32(data[4:8])
	dirOffset := w.order.Uint32(data[8:12])

	progress.Message("Reading wad archive data")

	seenOffsets := make(map[uint32]bool)
	pos := int(dirOffset)
	fileSize := uint32(len(data))

	for d := uint32(0); d < numLumps; d++ {
		progress.Progress(float64(d) / float64(numLumps))

		recStart := pos
		if recStart+16 > len(data) {
			return wrap(ErrCorrupt, "wad directory truncated at lump %d", d)
		}
		offset := w.order.Uint32(data[recStart : recStart+4])
		size := w.order.Uint32(data[recStart+4 : recStart+8])
		nameBytes := append([]byte(nil), data[recStart+8:recStart+16]...)
		pos += 16

		if size > 0 {
			if offset == 0 {
				continue
			}
			if seenOffsets[offset] {
				logf("wad: ignoring entry %d: clone of a previous entry", d)
				continue
			}
			seenOffsets[offset] = true
		}
		if size == 0 && offset > fileSize {
			offset = 0
		}

		jaguar := nameBytes[0]&0x80 != 0
		nameBytes[0] &= 0x7f
		name := trimNulName(nameBytes)

		actualSize := size
		if jaguar {
			actualSize = w.jaguarActualSize(data, d, numLumps, dirOffset, offset, pos)
		}

		if uint64(offset)+uint64(actualSize) > uint64(len(data)) {
			return wrap(ErrCorrupt, "lump %d (%s) data goes past end of file", d, name)
		}

		e := newLazyEntry(name, int64(actualSize))
		e.setOnDiskPos(offset, size)
		if jaguar {
			e.SetEncryption(EncryptionJaguar)
			e.ExProps().Set("FullSize", property.Int(int32(size)))
		}

		if actualSize > 0 {
			raw := append([]byte(nil), data[offset:offset+actualSize]...)
			if jaguar {
				if fs, ok := e.ExProps().GetIf("FullSize"); ok && fs.AsUInt() > uint32(len(raw)) {
					padded := make([]byte, fs.AsUInt())
					copy(padded, raw)
					raw = padded
				}
				raw = jaguarDecode(raw, len(raw))
			}
			e.SetData(raw)
		} else {
			e.SetData(nil)
		}
		e.forceUnmodified()

		a.root.insertEntry(e, len(a.root.entries))
		e.parent = a
	}

	w.namespacesDirty = true
	w.updateNamespaces(a)

	return nil
}

func trimNulName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// jaguarActualSize scans ahead from the directory position following
// lump d's record for the next nonzero offset, or falls back to
// dirOffset, per spec.md §4.2.
func (w *wadCodec) jaguarActualSize(data []byte, d, numLumps, dirOffset, offset uint32, posAfterRecord int) uint32 {
	if d >= numLumps-1 {
		if offset > dirOffset {
			return uint32(len(data)) - offset
		}
		return dirOffset - offset
	}
	pos := posAfterRecord
	var nextOffset uint32
	for i := uint32(0); i+d < numLumps; i++ {
		if pos+4 > len(data) {
			break
		}
		nextOffset = w.order.Uint32(data[pos : pos+4])
		if nextOffset != 0 {
			break
		}
		pos += 16
	}
	if nextOffset == 0 {
		nextOffset = dirOffset
	}
	return nextOffset - offset
}

func (w *wadCodec) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	// WAD entries are decoded eagerly at Open, so this is only a
	// fallback for an entry whose bytes are not loaded: it re-reads
	// from the retained source and re-runs Jaguar decode if needed.
	offset, size := e.OffsetOnDisk(), e.SizeOnDisk()
	if int(offset)+int(size) > len(w.rawSource) {
		return nil, wrap(ErrCorrupt, "entry %q out of range", e.Name())
	}
	raw := append([]byte(nil), w.rawSource[offset:offset+size]...)
	if e.Encryption() == EncryptionJaguar {
		raw = jaguarDecode(raw, len(raw))
	}
	return raw, nil
}

func (w *wadCodec) Save(a *Archive, pathOut string, progress ProgressSink) error {
	if w.isIWAD && w.iwadLock {
		return wrap(ErrReadOnly, "refusing to overwrite an IWAD (iwad_lock)")
	}

	entries := a.root.entries
	progress.Message("Writing wad archive data")

	var buf bytes.Buffer
	_, _ = buf.WriteString(map[bool]string{true: "IWAD", false: "PWAD"}[w.isIWAD])
	if buf.Len() != 4 {
		return wrap(ErrCorrupt, "internal: bad magic length")
	}

	type dirRec struct {
		offset, size uint32
		name         string
	}
	var recs []dirRec
	offset := uint32(12)
	var dataBuf bytes.Buffer

	for i, e := range entries {
		progress.Progress(float64(i) / float64(len(entries)))
		data, err := e.Data()
		if err != nil {
			return err
		}
		recs = append(recs, dirRec{offset: offset, size: uint32(len(data)), name: e.Name()})
		dataBuf.Write(data)
		e.setOnDiskPos(offset, uint32(len(data)))
		offset += uint32(len(data))
	}
	dirOffset := offset

	if err := binary.Write(&buf, w.order, uint32(len(entries))); err != nil {
		return err
	}
	if err := binary.Write(&buf, w.order, dirOffset); err != nil {
		return err
	}
	buf.Write(dataBuf.Bytes())

	for _, r := range recs {
		if err := binary.Write(&buf, w.order, r.offset); err != nil {
			return err
		}
		if err := binary.Write(&buf, w.order, r.size); err != nil {
			return err
		}
		nameBuf := make([]byte, 8)
		copy(nameBuf, r.name)
		buf.Write(nameBuf)
	}

	if err := os.WriteFile(pathOut, buf.Bytes(), 0o644); err != nil {
		return wrap(ErrFileUnwritable, "%s: %v", pathOut, err)
	}
	return nil
}

func (w *wadCodec) DetectMaps(a *Archive) []MapDesc {
	entries := a.root.entries
	var out []MapDesc

	for i := 0; i < len(entries); i++ {
		if entries[i].UpperName() == "TEXTMAP" {
			if i == 0 {
				continue
			}
			head := entries[i-1]
			end := entries[i]
			j := i + 1
			var unk []*Entry
			for j < len(entries) {
				if entries[j].UpperName() == "ENDMAP" {
					end = entries[j]
					j++
					break
				}
				unk = append(unk, entries[j])
				j++
			}
			out = append(out, MapDesc{Name: head.Name(), Format: MapFormatUDMF, Head: head, End: end, Unk: unk})
			i = j - 1
			continue
		}
	}

	// Binary format scan: header is whatever precedes the first match
	// of the required lump set, within the doomMapLumps family.
	for i := 1; i < len(entries); i++ {
		if !isMapLumpName(entries[i].UpperName()) {
			continue
		}
		// Check this run contains all required lumps before hitting an
		// entry that is neither a map lump nor the head of a new run.
		have := map[string]bool{}
		hasBehavior := false
		hasDoom64 := map[string]bool{}
		j := i
		for j < len(entries) && isMapLumpName(entries[j].UpperName()) {
			n := entries[j].UpperName()
			have[n] = true
			if n == "BEHAVIOR" {
				hasBehavior = true
			}
			if n == "LEAFS" || n == "LIGHTS" || n == "MACROS" {
				hasDoom64[n] = true
			}
			j++
		}
		allReq := true
		for _, r := range requiredMapLumps {
			if !have[r] {
				allReq = false
				break
			}
		}
		if !allReq {
			continue
		}
		format := MapFormatDoom
		if hasBehavior {
			format = MapFormatHexen
		} else if hasDoom64["LEAFS"] && hasDoom64["LIGHTS"] && hasDoom64["MACROS"] {
			format = MapFormatDoom64
		}
		head := entries[i-1]
		end := entries[j-1]
		out = append(out, MapDesc{Name: head.Name(), Format: format, Head: head, End: end})
		i = j - 1
	}

	return out
}

func isMapLumpName(name string) bool {
	for _, n := range doomMapLumps {
		if n == name {
			return true
		}
	}
	return false
}

func (w *wadCodec) NamespaceOfEntry(a *Archive, e *Entry) string {
	idx := a.root.IndexOfEntry(e)
	if idx < 0 {
		return ""
	}
	if w.spriteDot && idx+1 < len(a.root.entries) && a.root.entries[idx+1].Name() == "." {
		return "sprites"
	}
	return w.NamespaceOf(a, idx)
}
