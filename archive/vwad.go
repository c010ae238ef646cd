package archive

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/sirjuddington/slade-core/property"
)

const (
	vwadMagic   = "VWAD"
	vwadVersion = uint16(1)

	vwadFlagSigned = uint16(1 << 0)
)

// vwadCodec implements Codec for the signed VWAD container (spec.md
// §4.4), grounded on original_source/.../VWadArchive.cpp: entries are
// stored as independently flate-compressed chunks, with an optional
// Ed25519 signature over the whole file trailing the chunk table.
// Z85 (z85.go) is VWAD's printable encoding for keys (grounded on the
// same original source's CVar string format); there is no existing Go
// VWAD or Z85 library anywhere in the example pack, so both the
// container framing and the Z85 codec are hand-written here rather
// than fabricating a dependency.
type vwadCodec struct {
	signed     bool
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	authorName string

	rawSource []byte
}

type vwadChunkMeta struct {
	path         string
	name         string
	packedOffset uint32
	packedSize   uint32
	unpackedSize uint32
}

// NewVWadCodec constructs a VWAD codec. privateKeyZ85 is the Z85
// encoding of a 32-byte Ed25519 seed; if empty and sign is true, a
// fresh key pair is generated. If sign is false the archive is written
// unsigned (VWADWR_NEW_DONT_SIGN equivalent).
func NewVWadCodec(privateKeyZ85, authorName string, sign bool) (Codec, error) {
	c := &vwadCodec{signed: sign, authorName: authorName}
	if !sign {
		return c, nil
	}
	if privateKeyZ85 == "" {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, wrap(ErrBadKey, "%v", err)
		}
		c.publicKey, c.privateKey = pub, priv
		return c, nil
	}
	seed, err := z85Decode(privateKeyZ85)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, wrap(ErrBadKey, "vwad_private_key: expected %d raw bytes, got %d", ed25519.SeedSize, len(seed))
	}
	allZero := true
	for _, b := range seed {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, wrap(ErrWeakKey, "vwad_private_key: all-zero seed")
	}
	c.privateKey = ed25519.NewKeyFromSeed(seed)
	c.publicKey = c.privateKey.Public().(ed25519.PublicKey)
	return c, nil
}

// OpenVWad opens src as a VWAD archive.
func OpenVWad(src Source, progress ProgressSink) (*Archive, error) {
	c := &vwadCodec{}
	a := newArchive(c)
	if err := a.Open(src, progress); err != nil {
		return nil, err
	}
	return a, nil
}

func (v *vwadCodec) FormatID() string { return "vwad" }
func (v *vwadCodec) Treeless() bool   { return false }

func (v *vwadCodec) Open(a *Archive, src Source, progress ProgressSink) error {
	data, err := resolveSourceBytes(src)
	if err != nil {
		return err
	}
	if len(data) < 4 || string(data[:4]) != vwadMagic {
		return wrap(ErrInvalidFormat, "not a VWAD archive")
	}
	v.rawSource = data

	r := bytes.NewReader(data[4:])
	var version, flags uint16
	var numChunks uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return wrap(ErrCorrupt, "truncated header")
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return wrap(ErrCorrupt, "truncated header")
	}
	if err := binary.Read(r, binary.LittleEndian, &numChunks); err != nil {
		return wrap(ErrCorrupt, "truncated header")
	}
	v.signed = flags&vwadFlagSigned != 0

	author, err := readVwadString(r)
	if err != nil {
		return err
	}
	v.authorName = author

	v.publicKey = make([]byte, ed25519.PublicKeySize)
	if _, err := io.ReadFull(r, v.publicKey); err != nil {
		return wrap(ErrCorrupt, "truncated public key")
	}

	progress.Message("Reading vwad archive data")

	for i := uint32(0); i < numChunks; i++ {
		progress.Progress(float64(i) / float64(numChunks))

		name, err := readVwadString(r)
		if err != nil {
			return err
		}
		path, err := readVwadString(r)
		if err != nil {
			return err
		}
		var unpackedSize, packedSize uint32
		if err := binary.Read(r, binary.LittleEndian, &unpackedSize); err != nil {
			return wrap(ErrCorrupt, "chunk %d: truncated size", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &packedSize); err != nil {
			return wrap(ErrCorrupt, "chunk %d: truncated size", i)
		}

		packedOffset := int64(len(data)) - int64(r.Len())
		if packedOffset+int64(packedSize) > int64(len(data)) {
			return wrap(ErrCorrupt, "chunk %d: data past end of file", i)
		}

		dir := a.CreateDir(path)
		e := newLazyEntry(name, int64(unpackedSize))
		e.ExProps().Set("VWadIndex", property.Int(int32(i)))
		if path != "" {
			e.ExProps().Set("filePath", property.String(path))
		}
		dir.insertEntry(e, len(dir.entries))
		e.parent = a
		e.forceUnmodified()

		if _, err := r.Seek(int64(packedSize), io.SeekCurrent); err != nil {
			return wrap(ErrCorrupt, "chunk %d: seek past data failed", i)
		}
	}

	if v.signed {
		sigOffset := int64(len(data)) - int64(r.Len())
		if sigOffset+ed25519.SignatureSize > int64(len(data)) {
			return wrap(ErrCorrupt, "truncated signature")
		}
		signed := data[:sigOffset]
		sig := data[sigOffset : sigOffset+ed25519.SignatureSize]
		if !ed25519.Verify(v.publicKey, signed, sig) {
			return wrap(ErrCorrupt, "signature verification failed")
		}
	}

	return nil
}

func readVwadString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", wrap(ErrCorrupt, "truncated string length")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrap(ErrCorrupt, "truncated string data")
	}
	return string(buf), nil
}

func writeVwadString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func (v *vwadCodec) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	prop, ok := e.ExProps().GetIf("VWadIndex")
	if !ok {
		return nil, wrap(ErrCorrupt, "entry %q has no backing vwad chunk", e.Name())
	}
	_ = prop
	// Chunk offsets are not retained individually post-open (see Open);
	// a lazy reload re-scans the header once to rebuild them.
	metas, err := v.scanChunks()
	if err != nil {
		return nil, err
	}
	idx := int(prop.AsInt())
	if idx < 0 || idx >= len(metas) {
		return nil, wrap(ErrCorrupt, "entry %q: vwad index out of range", e.Name())
	}
	m := metas[idx]
	packed := v.rawSource[m.packedOffset : m.packedOffset+m.packedSize]
	fr := flate.NewReader(bytes.NewReader(packed))
	defer fr.Close()
	return io.ReadAll(fr)
}

func (v *vwadCodec) scanChunks() ([]vwadChunkMeta, error) {
	data := v.rawSource
	r := bytes.NewReader(data[4:])
	var version, flags uint16
	var numChunks uint32
	binary.Read(r, binary.LittleEndian, &version)
	binary.Read(r, binary.LittleEndian, &flags)
	binary.Read(r, binary.LittleEndian, &numChunks)
	if _, err := readVwadString(r); err != nil {
		return nil, err
	}
	r.Seek(int64(ed25519.PublicKeySize), io.SeekCurrent)

	var out []vwadChunkMeta
	for i := uint32(0); i < numChunks; i++ {
		name, err := readVwadString(r)
		if err != nil {
			return nil, err
		}
		path, err := readVwadString(r)
		if err != nil {
			return nil, err
		}
		var unpackedSize, packedSize uint32
		binary.Read(r, binary.LittleEndian, &unpackedSize)
		binary.Read(r, binary.LittleEndian, &packedSize)
		offset := uint32(len(data)) - uint32(r.Len())
		out = append(out, vwadChunkMeta{path: path, name: name, packedOffset: offset, packedSize: packedSize, unpackedSize: unpackedSize})
		r.Seek(int64(packedSize), io.SeekCurrent)
	}
	return out, nil
}

func (v *vwadCodec) Save(a *Archive, pathOut string, progress ProgressSink) error {
	progress.Message("Writing vwad archive data")

	var buf bytes.Buffer
	buf.WriteString(vwadMagic)
	binary.Write(&buf, binary.LittleEndian, vwadVersion)
	var flags uint16
	if v.signed {
		flags |= vwadFlagSigned
	}
	binary.Write(&buf, binary.LittleEndian, flags)

	entries := flattenForVwad(a.root)
	binary.Write(&buf, binary.LittleEndian, uint32(len(entries)))
	writeVwadString(&buf, v.authorName)

	pub := v.publicKey
	if len(pub) != ed25519.PublicKeySize {
		pub = make([]byte, ed25519.PublicKeySize)
	}
	buf.Write(pub)

	for i, ent := range entries {
		progress.Progress(float64(i) / float64(len(entries)))
		data, err := ent.entry.Data()
		if err != nil {
			return err
		}
		var packed bytes.Buffer
		fw, _ := flate.NewWriter(&packed, flate.DefaultCompression)
		fw.Write(data)
		fw.Close()

		writeVwadString(&buf, ent.entry.Name())
		writeVwadString(&buf, ent.path)
		binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
		binary.Write(&buf, binary.LittleEndian, uint32(packed.Len()))
		buf.Write(packed.Bytes())
		ent.entry.ExProps().Set("VWadIndex", property.Int(int32(i)))
	}

	if v.signed {
		if v.privateKey == nil {
			return wrap(ErrBadKey, "signed vwad save requires a private key")
		}
		sig := ed25519.Sign(v.privateKey, buf.Bytes())
		buf.Write(sig)
	}

	if err := os.WriteFile(pathOut, buf.Bytes(), 0o644); err != nil {
		return wrap(ErrFileUnwritable, "%s: %v", pathOut, err)
	}
	return nil
}

type vwadFlatEntry struct {
	entry *Entry
	path  string
}

func flattenForVwad(d *Dir) []vwadFlatEntry {
	var out []vwadFlatEntry
	var walk func(d *Dir)
	walk = func(d *Dir) {
		p := strings.TrimPrefix(strings.TrimSuffix(d.Path(), "/"), "/")
		for _, e := range d.entries {
			out = append(out, vwadFlatEntry{entry: e, path: p})
		}
		for _, c := range d.dirs {
			walk(c)
		}
	}
	walk(d)
	return out
}

func (v *vwadCodec) DetectMaps(a *Archive) []MapDesc {
	return detectMapsUnderMapsDir(a)
}
