package archive_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/sirjuddington/slade-core/archive"
)

type vwadTestChunk struct {
	name, path string
	data       []byte
}

func buildVwadBytes(t *testing.T, author string, pub ed25519.PublicKey, chunks []vwadTestChunk, signed bool, priv ed25519.PrivateKey) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("VWAD")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // version
	var flags uint16
	if signed {
		flags |= 1
	}
	_ = binary.Write(&buf, binary.LittleEndian, flags)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(chunks)))

	writeStr := func(s string) {
		_ = binary.Write(&buf, binary.LittleEndian, uint16(len(s)))
		buf.WriteString(s)
	}
	writeStr(author)

	if pub == nil {
		pub = make([]byte, ed25519.PublicKeySize)
	}
	buf.Write(pub)

	for _, c := range chunks {
		var packed bytes.Buffer
		fw, err := flate.NewWriter(&packed, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("flate.NewWriter() error = %v", err)
		}
		if _, err := fw.Write(c.data); err != nil {
			t.Fatalf("fw.Write() error = %v", err)
		}
		if err := fw.Close(); err != nil {
			t.Fatalf("fw.Close() error = %v", err)
		}

		writeStr(c.name)
		writeStr(c.path)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(c.data)))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(packed.Len()))
		buf.Write(packed.Bytes())
	}

	if signed {
		sig := ed25519.Sign(priv, buf.Bytes())
		buf.Write(sig)
	}

	return buf.Bytes()
}

func TestOpenVWadUnsignedReadsEntries(t *testing.T) {
	raw := buildVwadBytes(t, "tester", nil, []vwadTestChunk{
		{name: "README", path: "", data: []byte("hello vwad")},
		{name: "SPRITE", path: "sprites", data: []byte{1, 2, 3, 4}},
	}, false, nil)

	a, err := archive.OpenVWad(archive.Source{Bytes: raw}, nil)
	if err != nil {
		t.Fatalf("OpenVWad() error = %v", err)
	}
	if a.FormatID() != "vwad" {
		t.Errorf("FormatID() = %q, want vwad", a.FormatID())
	}
	if a.NumEntries() != 2 {
		t.Fatalf("NumEntries() = %d, want 2", a.NumEntries())
	}

	root := a.Root().Entries()
	if len(root) != 1 || root[0].Name() != "README" {
		t.Fatalf("root entries = %v, want [README]", root)
	}
	got, err := root[0].Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if string(got) != "hello vwad" {
		t.Errorf("Data() = %q, want %q", got, "hello vwad")
	}

	sub := a.Root().Child("sprites")
	if sub == nil || len(sub.Entries()) != 1 || sub.Entries()[0].Name() != "SPRITE" {
		t.Fatalf("sprites subdir not populated as expected")
	}
	spriteData, err := sub.Entries()[0].Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if !bytes.Equal(spriteData, []byte{1, 2, 3, 4}) {
		t.Errorf("sprite Data() = %v, want [1 2 3 4]", spriteData)
	}
}

func TestOpenVWadSignedVerifiesSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	raw := buildVwadBytes(t, "signer", pub, []vwadTestChunk{{name: "A", data: []byte("x")}}, true, priv)

	a, err := archive.OpenVWad(archive.Source{Bytes: raw}, nil)
	if err != nil {
		t.Fatalf("OpenVWad() on correctly-signed archive error = %v", err)
	}
	if a.NumEntries() != 1 {
		t.Errorf("NumEntries() = %d, want 1", a.NumEntries())
	}
}

func TestOpenVWadRejectsBadSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	raw := buildVwadBytes(t, "signer", pub, []vwadTestChunk{{name: "A", data: []byte("x")}}, true, priv)
	raw[len(raw)-1] ^= 0xff // corrupt last signature byte

	if _, err := archive.OpenVWad(archive.Source{Bytes: raw}, nil); err == nil {
		t.Errorf("OpenVWad() on tampered signature = nil error, want error")
	}
}

func TestOpenVWadRejectsMissingMagic(t *testing.T) {
	if _, err := archive.OpenVWad(archive.Source{Bytes: []byte("nope")}, nil); err == nil {
		t.Errorf("OpenVWad() on non-vwad bytes = nil error, want error")
	}
}
