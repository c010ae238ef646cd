package archive_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirjuddington/slade-core/archive"
)

func buildWadBytes(t *testing.T, order binary.ByteOrder, magic string, lumps map[string][]byte, names []string) []byte {
	t.Helper()

	var data bytes.Buffer
	data.WriteString(magic)

	offsets := make(map[string]uint32, len(names))
	var body bytes.Buffer
	pos := uint32(12)
	for _, n := range names {
		offsets[n] = pos
		body.Write(lumps[n])
		pos += uint32(len(lumps[n]))
	}

	if err := binary.Write(&data, order, uint32(len(names))); err != nil {
		t.Fatalf("write numLumps: %v", err)
	}
	dirOffset := pos
	if err := binary.Write(&data, order, dirOffset); err != nil {
		t.Fatalf("write dirOffset: %v", err)
	}
	data.Write(body.Bytes())

	for _, n := range names {
		if err := binary.Write(&data, order, offsets[n]); err != nil {
			t.Fatalf("write offset: %v", err)
		}
		if err := binary.Write(&data, order, uint32(len(lumps[n]))); err != nil {
			t.Fatalf("write size: %v", err)
		}
		nameBuf := make([]byte, 8)
		copy(nameBuf, n)
		data.Write(nameBuf)
	}

	return data.Bytes()
}

func TestOpenWADReadsEntries(t *testing.T) {
	lumps := map[string][]byte{
		"MAP01":    nil,
		"VERTEXES": {1, 2, 3, 4},
		"LINEDEFS": {5, 6},
	}
	names := []string{"MAP01", "VERTEXES", "LINEDEFS"}
	raw := buildWadBytes(t, binary.LittleEndian, "PWAD", lumps, names)

	a, err := archive.OpenWAD(archive.Source{Bytes: raw}, false, nil)
	if err != nil {
		t.Fatalf("OpenWAD() error = %v", err)
	}
	if a.FormatID() != "wad" {
		t.Errorf("FormatID() = %q, want wad", a.FormatID())
	}
	if a.NumEntries() != len(names) {
		t.Fatalf("NumEntries() = %d, want %d", a.NumEntries(), len(names))
	}

	entries := a.Root().Entries()
	for i, n := range names {
		if entries[i].Name() != n {
			t.Errorf("entries[%d].Name() = %q, want %q", i, entries[i].Name(), n)
		}
		got, err := entries[i].Data()
		if err != nil {
			t.Fatalf("entries[%d].Data() error = %v", i, err)
		}
		if !bytes.Equal(got, lumps[n]) {
			t.Errorf("entries[%d].Data() = %v, want %v", i, got, lumps[n])
		}
	}
}

func TestOpenWADRejectsIWADWhenLocked(t *testing.T) {
	raw := buildWadBytes(t, binary.LittleEndian, "IWAD", map[string][]byte{"A": {1}}, []string{"A"})

	a, err := archive.OpenWAD(archive.Source{Bytes: raw}, true, nil)
	if err != nil {
		t.Fatalf("OpenWAD() error = %v", err)
	}

	dir := t.TempDir()
	err = a.Save(filepath.Join(dir, "out.wad"), nil)
	if err == nil {
		t.Errorf("Save() on a locked IWAD = nil error, want error")
	}
}

func TestOpenWadJBigEndianMagic(t *testing.T) {
	raw := buildWadBytes(t, binary.BigEndian, "PWAD", map[string][]byte{"FOO": {9, 9}}, []string{"FOO"})

	a, err := archive.OpenWadJ(archive.Source{Bytes: raw}, false, nil)
	if err != nil {
		t.Fatalf("OpenWadJ() error = %v", err)
	}
	if a.FormatID() != "wadj" {
		t.Errorf("FormatID() = %q, want wadj", a.FormatID())
	}
	if a.NumEntries() != 1 {
		t.Errorf("NumEntries() = %d, want 1", a.NumEntries())
	}
}

func TestDetectMapsHandlesTextmapAsFirstEntry(t *testing.T) {
	lumps := map[string][]byte{
		"TEXTMAP": {1},
		"ENDMAP":  nil,
	}
	names := []string{"TEXTMAP", "ENDMAP"}
	raw := buildWadBytes(t, binary.LittleEndian, "PWAD", lumps, names)

	a, err := archive.OpenWAD(archive.Source{Bytes: raw}, false, nil)
	if err != nil {
		t.Fatalf("OpenWAD() error = %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("DetectMaps() panicked on a leading TEXTMAP entry: %v", r)
		}
	}()
	maps := a.DetectMaps()
	if len(maps) != 0 {
		t.Errorf("DetectMaps() = %v, want none (no head entry precedes TEXTMAP)", maps)
	}
}

func TestWADSaveSetsDirectoryOffsetsAndRoundTrips(t *testing.T) {
	lumps := map[string][]byte{"VERTEXES": {1, 2, 3, 4}, "LINEDEFS": {5, 6}}
	names := []string{"VERTEXES", "LINEDEFS"}
	raw := buildWadBytes(t, binary.LittleEndian, "PWAD", lumps, names)

	a, err := archive.OpenWAD(archive.Source{Bytes: raw}, false, nil)
	if err != nil {
		t.Fatalf("OpenWAD() error = %v", err)
	}

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.wad")
	if err := a.Save(outPath, nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	a2, err := archive.OpenWAD(archive.Source{Bytes: saved}, false, nil)
	if err != nil {
		t.Fatalf("OpenWAD() on saved output error = %v", err)
	}
	if a2.NumEntries() != len(names) {
		t.Fatalf("round-tripped NumEntries() = %d, want %d", a2.NumEntries(), len(names))
	}
	for i, n := range names {
		e := a2.Root().Entries()[i]
		if e.Name() != n {
			t.Errorf("round-tripped entries[%d].Name() = %q, want %q", i, e.Name(), n)
		}
		got, err := e.Data()
		if err != nil {
			t.Fatalf("Data() error = %v", err)
		}
		if !bytes.Equal(got, lumps[n]) {
			t.Errorf("round-tripped entries[%d].Data() = %v, want %v", i, got, lumps[n])
		}
	}
}
