package mapformat_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/mapformat"
	"github.com/sirjuddington/slade-core/property"
)

func mustPack(order binary.ByteOrder, vals ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		if err := binary.Write(&buf, order, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func mustPackRaw(order binary.ByteOrder, v interface{}) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, order, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func buildSimpleDoomLumps(t *testing.T) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	t.Helper()
	src := mapdata.NewMap()
	v1 := src.NewVertex(0, 0)
	v2 := src.NewVertex(64, 0)
	sec := src.NewSector()
	sec.Floor.Texture = "FLOOR0_1"
	sec.Ceiling.Texture = "CEIL3_5"
	sec.SecID = 1
	side := src.NewSide(sec)
	side.TexMiddle = "STARTAN2"
	line := src.NewLine(v1, v2)
	line.Special = 1
	line.LineID = 1
	src.AttachSide(line, side, true)
	th := src.NewThing(32, 32)
	th.Type = 1
	th.Angle = 90

	return mapformat.WriteDoom(src, binary.LittleEndian)
}

func TestDoomRoundTrip(t *testing.T) {
	vertexes, sidedefs, linedefs, sectors, things := buildSimpleDoomLumps(t)

	m := mapdata.NewMap()
	if err := mapformat.ReadDoom(m, vertexes, sidedefs, linedefs, sectors, things, binary.LittleEndian); err != nil {
		t.Fatalf("ReadDoom() error = %v", err)
	}

	if m.CurrentFormat != mapdata.FormatDoom {
		t.Errorf("CurrentFormat = %v, want FormatDoom", m.CurrentFormat)
	}
	if len(m.Vertices()) != 2 {
		t.Fatalf("len(Vertices()) = %d, want 2", len(m.Vertices()))
	}
	if len(m.Lines()) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(m.Lines()))
	}
	line := m.Lines()[0]
	if line.Special != 1 || line.LineID != 1 {
		t.Errorf("line Special/LineID = %d/%d, want 1/1", line.Special, line.LineID)
	}
	if line.Side1 == nil || line.Side1.TexMiddle != "STARTAN2" {
		t.Errorf("line.Side1.TexMiddle = %q, want STARTAN2", line.Side1.TexMiddle)
	}
	if len(m.Sectors()) != 1 || m.Sectors()[0].Floor.Texture != "FLOOR0_1" {
		t.Errorf("sector floor texture round trip failed: %+v", m.Sectors())
	}
	if len(m.Things()) != 1 || m.Things()[0].Angle != 90 {
		t.Errorf("thing round trip failed: %+v", m.Things())
	}
}

func buildSimpleHexenLumps(t *testing.T) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	t.Helper()
	src := mapdata.NewMap()
	src.CurrentFormat = mapdata.FormatHexen
	v1 := src.NewVertex(0, 0)
	v2 := src.NewVertex(64, 0)
	sec := src.NewSector()
	sec.Floor.Texture = "FLOOR0_1"
	sec.Ceiling.Texture = "CEIL3_5"
	sec.SecID = 1
	side := src.NewSide(sec)
	side.TexMiddle = "STARTAN2"
	line := src.NewLine(v1, v2)
	line.Special = 121
	line.Props().Set("arg0", property.Int(7))
	line.Props().Set("arg2", property.Int(3))
	src.AttachSide(line, side, true)
	th := src.NewThing(32, 32)
	th.Type = 1
	th.Angle = 90
	th.Props().Set("id", property.Int(5))
	th.Props().Set("arg1", property.Int(9))

	return mapformat.WriteHexen(src, binary.LittleEndian)
}

func TestHexenRoundTrip(t *testing.T) {
	vertexes, sidedefs, linedefs, sectors, things := buildSimpleHexenLumps(t)

	m := mapdata.NewMap()
	if err := mapformat.ReadHexen(m, vertexes, sidedefs, linedefs, sectors, things, binary.LittleEndian); err != nil {
		t.Fatalf("ReadHexen() error = %v", err)
	}

	if len(m.Lines()) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(m.Lines()))
	}
	line := m.Lines()[0]
	if line.Special != 121 {
		t.Errorf("line.Special = %d, want 121", line.Special)
	}
	if p, ok := line.Props().GetIf("arg0"); !ok || p.AsInt() != 7 {
		t.Errorf("line arg0 = %v, want 7", p)
	}
	if p, ok := line.Props().GetIf("arg2"); !ok || p.AsInt() != 3 {
		t.Errorf("line arg2 = %v, want 3", p)
	}
	if line.Side1 == nil || line.Side1.TexMiddle != "STARTAN2" {
		t.Errorf("line.Side1.TexMiddle = %q, want STARTAN2", line.Side1.TexMiddle)
	}
	if len(m.Things()) != 1 {
		t.Fatalf("len(Things()) = %d, want 1", len(m.Things()))
	}
	th := m.Things()[0]
	if p, ok := th.Props().GetIf("id"); !ok || p.AsInt() != 5 {
		t.Errorf("thing id = %v, want 5", p)
	}
	if p, ok := th.Props().GetIf("arg1"); !ok || p.AsInt() != 9 {
		t.Errorf("thing arg1 = %v, want 9", p)
	}
}

type fakeGameConfig struct {
	names  map[uint16]string
	hashes map[string]uint16
}

func (c *fakeGameConfig) DefaultWallTexture() string { return "-" }
func (c *fakeGameConfig) DefaultFlatTexture() string { return "-" }
func (c *fakeGameConfig) HashToTextureName(hash uint16) string {
	if n, ok := c.names[hash]; ok {
		return n
	}
	return "-"
}
func (c *fakeGameConfig) TextureNameToHash(name string) uint16 {
	if h, ok := c.hashes[name]; ok {
		return h
	}
	return 0
}

func newFakeGameConfig() *fakeGameConfig {
	return &fakeGameConfig{
		names:  map[uint16]string{100: "FLOOR0_1", 200: "CEIL3_5", 300: "STARTAN2"},
		hashes: map[string]uint16{"FLOOR0_1": 100, "CEIL3_5": 200, "STARTAN2": 300},
	}
}

func buildSimpleDoom64Lumps(t *testing.T, cfg mapformat.GameConfig) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	t.Helper()
	src := mapdata.NewMap()
	v1 := src.NewVertex(0, 0)
	v2 := src.NewVertex(64, 0)
	sec := src.NewSector()
	sec.Floor.Texture = "FLOOR0_1"
	sec.Ceiling.Texture = "CEIL3_5"
	sec.SecID = 1
	side := src.NewSide(sec)
	side.TexMiddle = "STARTAN2"
	line := src.NewLine(v1, v2)
	line.Special = 1
	line.LineID = 1
	src.AttachSide(line, side, true)
	th := src.NewThing(32, 32)
	th.Type = 1
	th.Angle = 90
	th.Props().Set("id", property.Int(5))

	return mapformat.WriteDoom64(src, binary.LittleEndian, cfg)
}

func TestDoom64RoundTrip(t *testing.T) {
	cfg := newFakeGameConfig()
	vertexes, sidedefs, linedefs, sectors, things := buildSimpleDoom64Lumps(t, cfg)

	m := mapdata.NewMap()
	if err := mapformat.ReadDoom64(m, vertexes, sidedefs, linedefs, sectors, things, binary.LittleEndian, cfg); err != nil {
		t.Fatalf("ReadDoom64() error = %v", err)
	}

	if len(m.Vertices()) != 2 {
		t.Fatalf("len(Vertices()) = %d, want 2", len(m.Vertices()))
	}
	if len(m.Lines()) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(m.Lines()))
	}
	if line := m.Lines()[0]; line.Special != 1 || line.LineID != 1 {
		t.Errorf("line Special/LineID = %d/%d, want 1/1", line.Special, line.LineID)
	}
	if len(m.Sectors()) != 1 || m.Sectors()[0].Floor.Texture != "FLOOR0_1" {
		t.Errorf("sector floor texture round trip failed: %+v", m.Sectors())
	}
	if len(m.Sides()) != 1 || m.Sides()[0].TexMiddle != "STARTAN2" {
		t.Errorf("side middle texture round trip failed: %+v", m.Sides())
	}
	if len(m.Things()) != 1 {
		t.Fatalf("len(Things()) = %d, want 1", len(m.Things()))
	}
	if p, ok := m.Things()[0].Props().GetIf("id"); !ok || p.AsInt() != 5 {
		t.Errorf("thing id = %v, want 5", p)
	}
}

func TestReadHexenSetsArgsAndTID(t *testing.T) {
	vertexes := mustPack(binary.LittleEndian, int16(0), int16(0), int16(64), int16(0))

	linedefs := mustPackRaw(binary.LittleEndian, struct {
		V1, V2  uint16
		Flags   uint16
		Special uint8
		Args    [5]uint8
		Side1   uint16
		Side2   uint16
	}{0, 1, 0, 121, [5]uint8{7, 0, 0, 0, 0}, 0xFFFF, 0xFFFF})

	// rawThingHexen packs to 19 bytes but ReadHexen divides by the
	// on-disk Hexen thing record size of 20; pad with one trailing byte.
	things := append(mustPackRaw(binary.LittleEndian, struct {
		TID          uint16
		X, Y, Z      int16
		Angle        uint16
		Type         uint16
		Flags        uint16
		Args         [5]uint8
	}{5, 10, 20, 0, 0, 1, 0, [5]uint8{0, 0, 0, 0, 0}}), 0)

	m := mapdata.NewMap()
	if err := mapformat.ReadHexen(m, vertexes, nil, linedefs, nil, things, binary.LittleEndian); err != nil {
		t.Fatalf("ReadHexen() error = %v", err)
	}

	if m.CurrentFormat != mapdata.FormatHexen {
		t.Errorf("CurrentFormat = %v, want FormatHexen", m.CurrentFormat)
	}
	if len(m.Lines()) != 1 {
		t.Fatalf("len(Lines()) = %d, want 1", len(m.Lines()))
	}
	line := m.Lines()[0]
	if line.Special != 121 {
		t.Errorf("line.Special = %d, want 121", line.Special)
	}
	if p, ok := line.Props().GetIf("arg0"); !ok || p.AsInt() != 7 {
		t.Errorf("line arg0 = %v, want 7", p)
	}
	if len(m.Things()) != 1 {
		t.Fatalf("len(Things()) = %d, want 1", len(m.Things()))
	}
	if p, ok := m.Things()[0].Props().GetIf("id"); !ok || p.AsInt() != 5 {
		t.Errorf("thing id = %v, want 5", p)
	}
}
