package mapformat

import (
	"bytes"
	"encoding/binary"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/property"
)

const noSide = 0xFFFF

type rawVertexDoom struct{ X, Y int16 }
type rawVertexDoom64 struct{ X, Y int32 }

type rawSidedefDoom struct {
	OffX, OffY            int16
	Upper, Lower, Middle  [8]byte
	Sector                int16
}

type rawSidedefDoom64 struct {
	OffX, OffY                         int16
	Upper, Lower, Middle               uint16
	Sector                             int16
}

type rawLinedefDoom struct {
	V1, V2, Flags, Special, Tag, Side1, Side2 int16
}

type rawLinedefHexen struct {
	V1, V2  uint16
	Flags   uint16
	Special uint8
	Args    [5]uint8
	Side1   uint16
	Side2   uint16
}

type rawLinedefDoom64 struct {
	V1, V2         uint16
	Flags          uint16
	TypeRaw        uint16
	Tag            uint16
	Side1, Side2   uint16
}

type rawSectorDoom struct {
	FloorH, CeilH     int16
	FloorTex, CeilTex [8]byte
	Light, Special, Tag int16
}

type rawSectorDoom64 struct {
	FloorH, CeilH            int16
	FloorTexHash, CeilTexHash uint16
	Colors                   [5]uint16
	Light, Special, Tag      int16
	Flags                    uint16
}

type rawThingDoom struct {
	X, Y, Angle, Type, Flags int16
}

type rawThingHexen struct {
	TID          uint16
	X, Y, Z      int16
	Angle        uint16
	Type         uint16
	Flags        uint16
	Args         [5]uint8
}

type rawThingDoom64 struct {
	X, Y, Z, Angle, Type, Flags, TID int16
}

func trimName(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		i = len(b)
	}
	return string(b[:i])
}

func readSlice(data []byte, order binary.ByteOrder, n int, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	r := bytes.NewReader(data)
	return binary.Read(r, order, out)
}

// ReadDoom populates m from the five Doom-format map lumps (spec.md
// §4.8). order is almost always binary.LittleEndian.
func ReadDoom(m *mapdata.Map, vertexes, sidedefs, linedefs, sectors, things []byte, order binary.ByteOrder) error {
	m.CurrentFormat = mapdata.FormatDoom

	rawVerts := make([]rawVertexDoom, len(vertexes)/4)
	if err := readSlice(vertexes, order, len(rawVerts), &rawVerts); err != nil {
		return err
	}
	for _, rv := range rawVerts {
		m.NewVertex(float64(rv.X), float64(rv.Y))
	}

	rawSecs := make([]rawSectorDoom, len(sectors)/26)
	if err := readSlice(sectors, order, len(rawSecs), &rawSecs); err != nil {
		return err
	}
	for _, rs := range rawSecs {
		s := m.NewSector()
		s.Floor = mapdata.Plane{Height: float64(rs.FloorH), Texture: trimName(rs.FloorTex[:])}
		s.Ceiling = mapdata.Plane{Height: float64(rs.CeilH), Texture: trimName(rs.CeilTex[:])}
		s.Light = int32(rs.Light)
		s.Special = int32(rs.Special)
		s.SecID = int32(rs.Tag)
	}

	rawSides := make([]rawSidedefDoom, len(sidedefs)/30)
	if err := readSlice(sidedefs, order, len(rawSides), &rawSides); err != nil {
		return err
	}
	vs := m.Vertices()
	secs := m.Sectors()
	sidesByRaw := make([]*mapdata.Side, len(rawSides))
	for i, rs := range rawSides {
		var sec *mapdata.Sector
		if int(rs.Sector) >= 0 && int(rs.Sector) < len(secs) {
			sec = secs[rs.Sector]
		}
		side := m.NewSide(sec)
		side.OffsetX, side.OffsetY = int32(rs.OffX), int32(rs.OffY)
		side.TexUpper = trimName(rs.Upper[:])
		side.TexMiddle = trimName(rs.Middle[:])
		side.TexLower = trimName(rs.Lower[:])
		sidesByRaw[i] = side
	}

	rawLines := make([]rawLinedefDoom, len(linedefs)/14)
	if err := readSlice(linedefs, order, len(rawLines), &rawLines); err != nil {
		return err
	}
	for _, rl := range rawLines {
		if int(rl.V1) < 0 || int(rl.V1) >= len(vs) || int(rl.V2) < 0 || int(rl.V2) >= len(vs) {
			continue
		}
		line := m.NewLine(vs[rl.V1], vs[rl.V2])
		line.Flags = int32(rl.Flags)
		line.Special = int32(rl.Special)
		line.LineID = int32(rl.Tag)
		if s1 := uint16(rl.Side1); s1 != noSide && int(s1) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[s1], true)
		}
		if s2 := uint16(rl.Side2); s2 != noSide && int(s2) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[s2], false)
		}
	}

	rawThings := make([]rawThingDoom, len(things)/10)
	if err := readSlice(things, order, len(rawThings), &rawThings); err != nil {
		return err
	}
	for _, rt := range rawThings {
		t := m.NewThing(float64(rt.X), float64(rt.Y))
		t.Angle = int32(rt.Angle)
		t.Type = int32(rt.Type)
		t.Props().Set("flags", property.Int(int32(rt.Flags)))
	}

	MapOpenChecks(m)
	return nil
}

// ReadHexen is ReadDoom with Hexen's extended linedef/thing layouts.
// Line specials and args are kept as read; ConvertHexenToUDMF applies
// the tag-id conversion separately.
func ReadHexen(m *mapdata.Map, vertexes, sidedefs, linedefs, sectors, things []byte, order binary.ByteOrder) error {
	m.CurrentFormat = mapdata.FormatHexen

	rawVerts := make([]rawVertexDoom, len(vertexes)/4)
	if err := readSlice(vertexes, order, len(rawVerts), &rawVerts); err != nil {
		return err
	}
	for _, rv := range rawVerts {
		m.NewVertex(float64(rv.X), float64(rv.Y))
	}

	rawSecs := make([]rawSectorDoom, len(sectors)/26)
	if err := readSlice(sectors, order, len(rawSecs), &rawSecs); err != nil {
		return err
	}
	for _, rs := range rawSecs {
		s := m.NewSector()
		s.Floor = mapdata.Plane{Height: float64(rs.FloorH), Texture: trimName(rs.FloorTex[:])}
		s.Ceiling = mapdata.Plane{Height: float64(rs.CeilH), Texture: trimName(rs.CeilTex[:])}
		s.Light = int32(rs.Light)
		s.Special = int32(rs.Special)
		s.SecID = int32(rs.Tag)
	}

	rawSides := make([]rawSidedefDoom, len(sidedefs)/30)
	if err := readSlice(sidedefs, order, len(rawSides), &rawSides); err != nil {
		return err
	}
	secs := m.Sectors()
	sidesByRaw := make([]*mapdata.Side, len(rawSides))
	for i, rs := range rawSides {
		var sec *mapdata.Sector
		if int(rs.Sector) >= 0 && int(rs.Sector) < len(secs) {
			sec = secs[rs.Sector]
		}
		side := m.NewSide(sec)
		side.OffsetX, side.OffsetY = int32(rs.OffX), int32(rs.OffY)
		side.TexUpper = trimName(rs.Upper[:])
		side.TexMiddle = trimName(rs.Middle[:])
		side.TexLower = trimName(rs.Lower[:])
		sidesByRaw[i] = side
	}

	rawLines := make([]rawLinedefHexen, len(linedefs)/16)
	if err := readSlice(linedefs, order, len(rawLines), &rawLines); err != nil {
		return err
	}
	vs := m.Vertices()
	for _, rl := range rawLines {
		if int(rl.V1) >= len(vs) || int(rl.V2) >= len(vs) {
			continue
		}
		line := m.NewLine(vs[rl.V1], vs[rl.V2])
		line.Flags = int32(rl.Flags)
		line.Special = int32(rl.Special)
		for i, a := range rl.Args {
			line.Props().Set(argName(i), property.Int(int32(a)))
		}
		if rl.Side1 != noSide && int(rl.Side1) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[rl.Side1], true)
		}
		if rl.Side2 != noSide && int(rl.Side2) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[rl.Side2], false)
		}
	}

	// each on-disk record is 20 bytes; rawThingHexen decodes its first 19
	rawThings := make([]rawThingHexen, len(things)/20)
	for i := range rawThings {
		if err := binary.Read(bytes.NewReader(things[i*20:i*20+19]), order, &rawThings[i]); err != nil {
			return err
		}
	}
	for _, rt := range rawThings {
		t := m.NewThing(float64(rt.X), float64(rt.Y))
		t.Angle = int32(rt.Angle)
		t.Type = int32(rt.Type)
		t.Props().Set("id", property.Int(int32(rt.TID)))
		t.Props().Set("z", property.Int(int32(rt.Z)))
		t.Props().Set("flags", property.Int(int32(rt.Flags)))
		for i, a := range rt.Args {
			t.Props().Set(argName(i), property.Int(int32(a)))
		}
	}

	MapOpenChecks(m)
	return nil
}

// ReadDoom64 reads the Doom64-variant lumps; cfg resolves hashed
// texture names (spec.md §4.8).
func ReadDoom64(m *mapdata.Map, vertexes, sidedefs, linedefs, sectors, things []byte, order binary.ByteOrder, cfg GameConfig) error {
	m.CurrentFormat = mapdata.FormatDoom64

	rawVerts := make([]rawVertexDoom64, len(vertexes)/8)
	if err := readSlice(vertexes, order, len(rawVerts), &rawVerts); err != nil {
		return err
	}
	for _, rv := range rawVerts {
		m.NewVertex(float64(rv.X)/65536, float64(rv.Y)/65536)
	}

	rawSecs := make([]rawSectorDoom64, len(sectors)/26)
	if err := readSlice(sectors, order, len(rawSecs), &rawSecs); err != nil {
		return err
	}
	for _, rs := range rawSecs {
		s := m.NewSector()
		s.Floor = mapdata.Plane{Height: float64(rs.FloorH), Texture: cfg.HashToTextureName(rs.FloorTexHash)}
		s.Ceiling = mapdata.Plane{Height: float64(rs.CeilH), Texture: cfg.HashToTextureName(rs.CeilTexHash)}
		s.Light = int32(rs.Light)
		s.Special = int32(rs.Special)
		s.SecID = int32(rs.Tag)
		s.Props().Set("flags", property.Int(int32(rs.Flags)))
	}

	rawSides := make([]rawSidedefDoom64, len(sidedefs)/12)
	if err := readSlice(sidedefs, order, len(rawSides), &rawSides); err != nil {
		return err
	}
	secs := m.Sectors()
	sidesByRaw := make([]*mapdata.Side, len(rawSides))
	for i, rs := range rawSides {
		var sec *mapdata.Sector
		if int(rs.Sector) >= 0 && int(rs.Sector) < len(secs) {
			sec = secs[rs.Sector]
		}
		side := m.NewSide(sec)
		side.OffsetX, side.OffsetY = int32(rs.OffX), int32(rs.OffY)
		side.TexUpper = cfg.HashToTextureName(rs.Upper)
		side.TexMiddle = cfg.HashToTextureName(rs.Middle)
		side.TexLower = cfg.HashToTextureName(rs.Lower)
		sidesByRaw[i] = side
	}

	rawLines := make([]rawLinedefDoom64, len(linedefs)/14)
	if err := readSlice(linedefs, order, len(rawLines), &rawLines); err != nil {
		return err
	}
	vs := m.Vertices()
	for _, rl := range rawLines {
		if int(rl.V1) >= len(vs) || int(rl.V2) >= len(vs) {
			continue
		}
		line := m.NewLine(vs[rl.V1], vs[rl.V2])
		line.Flags = int32(rl.Flags)
		line.Special = int32(rl.TypeRaw & 0x00FF)
		line.LineID = int32(rl.Tag)
		line.Props().Set("macro", property.Bool(rl.TypeRaw&0x0100 != 0))
		line.Props().Set("extraflags", property.Int(int32(rl.TypeRaw>>9)))
		if rl.Side1 != noSide && int(rl.Side1) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[rl.Side1], true)
		}
		if rl.Side2 != noSide && int(rl.Side2) < len(sidesByRaw) {
			m.AttachSide(line, sidesByRaw[rl.Side2], false)
		}
	}

	rawThings := make([]rawThingDoom64, len(things)/14)
	if err := readSlice(things, order, len(rawThings), &rawThings); err != nil {
		return err
	}
	for _, rt := range rawThings {
		t := m.NewThing(float64(rt.X), float64(rt.Y))
		t.Angle = int32(rt.Angle)
		t.Type = int32(rt.Type)
		t.Props().Set("z", property.Int(int32(rt.Z)))
		t.Props().Set("flags", property.Int(int32(rt.Flags)))
		t.Props().Set("id", property.Int(int32(rt.TID)))
	}

	MapOpenChecks(m)
	return nil
}

func argName(i int) string {
	return [...]string{"arg0", "arg1", "arg2", "arg3", "arg4"}[i]
}

// WriteDoom serializes m's geometry back into the five Doom-format
// lumps, in the Archive's current object order (spec.md §5: "WadArchive
// never reorders lumps across a save").
func WriteDoom(m *mapdata.Map, order binary.ByteOrder) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	var vb, sb, lb, secb, tb bytes.Buffer
	for _, v := range m.Vertices() {
		binary.Write(&vb, order, rawVertexDoom{int16(v.X), int16(v.Y)})
	}
	for _, s := range m.Sectors() {
		var rs rawSectorDoom
		rs.FloorH, rs.CeilH = int16(s.Floor.Height), int16(s.Ceiling.Height)
		copy(rs.FloorTex[:], s.Floor.Texture)
		copy(rs.CeilTex[:], s.Ceiling.Texture)
		rs.Light, rs.Special, rs.Tag = int16(s.Light), int16(s.Special), int16(s.SecID)
		binary.Write(&secb, order, rs)
	}
	sideIndex := map[*mapdata.Side]int16{}
	for i, s := range m.Sides() {
		sideIndex[s] = int16(i)
		var rs rawSidedefDoom
		rs.OffX, rs.OffY = int16(s.OffsetX), int16(s.OffsetY)
		copy(rs.Upper[:], s.TexUpper)
		copy(rs.Middle[:], s.TexMiddle)
		copy(rs.Lower[:], s.TexLower)
		if s.Sector != nil {
			rs.Sector = int16(s.Sector.Index())
		}
		binary.Write(&sb, order, rs)
	}
	for _, l := range m.Lines() {
		rl := rawLinedefDoom{
			V1: int16(l.V1.Index()), V2: int16(l.V2.Index()),
			Flags: int16(l.Flags), Special: int16(l.Special), Tag: int16(l.LineID),
			Side1: -1, Side2: -1, // int16(-1) is the 0xFFFF noSide marker
		}
		if l.Side1 != nil {
			rl.Side1 = sideIndex[l.Side1]
		}
		if l.Side2 != nil {
			rl.Side2 = sideIndex[l.Side2]
		}
		binary.Write(&lb, order, rl)
	}
	for _, t := range m.Things() {
		var flags int32
		if p, ok := t.Props().GetIf("flags"); ok {
			flags = p.AsInt()
		}
		rt := rawThingDoom{int16(t.X), int16(t.Y), int16(t.Angle), int16(t.Type), int16(flags)}
		binary.Write(&tb, order, rt)
	}
	return vb.Bytes(), sb.Bytes(), lb.Bytes(), secb.Bytes(), tb.Bytes()
}

// WriteHexen serializes m's geometry into the five Hexen-format lumps:
// same vertex/sector/sidedef layout as Doom, but a wider linedef with
// 5 args and a Hexen-style thing record (spec.md §4.8).
func WriteHexen(m *mapdata.Map, order binary.ByteOrder) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	var vb, sb, lb, secb, tb bytes.Buffer
	for _, v := range m.Vertices() {
		binary.Write(&vb, order, rawVertexDoom{int16(v.X), int16(v.Y)})
	}
	for _, s := range m.Sectors() {
		var rs rawSectorDoom
		rs.FloorH, rs.CeilH = int16(s.Floor.Height), int16(s.Ceiling.Height)
		copy(rs.FloorTex[:], s.Floor.Texture)
		copy(rs.CeilTex[:], s.Ceiling.Texture)
		rs.Light, rs.Special, rs.Tag = int16(s.Light), int16(s.Special), int16(s.SecID)
		binary.Write(&secb, order, rs)
	}
	sideIndex := map[*mapdata.Side]uint16{}
	for i, s := range m.Sides() {
		sideIndex[s] = uint16(i)
		var rs rawSidedefDoom
		rs.OffX, rs.OffY = int16(s.OffsetX), int16(s.OffsetY)
		copy(rs.Upper[:], s.TexUpper)
		copy(rs.Middle[:], s.TexMiddle)
		copy(rs.Lower[:], s.TexLower)
		if s.Sector != nil {
			rs.Sector = int16(s.Sector.Index())
		}
		binary.Write(&sb, order, rs)
	}
	for _, l := range m.Lines() {
		rl := rawLinedefHexen{
			V1: uint16(l.V1.Index()), V2: uint16(l.V2.Index()),
			Flags: uint16(l.Flags), Special: uint8(l.Special),
			Side1: noSide, Side2: noSide,
		}
		for i := range rl.Args {
			if p, ok := l.Props().GetIf(argName(i)); ok {
				rl.Args[i] = uint8(p.AsInt())
			}
		}
		if l.Side1 != nil {
			rl.Side1 = sideIndex[l.Side1]
		}
		if l.Side2 != nil {
			rl.Side2 = sideIndex[l.Side2]
		}
		binary.Write(&lb, order, rl)
	}
	for _, t := range m.Things() {
		var tid, z, flags int32
		if p, ok := t.Props().GetIf("id"); ok {
			tid = p.AsInt()
		}
		if p, ok := t.Props().GetIf("z"); ok {
			z = p.AsInt()
		}
		if p, ok := t.Props().GetIf("flags"); ok {
			flags = p.AsInt()
		}
		rt := rawThingHexen{
			TID: uint16(tid), X: int16(t.X), Y: int16(t.Y), Z: int16(z),
			Angle: uint16(t.Angle), Type: uint16(t.Type), Flags: uint16(flags),
		}
		for i := range rt.Args {
			if p, ok := t.Props().GetIf(argName(i)); ok {
				rt.Args[i] = uint8(p.AsInt())
			}
		}
		binary.Write(&tb, order, rt)
		tb.WriteByte(0) // rawThingHexen packs to 19 bytes; pad to the 20-byte on-disk record ReadHexen expects
	}
	return vb.Bytes(), sb.Bytes(), lb.Bytes(), secb.Bytes(), tb.Bytes()
}

// WriteDoom64 serializes m's geometry into the five Doom64-format
// lumps: 32-bit fixed-point vertices, hashed texture names, a packed
// linedef type/flags word, and a wide thing record with TID/z
// (spec.md §4.8). cfg resolves texture names back to their hashes.
func WriteDoom64(m *mapdata.Map, order binary.ByteOrder, cfg GameConfig) (vertexes, sidedefs, linedefs, sectors, things []byte) {
	var vb, sb, lb, secb, tb bytes.Buffer
	for _, v := range m.Vertices() {
		binary.Write(&vb, order, rawVertexDoom64{int32(v.X * 65536), int32(v.Y * 65536)})
	}
	for _, s := range m.Sectors() {
		var rs rawSectorDoom64
		rs.FloorH, rs.CeilH = int16(s.Floor.Height), int16(s.Ceiling.Height)
		rs.FloorTexHash = cfg.TextureNameToHash(s.Floor.Texture)
		rs.CeilTexHash = cfg.TextureNameToHash(s.Ceiling.Texture)
		rs.Light, rs.Special, rs.Tag = int16(s.Light), int16(s.Special), int16(s.SecID)
		if p, ok := s.Props().GetIf("flags"); ok {
			rs.Flags = uint16(p.AsInt())
		}
		binary.Write(&secb, order, rs)
	}
	sideIndex := map[*mapdata.Side]uint16{}
	for i, s := range m.Sides() {
		sideIndex[s] = uint16(i)
		var rs rawSidedefDoom64
		rs.OffX, rs.OffY = int16(s.OffsetX), int16(s.OffsetY)
		rs.Upper = cfg.TextureNameToHash(s.TexUpper)
		rs.Middle = cfg.TextureNameToHash(s.TexMiddle)
		rs.Lower = cfg.TextureNameToHash(s.TexLower)
		if s.Sector != nil {
			rs.Sector = int16(s.Sector.Index())
		}
		binary.Write(&sb, order, rs)
	}
	for _, l := range m.Lines() {
		typeRaw := uint16(l.Special) & 0x00FF
		if p, ok := l.Props().GetIf("macro"); ok && p.AsBool() {
			typeRaw |= 0x0100
		}
		if p, ok := l.Props().GetIf("extraflags"); ok {
			typeRaw |= uint16(p.AsInt()) << 9
		}
		rl := rawLinedefDoom64{
			V1: uint16(l.V1.Index()), V2: uint16(l.V2.Index()),
			Flags: uint16(l.Flags), TypeRaw: typeRaw, Tag: uint16(l.LineID),
			Side1: noSide, Side2: noSide,
		}
		if l.Side1 != nil {
			rl.Side1 = sideIndex[l.Side1]
		}
		if l.Side2 != nil {
			rl.Side2 = sideIndex[l.Side2]
		}
		binary.Write(&lb, order, rl)
	}
	for _, t := range m.Things() {
		var z, flags, tid int32
		if p, ok := t.Props().GetIf("z"); ok {
			z = p.AsInt()
		}
		if p, ok := t.Props().GetIf("flags"); ok {
			flags = p.AsInt()
		}
		if p, ok := t.Props().GetIf("id"); ok {
			tid = p.AsInt()
		}
		rt := rawThingDoom64{int16(t.X), int16(t.Y), int16(z), int16(t.Angle), int16(t.Type), int16(flags), int16(tid)}
		binary.Write(&tb, order, rt)
	}
	return vb.Bytes(), sb.Bytes(), lb.Bytes(), secb.Bytes(), tb.Bytes()
}
