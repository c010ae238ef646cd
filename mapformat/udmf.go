package mapformat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/property"
)

// ReadUDMF parses a TEXTMAP lump via parser and builds the map's objects
// in vertex->sector->side->line->thing order (spec.md §4.8 UDMF reader).
// Unrecognized root keys go to m.UDMFProps, which WriteUDMF writes
// back. An unrecognized block is recorded in m.UDMFExtraEntries by its
// kind name only; its contents are dropped and WriteUDMF does not emit it.
func ReadUDMF(m *mapdata.Map, textmap []byte, parser TextParser) error {
	if parser == nil {
		parser = DefaultTextParser{}
	}
	blocks, err := parser.Parse(textmap)
	if err != nil {
		return fmt.Errorf("udmf parse: %w", err)
	}
	m.CurrentFormat = mapdata.FormatUDMF

	var vertexBlocks, sectorBlocks, sideBlocks, lineBlocks, thingBlocks []Block
	for _, b := range blocks {
		switch b.Kind {
		case "vertex":
			vertexBlocks = append(vertexBlocks, b)
		case "sector":
			sectorBlocks = append(sectorBlocks, b)
		case "sidedef":
			sideBlocks = append(sideBlocks, b)
		case "linedef":
			lineBlocks = append(lineBlocks, b)
		case "thing":
			thingBlocks = append(thingBlocks, b)
		case "":
			if ns, ok := b.Props["namespace"]; ok {
				m.UDMFNamespace = ns.Str
			} else {
				for k, v := range b.Props {
					m.UDMFProps.Set(k, literalToProperty(v))
				}
			}
		default:
			m.UDMFExtraEntries = append(m.UDMFExtraEntries, mapdata.UdmfExtraEntry{Name: b.Kind})
		}
	}

	for _, b := range vertexBlocks {
		x, okx := numProp(b, "x")
		y, oky := numProp(b, "y")
		if !okx || !oky {
			continue
		}
		v := m.NewVertex(x, y)
		assignExtraProps(v.Props(), b, map[string]bool{"x": true, "y": true})
	}

	for _, b := range sectorBlocks {
		ftex, okf := strProp(b, "texturefloor")
		ctex, okc := strProp(b, "textureceiling")
		if !okf || !okc {
			continue
		}
		s := m.NewSector()
		s.Floor.Texture, s.Ceiling.Texture = ftex, ctex
		if v, ok := numProp(b, "heightfloor"); ok {
			s.Floor.Height = v
		}
		if v, ok := numProp(b, "heightceiling"); ok {
			s.Ceiling.Height = v
		}
		if v, ok := numProp(b, "lightlevel"); ok {
			s.Light = int32(v)
		}
		if v, ok := numProp(b, "special"); ok {
			s.Special = int32(v)
		}
		if v, ok := numProp(b, "id"); ok {
			s.SecID = int32(v)
		}
		assignExtraProps(s.Props(), b, map[string]bool{
			"texturefloor": true, "textureceiling": true, "heightfloor": true,
			"heightceiling": true, "lightlevel": true, "special": true, "id": true,
		})
	}

	vs := m.Vertices()
	secs := m.Sectors()
	sidesByBlock := make([]*mapdata.Side, len(sideBlocks))
	for i, b := range sideBlocks {
		secIdx, ok := numProp(b, "sector")
		if !ok || int(secIdx) < 0 || int(secIdx) >= len(secs) {
			continue
		}
		side := m.NewSide(secs[int(secIdx)])
		if v, ok := strProp(b, "texturetop"); ok {
			side.TexUpper = v
		}
		if v, ok := strProp(b, "texturemiddle"); ok {
			side.TexMiddle = v
		}
		if v, ok := strProp(b, "texturebottom"); ok {
			side.TexLower = v
		}
		if v, ok := numProp(b, "offsetx"); ok {
			side.OffsetX = int32(v)
		}
		if v, ok := numProp(b, "offsety"); ok {
			side.OffsetY = int32(v)
		}
		assignExtraProps(side.Props(), b, map[string]bool{
			"sector": true, "texturetop": true, "texturemiddle": true,
			"texturebottom": true, "offsetx": true, "offsety": true,
		})
		sidesByBlock[i] = side
	}

	for _, b := range lineBlocks {
		v1, ok1 := numProp(b, "v1")
		v2, ok2 := numProp(b, "v2")
		front, okf := numProp(b, "sidefront")
		if !ok1 || !ok2 || !okf {
			continue
		}
		if int(v1) < 0 || int(v1) >= len(vs) || int(v2) < 0 || int(v2) >= len(vs) {
			continue
		}
		line := m.NewLine(vs[int(v1)], vs[int(v2)])
		if int(front) >= 0 && int(front) < len(sidesByBlock) && sidesByBlock[int(front)] != nil {
			m.AttachSide(line, sidesByBlock[int(front)], true)
		}
		if back, ok := numProp(b, "sideback"); ok && int(back) >= 0 && int(back) < len(sidesByBlock) && sidesByBlock[int(back)] != nil {
			m.AttachSide(line, sidesByBlock[int(back)], false)
		}
		if v, ok := numProp(b, "special"); ok {
			line.Special = int32(v)
		}
		if v, ok := numProp(b, "id"); ok {
			line.LineID = int32(v)
		}
		assignExtraProps(line.Props(), b, map[string]bool{
			"v1": true, "v2": true, "sidefront": true, "sideback": true,
			"special": true, "id": true,
		})
	}

	for _, b := range thingBlocks {
		x, okx := numProp(b, "x")
		y, oky := numProp(b, "y")
		typ, okt := numProp(b, "type")
		if !okx || !oky || !okt {
			continue
		}
		t := m.NewThing(x, y)
		t.Type = int32(typ)
		if v, ok := numProp(b, "angle"); ok {
			t.Angle = int32(v)
		}
		assignExtraProps(t.Props(), b, map[string]bool{"x": true, "y": true, "type": true, "angle": true})
	}

	MapOpenChecks(m)
	return nil
}

func numProp(b Block, key string) (float64, bool) {
	lit, ok := b.Props[key]
	if !ok {
		return 0, false
	}
	switch lit.Kind {
	case LiteralInt:
		return float64(lit.Int), true
	case LiteralFloat:
		return lit.Float, true
	case LiteralBool:
		if lit.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func strProp(b Block, key string) (string, bool) {
	lit, ok := b.Props[key]
	if !ok || lit.Kind != LiteralString {
		return "", false
	}
	return lit.Str, true
}

func literalToProperty(lit Literal) property.Property {
	switch lit.Kind {
	case LiteralBool:
		return property.Bool(lit.Bool)
	case LiteralInt:
		return property.Int(int32(lit.Int))
	case LiteralFloat:
		return property.Float(lit.Float)
	default:
		return property.String(lit.Str)
	}
}

func assignExtraProps(dst *property.List, b Block, builtin map[string]bool) {
	for k, v := range b.Props {
		if builtin[k] {
			continue
		}
		dst.Set(k, literalToProperty(v))
	}
}

// WriteUDMF renders m back to UDMF TEXTMAP text (spec.md §4.8 UDMF
// writer): namespace, map-scope props, then one block per object in
// vertex/linedef/sidedef/sector/thing order. resources supplies
// per-property show-always flags; extra props that are not show-always
// are emitted only when non-zero/non-empty (the only rule when nil).
func WriteUDMF(m *mapdata.Map, resources ResourceManager) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "namespace=%q;\n", m.UDMFNamespace)
	m.UDMFProps.Each(func(name string, v property.Property) {
		fmt.Fprintf(&b, "%s=%s;\n", name, udmfLiteral(v))
	})

	for _, v := range m.Vertices() {
		b.WriteString("vertex\n{\n")
		fmt.Fprintf(&b, "x=%s;\ny=%s;\n", fmtFloat(v.X), fmtFloat(v.Y))
		writeExtraProps(&b, v.Props(), "vertex", resources)
		b.WriteString("}\n")
	}
	for _, l := range m.Lines() {
		b.WriteString("linedef\n{\n")
		fmt.Fprintf(&b, "v1=%d;\nv2=%d;\n", l.V1.Index(), l.V2.Index())
		if l.Side1 != nil {
			fmt.Fprintf(&b, "sidefront=%d;\n", l.Side1.Index())
		}
		if l.Side2 != nil {
			fmt.Fprintf(&b, "sideback=%d;\n", l.Side2.Index())
		}
		if l.Special != 0 {
			fmt.Fprintf(&b, "special=%d;\n", l.Special)
		}
		if l.LineID != 0 {
			fmt.Fprintf(&b, "id=%d;\n", l.LineID)
		}
		writeExtraProps(&b, l.Props(), "linedef", resources)
		b.WriteString("}\n")
	}
	for _, s := range m.Sides() {
		b.WriteString("sidedef\n{\n")
		if s.Sector != nil {
			fmt.Fprintf(&b, "sector=%d;\n", s.Sector.Index())
		}
		if s.TexUpper != "" && s.TexUpper != "-" {
			fmt.Fprintf(&b, "texturetop=%q;\n", s.TexUpper)
		}
		if s.TexMiddle != "" && s.TexMiddle != "-" {
			fmt.Fprintf(&b, "texturemiddle=%q;\n", s.TexMiddle)
		}
		if s.TexLower != "" && s.TexLower != "-" {
			fmt.Fprintf(&b, "texturebottom=%q;\n", s.TexLower)
		}
		if s.OffsetX != 0 {
			fmt.Fprintf(&b, "offsetx=%d;\n", s.OffsetX)
		}
		if s.OffsetY != 0 {
			fmt.Fprintf(&b, "offsety=%d;\n", s.OffsetY)
		}
		writeExtraProps(&b, s.Props(), "sidedef", resources)
		b.WriteString("}\n")
	}
	for _, s := range m.Sectors() {
		b.WriteString("sector\n{\n")
		fmt.Fprintf(&b, "texturefloor=%q;\ntextureceiling=%q;\n", s.Floor.Texture, s.Ceiling.Texture)
		if s.Floor.Height != 0 {
			fmt.Fprintf(&b, "heightfloor=%s;\n", fmtFloat(s.Floor.Height))
		}
		if s.Ceiling.Height != 0 {
			fmt.Fprintf(&b, "heightceiling=%s;\n", fmtFloat(s.Ceiling.Height))
		}
		if s.Light != 0 {
			fmt.Fprintf(&b, "lightlevel=%d;\n", s.Light)
		}
		if s.Special != 0 {
			fmt.Fprintf(&b, "special=%d;\n", s.Special)
		}
		if s.SecID != 0 {
			fmt.Fprintf(&b, "id=%d;\n", s.SecID)
		}
		writeExtraProps(&b, s.Props(), "sector", resources)
		b.WriteString("}\n")
	}
	for _, t := range m.Things() {
		b.WriteString("thing\n{\n")
		fmt.Fprintf(&b, "x=%s;\ny=%s;\ntype=%d;\n", fmtFloat(t.X), fmtFloat(t.Y), t.Type)
		if t.Angle != 0 {
			fmt.Fprintf(&b, "angle=%d;\n", t.Angle)
		}
		writeExtraProps(&b, t.Props(), "thing", resources)
		b.WriteString("}\n")
	}

	return []byte(b.String())
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func udmfLiteral(v property.Property) string {
	if v.IsString() {
		return strconv.Quote(v.AsString(3))
	}
	return v.AsString(3)
}

func writeExtraProps(b *strings.Builder, props *property.List, kind string, resources ResourceManager) {
	always := map[string]bool{}
	if resources != nil {
		for _, p := range resources.UDMFProperties(kind) {
			if p.ShowAlways {
				always[strings.ToLower(p.Name)] = true
			}
		}
	}
	props.Each(func(name string, v property.Property) {
		if !always[strings.ToLower(name)] && property.IsZero(v) {
			return
		}
		fmt.Fprintf(b, "%s=%s;\n", name, udmfLiteral(v))
	})
}
