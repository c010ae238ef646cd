package mapformat

import (
	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/property"
)

// hexenFlagBit maps a derived "flags" bit to its UDMF boolean property
// name (spec.md §4.9).
var hexenFlagBit = []struct {
	bit  int32
	name string
}{
	{1, "zoneboundary"},
	{2, "jumpover"},
	{4, "blockfloaters"},
	{8, "clipmidtex"},
	{16, "wrapmidtex"},
	{32, "midtex3d"},
	{64, "checkswitchrange"},
}

func argProp(l *mapdata.Line, i int) int32 {
	if p, ok := l.Props().GetIf(argName(i)); ok {
		return p.AsInt()
	}
	return 0
}

func clearArgs(l *mapdata.Line) {
	for i := 0; i < 5; i++ {
		l.Props().Remove(argName(i))
	}
}

func applyFlagBits(l *mapdata.Line, flags int32) {
	for _, fb := range hexenFlagBit {
		if flags&fb.bit != 0 {
			l.Props().Set(fb.name, property.Bool(true))
		}
	}
}

// ConvertHexenToUDMF rewrites every Hexen tag-id special's arguments
// into the line's UDMF "id" property, per the per-special table in
// spec.md §4.9, and switches the map's format to UDMF. Lines whose
// special isn't one of the tag-id specials are left untouched.
func ConvertHexenToUDMF(m *mapdata.Map) {
	for _, l := range m.Lines() {
		switch l.Special {
		case 1:
			l.Props().Set("id", property.Int(argProp(l, 3)))
			l.Props().Set("arg3", property.Int(0))
		case 5:
			l.Props().Set("id", property.Int(argProp(l, 4)))
			l.Props().Set("arg4", property.Int(0))
		case 121:
			id := (argProp(l, 4) << 8) + argProp(l, 0)
			flags := argProp(l, 1)
			l.Props().Set("id", property.Int(id))
			applyFlagBits(l, flags)
			l.Special = 0
			clearArgs(l)
		case 160:
			flags := argProp(l, 1)
			var id int32
			if flags&8 != 0 {
				id = argProp(l, 4)
			} else {
				id = (argProp(l, 4) << 8) + argProp(l, 0)
			}
			l.Props().Set("id", property.Int(id))
			applyFlagBits(l, flags)
			l.Props().Set("arg4", property.Int(0))
		case 181:
			l.Props().Set("id", property.Int(argProp(l, 2)))
			l.Props().Set("arg2", property.Int(0))
		case 208:
			l.Props().Set("id", property.Int(argProp(l, 0)))
			applyFlagBits(l, argProp(l, 3))
			l.Props().Set("arg3", property.Int(0))
		case 215:
			l.Props().Set("id", property.Int(argProp(l, 0)))
			l.Props().Set("arg0", property.Int(0))
		case 222:
			l.Props().Set("id", property.Int(argProp(l, 0)))
		}
	}
	m.CurrentFormat = mapdata.FormatUDMF
}
