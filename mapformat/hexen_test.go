package mapformat_test

import (
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/mapformat"
	"github.com/sirjuddington/slade-core/property"
)

func newHexenLine(m *mapdata.Map, special int32, args [5]int32) *mapdata.Line {
	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(1, 1)
	l := m.NewLine(v1, v2)
	l.Special = special
	for i, a := range args {
		l.Props().Set([...]string{"arg0", "arg1", "arg2", "arg3", "arg4"}[i], property.Int(a))
	}
	return l
}

func TestConvertHexenToUDMFSpecial121PacksIDAndFlags(t *testing.T) {
	m := mapdata.NewMap()
	l := newHexenLine(m, 121, [5]int32{7, 2, 0, 0, 1})

	mapformat.ConvertHexenToUDMF(m)

	if l.Special != 0 {
		t.Errorf("Special after conversion = %d, want 0", l.Special)
	}
	want := int32(1<<8) + 7
	if p, ok := l.Props().GetIf("id"); !ok || p.AsInt() != want {
		t.Errorf("id = %v, want %d", p, want)
	}
	if p, ok := l.Props().GetIf("jumpover"); !ok || !p.AsBool() {
		t.Errorf("jumpover flag not set from arg1 bit 2")
	}
	if _, ok := l.Props().GetIf("arg0"); ok {
		t.Errorf("arg0 should be cleared after special-121 conversion")
	}
}

func TestConvertHexenToUDMFSpecial1UsesArg3(t *testing.T) {
	m := mapdata.NewMap()
	l := newHexenLine(m, 1, [5]int32{0, 0, 0, 9, 0})

	mapformat.ConvertHexenToUDMF(m)

	if p, ok := l.Props().GetIf("id"); !ok || p.AsInt() != 9 {
		t.Errorf("id = %v, want 9", p)
	}
	if m.CurrentFormat != mapdata.FormatUDMF {
		t.Errorf("CurrentFormat = %v, want FormatUDMF", m.CurrentFormat)
	}
}

func TestConvertHexenToUDMFLeavesUnrelatedSpecialsAlone(t *testing.T) {
	m := mapdata.NewMap()
	l := newHexenLine(m, 999, [5]int32{1, 2, 3, 4, 5})

	mapformat.ConvertHexenToUDMF(m)

	if l.Special != 999 {
		t.Errorf("Special = %d, want unchanged 999", l.Special)
	}
	if _, ok := l.Props().GetIf("id"); ok {
		t.Errorf("id should not be set for a non-tag-id special")
	}
}
