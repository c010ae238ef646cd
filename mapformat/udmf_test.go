package mapformat_test

import (
	"strings"
	"testing"

	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/mapformat"
	"github.com/sirjuddington/slade-core/property"
)

const sampleTextmap = `namespace="doom";
vertex
{
x = 0;
y = 0;
}
vertex
{
x = 64.0;
y = 0;
}
sector
{
texturefloor = "FLOOR0_1";
textureceiling = "CEIL3_5";
heightceiling = 128;
id = 1;
}
sidedef
{
sector = 0;
texturemiddle = "STARTAN2";
}
linedef
{
v1 = 0;
v2 = 1;
sidefront = 0;
special = 1;
id = 1;
}
thing
{
x = 32;
y = 32;
type = 1;
angle = 90;
}
`

func TestReadUDMFBuildsMap(t *testing.T) {
	m := mapdata.NewMap()
	if err := mapformat.ReadUDMF(m, []byte(sampleTextmap), nil); err != nil {
		t.Fatalf("ReadUDMF() error = %v", err)
	}

	if m.CurrentFormat != mapdata.FormatUDMF {
		t.Errorf("CurrentFormat = %v, want FormatUDMF", m.CurrentFormat)
	}
	if m.UDMFNamespace != "doom" {
		t.Errorf("UDMFNamespace = %q, want doom", m.UDMFNamespace)
	}
	if len(m.Vertices()) != 2 || len(m.Sectors()) != 1 || len(m.Sides()) != 1 ||
		len(m.Lines()) != 1 || len(m.Things()) != 1 {
		t.Fatalf("unexpected object counts: v=%d sec=%d side=%d line=%d thing=%d",
			len(m.Vertices()), len(m.Sectors()), len(m.Sides()), len(m.Lines()), len(m.Things()))
	}

	sec := m.Sectors()[0]
	if sec.Floor.Texture != "FLOOR0_1" || sec.Ceiling.Height != 128 || sec.SecID != 1 {
		t.Errorf("sector fields = %+v", sec)
	}

	line := m.Lines()[0]
	if line.Special != 1 || line.LineID != 1 || line.Side1 == nil {
		t.Errorf("line fields = %+v", line)
	}

	thing := m.Things()[0]
	if thing.Type != 1 || thing.Angle != 90 {
		t.Errorf("thing fields = %+v", thing)
	}
}

func TestWriteUDMFOmitsZeroExtraProps(t *testing.T) {
	m := mapdata.NewMap()
	m.UDMFNamespace = "doom"
	v1 := m.NewVertex(0, 0)
	v2 := m.NewVertex(64, 0)
	line := m.NewLine(v1, v2)
	line.Props().Set("zero", property.Int(0))
	line.Props().Set("nonzero", property.Int(5))

	out := string(mapformat.WriteUDMF(m, nil))

	if !strings.Contains(out, "nonzero=5;") {
		t.Errorf("WriteUDMF() output missing nonzero extra prop:\n%s", out)
	}
	if strings.Contains(out, "zero=0;") {
		t.Errorf("WriteUDMF() output should suppress zero-valued extra prop:\n%s", out)
	}
	if !strings.Contains(out, `namespace="doom";`) {
		t.Errorf("WriteUDMF() missing namespace line:\n%s", out)
	}
}

func TestUDMFRoundTrip(t *testing.T) {
	m := mapdata.NewMap()
	if err := mapformat.ReadUDMF(m, []byte(sampleTextmap), nil); err != nil {
		t.Fatalf("ReadUDMF() error = %v", err)
	}
	out := mapformat.WriteUDMF(m, nil)

	m2 := mapdata.NewMap()
	if err := mapformat.ReadUDMF(m2, out, nil); err != nil {
		t.Fatalf("ReadUDMF() on round-tripped output error = %v", err)
	}
	if len(m2.Lines()) != len(m.Lines()) || len(m2.Sectors()) != len(m.Sectors()) {
		t.Errorf("round trip lost objects: got lines=%d sectors=%d, want lines=%d sectors=%d",
			len(m2.Lines()), len(m2.Sectors()), len(m.Lines()), len(m.Sectors()))
	}
}
