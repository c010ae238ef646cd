package property_test

import (
	"testing"

	"github.com/sirjuddington/slade-core/property"
)

func TestCoercions(t *testing.T) {
	p := property.String("42")
	if got := p.AsInt(); got != 42 {
		t.Errorf("AsInt() = %d, want 42", got)
	}
	if got := p.AsFloat(); got != 42 {
		t.Errorf("AsFloat() = %v, want 42", got)
	}

	f := property.Float(3.75)
	if got := f.AsInt(); got != 3 {
		t.Errorf("AsInt() truncation = %d, want 3", got)
	}

	b := property.Bool(true)
	if got := b.AsString(-1); got != "true" {
		t.Errorf("AsString() = %q, want true", got)
	}

	s := property.String("true")
	if !s.AsBool() {
		t.Errorf("AsBool() on %q should be true", "true")
	}
	if property.String("nope").AsBool() {
		t.Errorf("AsBool() on garbage string should be false")
	}
}

func TestListFirstWinsAndCaseInsensitive(t *testing.T) {
	var l property.List
	l.Set("Foo", property.Int(1))
	l.Set("foo", property.Int(2))

	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if got := l.Get("FOO").AsInt(); got != 2 {
		t.Errorf("Get(FOO) = %d, want 2", got)
	}

	if l.Has("bar") {
		t.Errorf("Has(bar) should be false")
	}
	if _, ok := l.GetIf("bar"); ok {
		t.Errorf("GetIf(bar) should not create an entry")
	}
	// Get creates on access
	l.Get("bar")
	if !l.Has("bar") {
		t.Errorf("Get(bar) should have created the entry")
	}
}

func TestListStringRendering(t *testing.T) {
	var l property.List
	l.Set("x", property.Int(5))
	l.Set("name", property.String("hi \"there\""))

	out := l.String(false, 3)
	want := "x = 5;\nname = \"hi \\\"there\\\"\";\n"
	if out != want {
		t.Errorf("String() = %q, want %q", out, want)
	}
}
