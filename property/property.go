// Package property implements the dynamic scalar value used throughout
// archive entries and UDMF map objects.
package property

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant a Property currently holds.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindUInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUInt:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Property is a tagged union over {bool, int32, uint32, f64, string}.
// Every accessor is total: any variant can be read back as any scalar
// form via documented coercions.
type Property struct {
	kind Kind
	b    bool
	i    int32
	u    uint32
	f    float64
	s    string
}

// Bool creates a bool-valued Property.
func Bool(v bool) Property { return Property{kind: KindBool, b: v} }

// Int creates an int32-valued Property.
func Int(v int32) Property { return Property{kind: KindInt, i: v} }

// UInt creates a uint32-valued Property.
func UInt(v uint32) Property { return Property{kind: KindUInt, u: v} }

// Float creates a float64-valued Property.
func Float(v float64) Property { return Property{kind: KindFloat, f: v} }

// String creates a string-valued Property.
func String(v string) Property { return Property{kind: KindString, s: v} }

// Kind reports which variant is currently stored.
func (p Property) Kind() Kind { return p.kind }

// IsString reports whether the property holds a string.
func (p Property) IsString() bool { return p.kind == KindString }

// IsZero reports whether the property holds its variant's zero value
// (false, 0, 0.0, or "") — used by UDMF-style writers to suppress
// default attributes.
func IsZero(p Property) bool {
	switch p.kind {
	case KindBool:
		return !p.b
	case KindInt:
		return p.i == 0
	case KindUInt:
		return p.u == 0
	case KindFloat:
		return p.f == 0
	case KindString:
		return p.s == ""
	}
	return true
}

// AsBool coerces the property to a bool. Strings parse "true"/"1" as
// true and anything else as false; numeric types are true iff nonzero.
func (p Property) AsBool() bool {
	switch p.kind {
	case KindBool:
		return p.b
	case KindInt:
		return p.i != 0
	case KindUInt:
		return p.u != 0
	case KindFloat:
		return p.f != 0
	case KindString:
		switch p.s {
		case "true", "1":
			return true
		default:
			return false
		}
	}
	return false
}

// AsInt coerces the property to an int32. Floats truncate toward zero.
// Strings are parsed as a base-10 integer, else as a float truncated
// toward zero; strings that parse as neither yield 0.
func (p Property) AsInt() int32 {
	switch p.kind {
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	case KindInt:
		return p.i
	case KindUInt:
		return int32(p.u)
	case KindFloat:
		return int32(p.f)
	case KindString:
		n, err := strconv.ParseInt(p.s, 10, 32)
		if err != nil {
			if f, ferr := strconv.ParseFloat(p.s, 64); ferr == nil {
				return int32(f)
			}
			return 0
		}
		return int32(n)
	}
	return 0
}

// AsUInt coerces the property to a uint32, as AsInt but unsigned.
// Strings are parsed as a base-10 unsigned integer only, with no float
// fallback; unparsable strings yield 0.
func (p Property) AsUInt() uint32 {
	switch p.kind {
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	case KindInt:
		return uint32(p.i)
	case KindUInt:
		return p.u
	case KindFloat:
		return uint32(p.f)
	case KindString:
		n, err := strconv.ParseUint(p.s, 10, 32)
		if err != nil {
			return 0
		}
		return uint32(n)
	}
	return 0
}

// AsFloat coerces the property to a float64.
func (p Property) AsFloat() float64 {
	switch p.kind {
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	case KindInt:
		return float64(p.i)
	case KindUInt:
		return float64(p.u)
	case KindFloat:
		return p.f
	case KindString:
		f, err := strconv.ParseFloat(p.s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// AsString renders the property as a string. Float rendering uses
// prec decimal digits (-1 selects the shortest exact representation,
// matching strconv.FormatFloat's 'g'-style -1 precision).
func (p Property) AsString(prec int) string {
	switch p.kind {
	case KindBool:
		if p.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(int64(p.i), 10)
	case KindUInt:
		return strconv.FormatUint(uint64(p.u), 10)
	case KindFloat:
		return strconv.FormatFloat(p.f, 'f', prec, 64)
	case KindString:
		return p.s
	}
	return ""
}
