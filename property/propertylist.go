package property

import (
	"fmt"
	"strings"
)

type namedProperty struct {
	name  string
	value Property
}

// List is an ordered sequence of (name, Property) pairs with
// case-insensitive key comparison. Duplicate-insertion is first-wins on
// lookup; Get creates an entry on first access, matching the source's
// operator[] semantics.
type List struct {
	props []namedProperty
}

func (l *List) indexOf(key string) int {
	for i := range l.props {
		if strings.EqualFold(l.props[i].name, key) {
			return i
		}
	}
	return -1
}

// Get returns the property at key, creating an empty (bool false)
// entry for it if absent — mirroring PropertyList::operator[].
func (l *List) Get(key string) Property {
	if i := l.indexOf(key); i >= 0 {
		return l.props[i].value
	}
	l.props = append(l.props, namedProperty{name: key, value: Bool(false)})
	return l.props[len(l.props)-1].value
}

// Set assigns a property value for key, creating the entry if absent.
func (l *List) Set(key string, value Property) {
	if i := l.indexOf(key); i >= 0 {
		l.props[i].value = value
		return
	}
	l.props = append(l.props, namedProperty{name: key, value: value})
}

// Has reports whether key exists in the list (case-insensitive).
func (l *List) Has(key string) bool {
	return l.indexOf(key) >= 0
}

// GetIf returns the property at key and true, or the zero Property and
// false if absent — never creates an entry (unlike Get).
func (l *List) GetIf(key string) (Property, bool) {
	if i := l.indexOf(key); i >= 0 {
		return l.props[i].value, true
	}
	return Property{}, false
}

// Remove deletes the property at key, reporting whether it existed.
func (l *List) Remove(key string) bool {
	if i := l.indexOf(key); i >= 0 {
		l.props = append(l.props[:i], l.props[i+1:]...)
		return true
	}
	return false
}

// Clear empties the list.
func (l *List) Clear() {
	l.props = nil
}

// Len returns the number of properties in the list.
func (l *List) Len() int {
	return len(l.props)
}

// Names returns all property names in insertion order.
func (l *List) Names() []string {
	names := make([]string, len(l.props))
	for i, p := range l.props {
		names[i] = p.name
	}
	return names
}

// Each calls fn for every (name, value) pair in insertion order.
func (l *List) Each(fn func(name string, value Property)) {
	for _, p := range l.props {
		fn(p.name, p.value)
	}
}

// CopyTo copies every (name, value) pair into dst, overwriting any
// existing entries with the same key.
func (l *List) CopyTo(dst *List) {
	for _, p := range l.props {
		dst.Set(p.name, p.value)
	}
}

// String renders the list as "key = value;\n" lines, escaping and
// quoting string values. floatPrecision controls float rendering via
// Property.AsString.
func (l *List) String(condensed bool, floatPrecision int) string {
	var b strings.Builder
	for _, p := range l.props {
		val := p.value.AsString(floatPrecision)
		if p.value.IsString() {
			val = "\"" + escapeString(val) + "\""
		}
		if condensed {
			fmt.Fprintf(&b, "%s=%s;\n", p.name, val)
		} else {
			fmt.Fprintf(&b, "%s = %s;\n", p.name, val)
		}
	}
	return b.String()
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
