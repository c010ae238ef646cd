package archive

import "strings"

// z85Alphabet is the fixed 85-symbol alphabet of the ZeroMQ Z85
// encoding (see zeromq/rfc ZMTP Z85), used by VWAD for representing
// signing keys as printable strings (spec.md §4.4). This is a fixed
// published encoding, not a project-specific format.
const z85Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.-:+=^!/*?&<>()[]{}@%$#"

var z85Decode85 [256]int8

func init() {
	for i := range z85Decode85 {
		z85Decode85[i] = -1
	}
	for i, c := range z85Alphabet {
		z85Decode85[byte(c)] = int8(i)
	}
}

// z85Encode encodes data (length must be a multiple of 4) into Z85
// text (length is 5/4 of the input).
func z85Encode(data []byte) (string, error) {
	if len(data)%4 != 0 {
		return "", wrap(ErrBadKey, "z85: input length %d not a multiple of 4", len(data))
	}
	var b strings.Builder
	b.Grow(len(data) * 5 / 4)
	for i := 0; i < len(data); i += 4 {
		value := uint32(data[i])<<24 | uint32(data[i+1])<<16 | uint32(data[i+2])<<8 | uint32(data[i+3])
		var chunk [5]byte
		for j := 4; j >= 0; j-- {
			chunk[j] = z85Alphabet[value%85]
			value /= 85
		}
		b.Write(chunk[:])
	}
	return b.String(), nil
}

// z85Decode decodes Z85 text (length must be a multiple of 5) back
// into bytes.
func z85Decode(s string) ([]byte, error) {
	if len(s)%5 != 0 {
		return nil, wrap(ErrBadKey, "z85: input length %d not a multiple of 5", len(s))
	}
	out := make([]byte, 0, len(s)*4/5)
	for i := 0; i < len(s); i += 5 {
		var value uint32
		for j := 0; j < 5; j++ {
			c := s[i+j]
			d := z85Decode85[c]
			if d < 0 {
				return nil, wrap(ErrBadKey, "z85: invalid character %q", c)
			}
			value = value*85 + uint32(d)
		}
		out = append(out, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	}
	return out, nil
}
