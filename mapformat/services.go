// Package mapformat reads and writes SLADEMap object graphs in the
// Doom, Hexen, Doom64, and UDMF wire formats (spec.md §4.8/§4.9).
package mapformat

// GameConfig supplies the format-dependent defaults and lookup tables
// a map loader/writer needs but SLADEMap itself has no opinion on
// (spec.md §4.8: "a game-provided hash→name table"). Only the Doom64
// reader and writer consult it, for texture hashes.
type GameConfig interface {
	// DefaultWallTexture returns the game's default wall texture.
	// Nothing in mapdata or mapformat calls it: correctSectors and
	// correctLineSectors give new sides the "-" placeholder.
	DefaultWallTexture() string
	// DefaultFlatTexture returns the game's default flat. Nothing in
	// mapdata or mapformat calls it: a sector correctSectors creates
	// with no neighbor keeps empty floor and ceiling textures.
	DefaultFlatTexture() string
	// HashToTextureName resolves a Doom64 16-bit texture hash to its
	// human-readable name.
	HashToTextureName(hash uint16) string
	// TextureNameToHash is HashToTextureName's inverse, used on save.
	TextureNameToHash(name string) uint16
}

// UDMFProperty describes one recognized UDMF key for write-time
// default suppression (spec.md §4.8 UDMF writer: "only non-default
// attributes are emitted unless showAlways"). WriteUDMF reads only Name
// and ShowAlways: a value counts as default when property.IsZero
// reports it, and Default is not compared.
type UDMFProperty struct {
	Name        string
	Default     interface{}
	ShowAlways  bool
}

// ResourceManager is consulted by the UDMF writer for per-property
// metadata that varies by game configuration/namespace; the writer
// uses only the show-always flags.
type ResourceManager interface {
	UDMFProperties(objectKind string) []UDMFProperty
}

// Block is one parsed UDMF top-level construct: `kind { key=value; }`
// or, for a bare root assignment like `namespace=...;`, Kind=="" and
// Props holds the single key.
type Block struct {
	Kind  string
	Props map[string]Literal
}

// Literal is a parsed UDMF scalar: bool, int64, float64, or string.
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// LiteralKind identifies which field of Literal is valid.
type LiteralKind int

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralString
)

// TextParser turns UDMF TEXTMAP source text into an ordered sequence
// of top-level blocks, preserving declaration order (spec.md §4.8 step
// 1: "injected Parser service that returns a tree of blocks").
type TextParser interface {
	Parse(src []byte) ([]Block, error)
}
