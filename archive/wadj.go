package archive

// wadj.go adds nothing structural over wadCodec: WadJArchive is the
// same directory/namespace/Jaguar-decryption model as WadArchive, just
// big-endian and defaulting to the sprite "." dot-file convention
// (spec.md §4.2, grounded on original_source/.../WadJArchive.cpp).
//
// NewWadJCodec/OpenWadJ in wad.go already configure wadCodec for this
// variant; NamespaceOfEntry is the one behavioral override, applied
// when spriteDot is set.
