package ppu

// Shade indices within a palette register, before scheme mapping.
const (
	shadeWhite byte = iota
	shadeLightGray
	shadeDarkGray
	shadeBlack
)

// Palette slots within a color scheme.
const (
	paletteBG = iota
	paletteOBJ0
	paletteOBJ1
)

// ColorSchemeNames lists the selectable schemes in selector order.
var ColorSchemeNames = [10]string{
	"Gray Shades",
	"Game Boy Classic",
	"KIGB",
	"bgb",
	"NO$GMB",
	"GameBoy Pocket",
	"Psychadelic",
	"Takedown",
	"Dark Brown",
	"Super GameBoy",
}

// colorSchemes holds, per scheme, 24-bit RGB values for the four shades of
// the BG, OBP0 and OBP1 palettes. The values are fixed constants; existing
// configurations depend on them bit-exactly.
var colorSchemes = [10][3][4]int{
	{{0xFFFFFF, 0xAAAAAA, 0x555555, 0x000000},
		{0xFFFFFF, 0xAAAAAA, 0x555555, 0x000000},
		{0xFFFFFF, 0xAAAAAA, 0x555555, 0x000000}},

	{{0x9BBC0F, 0x8BAC0F, 0x306230, 0x0F380F},
		{0x9BBC0F, 0x8BAC0F, 0x306230, 0x0F380F},
		{0x9BBC0F, 0x8BAC0F, 0x306230, 0x0F380F}},

	{{0xE7E7DE, 0xADB594, 0x318C8C, 0x292929},
		{0xFFFFFF, 0xE7C6BD, 0xAD7373, 0x292929},
		{0xFFFFFF, 0xE7C6BD, 0xAD7373, 0x292929}},

	{{0xEFFFDE, 0xADD794, 0x529273, 0x183442},
		{0xEFFFDE, 0xADD794, 0x529273, 0x183442},
		{0xEFFFDE, 0xADD794, 0x529273, 0x183442}},

	{{0xFFE78C, 0xDEB55A, 0x9C7B39, 0x4A3918},
		{0xFFE78C, 0xDEB55A, 0x9C7B39, 0x4A3918},
		{0xFFE78C, 0xDEB55A, 0x9C7B39, 0x4A3918}},

	{{0xC3CFA1, 0x8B9570, 0x4E533D, 0x1F1F1F},
		{0xC3CFA1, 0x8B9570, 0x4E533D, 0x1F1F1F},
		{0xC3CFA1, 0x8B9570, 0x4E533D, 0x1F1F1F}},

	{{0xFFC0FF, 0x8080FF, 0xC000C0, 0x800080},
		{0xFFFF40, 0xC0C000, 0xFF4040, 0x800000},
		{0x80FFFF, 0x00C0C0, 0x008080, 0x004000}},

	{{0xE7D69C, 0xB5A56B, 0x7B7363, 0x393929},
		{0xE7D69C, 0xB5A56B, 0x7B7363, 0x393929},
		{0xE7D69C, 0xB5A56B, 0x7B7363, 0x393929}},

	{{0xFCEAE4, 0xC4AE94, 0x947A4C, 0x4C2A04},
		{0xFCEAE4, 0xEC9A54, 0x844204, 0x000000},
		{0xFCEAE4, 0xEC9A54, 0x844204, 0x000000}},

	{{0xFEFEF7, 0xFEF7C0, 0xE29494, 0x414141},
		{0xFEFEF7, 0xFEF7C0, 0xE29494, 0x414141},
		{0xFEFEF7, 0xFEF7C0, 0xE29494, 0x414141}},
}

// paletteShade translates a 2-bit tile color through a palette register.
func paletteShade(palette byte, colorNum byte) byte {
	return palette >> (colorNum * 2) & 0x03
}

// schemeRGB splits a scheme entry into its R, G, B bytes.
func schemeRGB(scheme, slot int, shade byte) [3]byte {
	v := colorSchemes[scheme][slot][shade]
	return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}
}
