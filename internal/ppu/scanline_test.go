package ppu

import (
	"testing"

	"gbgo/internal/memory"
)

// writeTile fills one 8x8 tile with a single 2-bit color.
func writeTile(m *memory.Memory, base uint16, colorNum byte) {
	lo, hi := byte(0), byte(0)
	if colorNum&1 != 0 {
		lo = 0xFF
	}
	if colorNum&2 != 0 {
		hi = 0xFF
	}
	for row := uint16(0); row < 8; row++ {
		m.WriteByte(base+row*2, lo)
		m.WriteByte(base+row*2+1, hi)
	}
}

func TestBackgroundScanlineUniformWhite(t *testing.T) {
	p, _, _ := newTestPPU(t)
	// Post-BIOS defaults: LCDC 0x91, BGP 0xFC, VRAM zeroed. Every pixel
	// resolves to shade 0.
	p.Update(457)
	for x := 0; x < Width; x++ {
		if p.screen[0][x] != [3]byte{0xFF, 0xFF, 0xFF} {
			t.Fatalf("pixel %d got %v want white", x, p.screen[0][x])
		}
	}
}

func TestBackgroundTileRendering(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.BGP, 0xE4)

	writeTile(m, 0x8010, 3)       // tile 1: solid color 3
	m.WriteByte(0x9800, 0x01)     // map cell (0,0) -> tile 1
	p.Update(457)                 // render line 0

	black := schemeRGB(0, paletteBG, 3)
	white := schemeRGB(0, paletteBG, 0)
	for x := 0; x < 8; x++ {
		if p.screen[0][x] != black {
			t.Fatalf("tile pixel %d got %v want %v", x, p.screen[0][x], black)
		}
	}
	if p.screen[0][8] != white {
		t.Fatalf("pixel 8 got %v want %v", p.screen[0][8], white)
	}
}

func TestBackgroundScrollWraps(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.BGP, 0xE4)

	writeTile(m, 0x8010, 3)
	m.WriteByte(0x9800+31, 0x01) // last map column
	m.WriteByte(memory.SCX, 248) // shows map column 31 at pixel 0

	p.Update(457)
	black := schemeRGB(0, paletteBG, 3)
	if p.screen[0][0] != black {
		t.Fatalf("scrolled pixel got %v want %v", p.screen[0][0], black)
	}
}

func TestSignedTileAddressing(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.BGP, 0xE4)
	m.WriteByte(memory.LCDC, 0x81) // LCD on, BG on, 0x8800 signed data area

	// Tile index 0 in signed mode resolves to 0x9000.
	writeTile(m, 0x9000, 2)
	p.Update(457)
	want := schemeRGB(0, paletteBG, 2)
	if p.screen[0][0] != want {
		t.Fatalf("signed-mode pixel got %v want %v", p.screen[0][0], want)
	}
}

func TestWindowTransparencyFollowsSpriteEnable(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.BGP, 0xE4)

	// Background: map 0x9800 shows tile 1 (color 1) everywhere on row 0.
	writeTile(m, 0x8010, 1)
	for col := uint16(0); col < 32; col++ {
		m.WriteByte(0x9800+col, 0x01)
	}

	// Window: map 0x9C00 left at tile 0 (color 0), covering the line.
	m.WriteByte(memory.WY, 0)
	m.WriteByte(memory.WX, 7)

	// Sprites disabled: window shade-0 pixels pass the background through.
	m.WriteByte(memory.LCDC, 0x91|1<<5|1<<6)
	p.Update(457)
	lightGray := schemeRGB(0, paletteBG, 1)
	if p.screen[0][0] != lightGray {
		t.Fatalf("window pixel with sprites off got %v want background %v", p.screen[0][0], lightGray)
	}

	// Sprites enabled: the same window pixel paints shade 0.
	m.WriteByte(memory.LCDC, 0x91|1<<5|1<<6|1<<1)
	p.Update(457)
	white := schemeRGB(0, paletteBG, 0)
	if p.screen[1][0] != white {
		t.Fatalf("window pixel with sprites on got %v want %v", p.screen[1][0], white)
	}
}

func TestSpriteRenderingWithPalette(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.LCDC, 0x93) // BG + sprites
	m.WriteByte(memory.OBP0, 0xE4)

	writeTile(m, 0x8020, 3) // tile 2: solid color 3

	// Sprite 0 at screen (0,0), tile 2, OBP0, no flips.
	m.WriteByte(0xFE00, 16)
	m.WriteByte(0xFE01, 8)
	m.WriteByte(0xFE02, 2)
	m.WriteByte(0xFE03, 0)

	p.Update(457)
	want := schemeRGB(0, paletteOBJ0, 3)
	for x := 0; x < 8; x++ {
		if p.screen[0][x] != want {
			t.Fatalf("sprite pixel %d got %v want %v", x, p.screen[0][x], want)
		}
	}
}

func TestSpriteBehindNonWhiteBackground(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.LCDC, 0x93)
	m.WriteByte(memory.BGP, 0xE4)
	m.WriteByte(memory.OBP0, 0xE4)

	writeTile(m, 0x8010, 2) // background color 2
	m.WriteByte(0x9800, 0x01)
	writeTile(m, 0x8020, 3) // sprite color 3

	// Sprite 0: BG-priority, over the colored tile at pixels 0-7.
	m.WriteByte(0xFE00, 16)
	m.WriteByte(0xFE01, 8)
	m.WriteByte(0xFE02, 2)
	m.WriteByte(0xFE03, 0x80)
	// Sprite 1: BG-priority, over white background at pixels 8-15.
	m.WriteByte(0xFE04, 16)
	m.WriteByte(0xFE05, 16)
	m.WriteByte(0xFE06, 2)
	m.WriteByte(0xFE07, 0x80)

	p.Update(457)
	bg := schemeRGB(0, paletteBG, 2)
	if p.screen[0][0] != bg {
		t.Fatalf("priority sprite should hide behind bg, got %v want %v", p.screen[0][0], bg)
	}
	// Shade-0 background never wins against a priority sprite.
	if p.screen[0][8] != schemeRGB(0, paletteOBJ0, 3) {
		t.Fatalf("sprite over white bg got %v", p.screen[0][8])
	}
}

func TestSpriteXFlip(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.LCDC, 0x93)
	m.WriteByte(memory.OBP0, 0xE4)

	// Tile 2 row: left half color 1, right half color 0.
	for row := uint16(0); row < 8; row++ {
		m.WriteByte(0x8020+row*2, 0xF0)
		m.WriteByte(0x8020+row*2+1, 0x00)
	}

	m.WriteByte(0xFE00, 16)
	m.WriteByte(0xFE01, 8)
	m.WriteByte(0xFE02, 2)
	m.WriteByte(0xFE03, 1<<5) // X flip

	p.Update(457)
	colored := schemeRGB(0, paletteOBJ0, 1)
	if p.screen[0][0] == colored {
		t.Fatalf("flipped sprite should be transparent on the left")
	}
	if p.screen[0][7] != colored {
		t.Fatalf("flipped sprite right edge got %v want %v", p.screen[0][7], colored)
	}
}

func TestSpriteTallModeForcesEvenTile(t *testing.T) {
	p, m, _ := newTestPPU(t)
	m.WriteByte(memory.LCDC, 0x93|1<<2) // 8x16 sprites
	m.WriteByte(memory.OBP0, 0xE4)

	writeTile(m, 0x8020, 3) // tile 2
	writeTile(m, 0x8030, 1) // tile 3

	// Odd tile index 3: low bit ignored, uses tile 2.
	m.WriteByte(0xFE00, 16)
	m.WriteByte(0xFE01, 8)
	m.WriteByte(0xFE02, 3)
	m.WriteByte(0xFE03, 0)

	p.Update(457)
	want := schemeRGB(0, paletteOBJ0, 3)
	if p.screen[0][0] != want {
		t.Fatalf("tall sprite pixel got %v want %v (tile 2)", p.screen[0][0], want)
	}
}
