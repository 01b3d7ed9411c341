package ppu

import (
	"gbgo/internal/memory"
)

// VRAM layout.
const (
	tileData0 = 0x8000 // unsigned tile indices
	tileData1 = 0x8800 // signed tile indices
	tileMap0  = 0x9800
	tileMap1  = 0x9C00
)

// renderScanline draws one line: background, then window, then sprites.
func (p *PPU) renderScanline(ly byte) {
	for i := range p.bgShade {
		p.bgShade[i] = shadeWhite
	}
	p.drawBackground(ly)
	p.drawWindow(ly)
	p.drawSprites(ly)
}

// tileLine locates the two bytes describing one 8-pixel row of a tile.
func (p *PPU) tileLine(dataArea uint16, unsigned bool, tileNum byte, row byte) (byte, byte) {
	var loc uint16
	if unsigned {
		loc = dataArea + uint16(tileNum)*16
	} else {
		loc = dataArea + uint16(int(int8(tileNum))+128)*16
	}
	loc += uint16(row) * 2
	return p.mem.ReadByte(loc), p.mem.ReadByte(loc + 1)
}

// tileColor extracts the 2-bit color of one pixel from a tile row.
func tileColor(data1, data2 byte, bit byte) byte {
	return (data2>>bit&1)<<1 | data1>>bit&1
}

func (p *PPU) drawBackground(ly byte) {
	lcdc := p.mem.ReadByte(memory.LCDC)
	if lcdc&(1<<0) == 0 {
		return
	}

	scy := p.mem.ReadByte(memory.SCY)
	scx := p.mem.ReadByte(memory.SCX)
	bgp := p.mem.ReadByte(memory.BGP)

	dataArea, unsigned := uint16(tileData1), false
	if lcdc&(1<<4) != 0 {
		dataArea, unsigned = tileData0, true
	}
	mapBase := uint16(tileMap0)
	if lcdc&(1<<3) != 0 {
		mapBase = tileMap1
	}

	yPos := scy + ly // wraps mod 256
	tileRow := uint16(yPos/8) * 32

	for pixel := 0; pixel < Width; pixel++ {
		xPos := byte(pixel) + scx
		tileNum := p.mem.ReadByte(mapBase + tileRow + uint16(xPos/8))
		data1, data2 := p.tileLine(dataArea, unsigned, tileNum, yPos%8)

		colorNum := tileColor(data1, data2, 7-xPos%8)
		shade := paletteShade(bgp, colorNum)
		p.bgShade[pixel] = shade
		p.screen[ly][pixel] = schemeRGB(p.scheme, paletteBG, shade)
	}
}

func (p *PPU) drawWindow(ly byte) {
	lcdc := p.mem.ReadByte(memory.LCDC)
	if lcdc&(1<<5) == 0 {
		return
	}

	wy := p.mem.ReadByte(memory.WY)
	if ly < wy {
		return
	}
	wx := int(p.mem.ReadByte(memory.WX)) - 7
	bgp := p.mem.ReadByte(memory.BGP)

	dataArea, unsigned := uint16(tileData1), false
	if lcdc&(1<<4) != 0 {
		dataArea, unsigned = tileData0, true
	}
	mapBase := uint16(tileMap0)
	if lcdc&(1<<6) != 0 {
		mapBase = tileMap1
	}

	winLine := ly - wy
	tileRow := uint16(winLine/8) * 32

	start := wx
	if start < 0 {
		start = 0
	}
	for pixel := start; pixel < Width; pixel++ {
		xPos := byte(pixel - wx)
		tileNum := p.mem.ReadByte(mapBase + tileRow + uint16(xPos/8))
		data1, data2 := p.tileLine(dataArea, unsigned, tileNum, winLine%8)

		colorNum := tileColor(data1, data2, 7-xPos%8)
		shade := paletteShade(bgp, colorNum)
		// Shade-0 window pixels only pass the background through while
		// sprites are disabled; see DESIGN.md.
		if shade == shadeWhite && lcdc&(1<<1) == 0 {
			continue
		}
		p.bgShade[pixel] = shade
		p.screen[ly][pixel] = schemeRGB(p.scheme, paletteBG, shade)
	}
}

func (p *PPU) drawSprites(ly byte) {
	lcdc := p.mem.ReadByte(memory.LCDC)
	if lcdc&(1<<1) == 0 {
		return
	}

	ySize := 8
	use8x16 := lcdc&(1<<2) != 0
	if use8x16 {
		ySize = 16
	}

	// Walk OAM back to front so lower-index sprites paint over higher.
	for sprite := 39; sprite >= 0; sprite-- {
		index := uint16(sprite * 4)
		yPos := int(p.mem.ReadByte(memory.OAM+index)) - 16
		xPos := int(p.mem.ReadByte(memory.OAM+index+1)) - 8
		tileNum := p.mem.ReadByte(memory.OAM + index + 2)
		attrs := p.mem.ReadByte(memory.OAM + index + 3)

		bgPriority := attrs&(1<<7) != 0
		yFlip := attrs&(1<<6) != 0
		xFlip := attrs&(1<<5) != 0

		if use8x16 {
			// In 8x16 mode the low bit of the tile index is ignored.
			tileNum &^= 1
		}

		if int(ly) < yPos || int(ly) >= yPos+ySize {
			continue
		}

		line := int(ly) - yPos
		if yFlip {
			line = ySize - 1 - line
		}
		addr := uint16(tileData0) + uint16(tileNum)*16 + uint16(line)*2
		data1 := p.mem.ReadByte(addr)
		data2 := p.mem.ReadByte(addr + 1)

		for tilePixel := 7; tilePixel >= 0; tilePixel-- {
			colorBit := byte(tilePixel)
			if xFlip {
				colorBit = 7 - colorBit
			}
			colorNum := tileColor(data1, data2, colorBit)
			if colorNum == 0 {
				continue // transparent
			}

			pixel := xPos + 7 - tilePixel
			if pixel < 0 || pixel >= Width {
				continue
			}
			if bgPriority && p.bgShade[pixel] != shadeWhite {
				continue
			}

			paletteReg, slot := uint16(memory.OBP0), paletteOBJ0
			if attrs&(1<<4) != 0 {
				paletteReg, slot = memory.OBP1, paletteOBJ1
			}
			shade := paletteShade(p.mem.ReadByte(paletteReg), colorNum)
			p.screen[ly][pixel] = schemeRGB(p.scheme, slot, shade)
		}
	}
}
