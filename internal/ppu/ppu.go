// Package ppu is the scanline-based LCD controller: it maintains the STAT
// mode state machine, raises VBlank and LCD-STAT interrupts, and renders
// background, window and sprites into an RGB framebuffer.
package ppu

import (
	"errors"

	"gbgo/internal/memory"
)

// Screen dimensions in pixels.
const (
	Width  = 160
	Height = 144
)

// Timing, in CPU cycles and scanline numbers.
const (
	cyclesPerLine = 456
	mode2End      = 80
	mode3End      = 80 + 172
	vblankLine    = 144
	lastLine      = 153
)

// ErrBadColorScheme is returned for selectors outside 0..9.
var ErrBadColorScheme = errors.New("color scheme selector out of range")

// InterruptController is where the PPU files its interrupt requests; the
// Memory's IF register backs it.
type InterruptController interface {
	RequestInterrupt(memory.Interrupt)
}

// PPU holds a non-owning reference to Memory for VRAM/OAM/register access
// and owns the host-visible framebuffer.
type PPU struct {
	mem *memory.Memory
	irq InterruptController

	screen [Height][Width][3]byte

	// bgShade records the background/window shade of each pixel on the
	// line being rendered, for sprite BG-priority decisions.
	bgShade [Width]byte

	scanlineCounter int
	scheme          int
}

// New wires a PPU to memory and an interrupt controller.
func New(mem *memory.Memory, irq InterruptController) *PPU {
	return &PPU{mem: mem, irq: irq}
}

// Reset clears the scanline counter and the framebuffer. The selected
// color scheme survives a reset.
func (p *PPU) Reset() {
	p.scanlineCounter = 0
	p.screen = [Height][Width][3]byte{}
}

// UseColorScheme selects one of the ten palettes.
func (p *PPU) UseColorScheme(scheme int) error {
	if scheme < 0 || scheme >= len(colorSchemes) {
		return ErrBadColorScheme
	}
	p.scheme = scheme
	return nil
}

// ColorScheme returns the selected scheme index.
func (p *PPU) ColorScheme() int { return p.scheme }

// Framebuffer exposes the 160x144 RGB screen, row-major, top-left origin.
func (p *PPU) Framebuffer() *[Height][Width][3]byte { return &p.screen }

// Update advances the PPU by the given number of CPU cycles: it refreshes
// the STAT mode, and on line completion renders the scanline and steps LY.
func (p *PPU) Update(cycles int) {
	p.setLCDStatus()

	if p.lcdEnabled() {
		p.scanlineCounter += cycles
	}

	if p.mem.ReadByte(memory.LY) > lastLine {
		p.mem.SetLY(0)
	}

	if p.scanlineCounter > cyclesPerLine {
		p.scanline()
	}
}

// setLCDStatus recomputes the STAT mode bits from the scanline counter and
// raises the LCD-STAT interrupt on an enabled mode transition edge.
func (p *PPU) setLCDStatus() {
	status := p.mem.ReadByte(memory.STAT)

	if !p.lcdEnabled() {
		p.resetScanlineCounter()
		p.mem.SetLY(0)
		status = status&0xFC | 0x01
		p.mem.WriteByte(memory.STAT, status)
		return
	}

	ly := p.mem.ReadByte(memory.LY)
	currentMode := status & 0x03

	var mode byte
	reqInt := false

	if ly >= vblankLine {
		mode = 1
		status = status&0xFC | 0x01
		reqInt = status&(1<<4) != 0
	} else {
		switch {
		case p.scanlineCounter < mode2End:
			mode = 2
			status = status&0xFC | 0x02
			reqInt = status&(1<<5) != 0
		case p.scanlineCounter < mode3End:
			mode = 3
			status |= 0x03
		default:
			mode = 0
			status &= 0xFC
			reqInt = status&(1<<3) != 0
		}
	}

	if reqInt && mode != currentMode {
		p.irq.RequestInterrupt(memory.IntLCDStat)
	}

	p.mem.WriteByte(memory.STAT, status)
}

// scanline completes the current line: render it, advance LY, raise VBlank
// on entry to line 144, and re-evaluate the LYC coincidence.
func (p *PPU) scanline() {
	if !p.lcdEnabled() {
		return
	}
	p.resetScanlineCounter()

	ly := p.mem.ReadByte(memory.LY)
	if ly < vblankLine {
		p.renderScanline(ly)
	}

	p.mem.IncrementLY()
	ly = p.mem.ReadByte(memory.LY)
	if ly > lastLine {
		p.mem.SetLY(0)
		ly = 0
	}
	if ly == vblankLine {
		p.irq.RequestInterrupt(memory.IntVBlank)
	}

	p.updateCoincidence(ly)
}

// resetScanlineCounter starts the next line, carrying any cycle overshoot.
func (p *PPU) resetScanlineCounter() {
	if p.scanlineCounter > cyclesPerLine {
		p.scanlineCounter -= cyclesPerLine
	} else {
		p.scanlineCounter = 0
	}
}

// updateCoincidence maintains STAT bit 2 and raises LCD-STAT when the
// comparison becomes true with bit 6 enabled.
func (p *PPU) updateCoincidence(ly byte) {
	status := p.mem.ReadByte(memory.STAT)
	wasSet := status&(1<<2) != 0
	if ly == p.mem.ReadByte(memory.LYC) {
		status |= 1 << 2
		if !wasSet && status&(1<<6) != 0 {
			p.irq.RequestInterrupt(memory.IntLCDStat)
		}
	} else {
		status &^= 1 << 2
	}
	p.mem.WriteByte(memory.STAT, status)
}

func (p *PPU) lcdEnabled() bool {
	return p.mem.ReadByte(memory.LCDC)&(1<<7) != 0
}
