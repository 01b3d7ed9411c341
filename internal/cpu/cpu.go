// Package cpu implements the Sharp LR35902 interpreter: fetch, decode,
// execute, interrupt service and the DIV/TIMA timers it drives.
package cpu

import (
	"fmt"

	"gbgo/internal/memory"
)

// Flag bit positions within F. The low nibble of F is always zero.
const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// Frame budget: cycles per 60 Hz frame on DMG hardware.
const (
	frameCycles = 70224
	normalSpeed = 1
)

// maxDividerCount is the cycle threshold for one DIV increment.
const maxDividerCount = 0xFF

// clockSpeeds holds cycles per TIMA tick, indexed by TAC bits 0-1.
var clockSpeeds = [4]int{1024, 16, 64, 256}

// interruptVectors maps IF bit index to handler address.
var interruptVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// InvalidOpcodeError reports an unused opcode. It is fatal for the
// emulation run but surfaces as an error instead of ending the process.
type InvalidOpcodeError struct {
	Opcode byte
	PC     uint16
	CB     bool
}

func (e InvalidOpcodeError) Error() string {
	if e.CB {
		return fmt.Sprintf("invalid opcode CB 0x%02X at address 0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("invalid opcode 0x%02X at address 0x%04X", e.Opcode, e.PC)
}

// CPU is the register file plus the per-frame cycle accounting. It holds a
// non-owning reference to Memory.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME    bool
	halted bool
	// EI and DI take effect after the following instruction.
	pendingEI bool
	pendingDI bool

	dividerCounter int
	timerCounter   int
	clockSpeed     int
	speedMode      int
	cpuTime        int

	mem *memory.Memory
}

// New creates a CPU bound to mem, reset to the post-BIOS entry point.
func New(mem *memory.Memory) *CPU {
	c := &CPU{mem: mem}
	c.Reset(0x100)
	return c
}

// Reset loads the documented DMG post-boot register values and starts
// execution at startPC (0x100 when skipping the BIOS, 0x0 otherwise).
func (c *CPU) Reset(startPC uint16) {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.SP = 0xFFFE
	c.PC = startPC
	c.IME = true
	c.pendingEI = false
	c.pendingDI = false
	c.halted = false
	c.dividerCounter = 0
	c.timerCounter = 0
	c.clockSpeed = clockSpeeds[0]
	c.speedMode = normalSpeed
	c.cpuTime = 0
}

// Halted reports whether the CPU is stalled waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// CanExecute reports whether the current frame's cycle budget still has
// room. Once exceeded, the overshoot carries into the next frame.
func (c *CPU) CanExecute() bool {
	if c.cpuTime < c.maxCycles() {
		return true
	}
	if c.cpuTime > c.maxCycles() {
		c.cpuTime -= c.maxCycles()
	} else {
		c.cpuTime = 0
	}
	return false
}

func (c *CPU) maxCycles() int { return c.speedMode * frameCycles }

// Step runs one instruction (or one idle HALT cycle), services pending
// interrupts and advances the timers. It returns the cycles consumed.
func (c *CPU) Step() (int, error) {
	// Commit deferred interrupt toggles once the instruction after the
	// EI/DI has been reached.
	if c.pendingDI && c.mem.ReadByte(c.PC-1) != 0xF3 {
		c.pendingDI = false
		c.IME = false
	}
	if c.pendingEI && c.mem.ReadByte(c.PC-1) != 0xFB {
		c.pendingEI = false
		c.IME = true
	}

	// The BIOS overlay unmaps the first time execution reaches 0x100.
	if c.mem.InBIOS() && c.PC >= 0x0100 {
		c.mem.LeaveBIOS()
	}

	var cycles int
	if c.halted {
		cycles = 4
	} else {
		n, err := c.execute()
		if err != nil {
			return 0, err
		}
		cycles = n
	}

	cycles += c.handleInterrupts()
	c.updateTimers(cycles)
	c.cpuTime += cycles
	return cycles, nil
}

// handleInterrupts services every pending enabled interrupt in priority
// order. Each serviced interrupt costs 32 cycles.
func (c *CPU) handleInterrupts() int {
	if !c.IME {
		return 0
	}
	pending := c.mem.ReadByte(memory.IF) & c.mem.ReadByte(memory.IE) & 0x1F
	if pending == 0 {
		return 0
	}
	cycles := 0
	for i := memory.Interrupt(0); i < 5; i++ {
		if pending&(1<<i) != 0 {
			c.serviceInterrupt(i)
			cycles += 32
		}
	}
	return cycles
}

func (c *CPU) serviceInterrupt(i memory.Interrupt) {
	c.IME = false
	c.halted = false
	c.mem.WriteByte(memory.IF, c.mem.ReadByte(memory.IF)&^(1<<i))
	c.push(c.PC)
	c.PC = interruptVectors[i]
}

// updateTimers advances DIV and, when enabled, TIMA by the instruction's
// cycle count. TIMA overflow reloads from TMA and requests the timer
// interrupt.
func (c *CPU) updateTimers(cycles int) {
	c.doDividerRegister(cycles)

	if !c.clockEnabled() {
		return
	}
	c.timerCounter += cycles
	if c.timerCounter >= c.clockSpeed {
		c.SetClockFrequency()
		if c.mem.ReadByte(memory.TIMA) == 0xFF {
			c.mem.WriteByte(memory.TIMA, c.mem.ReadByte(memory.TMA))
			c.mem.RequestInterrupt(memory.IntTimer)
		} else {
			c.mem.IncrementTIMA()
		}
	}
}

func (c *CPU) doDividerRegister(cycles int) {
	c.dividerCounter += cycles
	if c.dividerCounter > maxDividerCount {
		c.ResetDividerCounter()
		c.mem.IncrementDIV()
	}
}

func (c *CPU) clockEnabled() bool { return c.mem.ReadByte(memory.TAC)&0x04 != 0 }

// ResetDividerCounter implements memory.TimerControl for DIV writes,
// keeping any cycle overshoot.
func (c *CPU) ResetDividerCounter() {
	if c.dividerCounter > maxDividerCount {
		c.dividerCounter -= maxDividerCount
	} else {
		c.dividerCounter = 0
	}
}

// ClockFrequency implements memory.TimerControl.
func (c *CPU) ClockFrequency() byte { return c.mem.ReadByte(memory.TAC) & 0x03 }

// SetClockFrequency implements memory.TimerControl: it resets the TIMA
// counter (keeping overshoot) and reselects the clock threshold.
func (c *CPU) SetClockFrequency() {
	c.resetTimerCounter()
	c.clockSpeed = clockSpeeds[c.ClockFrequency()]
}

func (c *CPU) resetTimerCounter() {
	freq := clockSpeeds[c.ClockFrequency()]
	if c.timerCounter > freq {
		c.timerCounter -= freq
	} else {
		c.timerCounter = 0
	}
}

// ---- register pairs ----

func (c *CPU) af() uint16 { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

// setAF masks the low nibble of F; those bits do not exist in hardware.
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

// ---- flags ----

func (c *CPU) zf() bool { return c.F&flagZ != 0 }
func (c *CPU) nf() bool { return c.F&flagN != 0 }
func (c *CPU) hf() bool { return c.F&flagH != 0 }
func (c *CPU) cf() bool { return c.F&flagC != 0 }

func (c *CPU) setFlag(mask byte, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *CPU) setZ(v bool) { c.setFlag(flagZ, v) }
func (c *CPU) setN(v bool) { c.setFlag(flagN, v) }
func (c *CPU) setH(v bool) { c.setFlag(flagH, v) }
func (c *CPU) setC(v bool) { c.setFlag(flagC, v) }

// ---- memory access ----

func (c *CPU) read8(addr uint16) byte     { return c.mem.ReadByte(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mem.WriteByte(addr, v) }
func (c *CPU) read16(addr uint16) uint16  { return c.mem.ReadWord(addr) }
func (c *CPU) write16(addr uint16, v uint16) {
	c.mem.WriteWord(addr, v)
}

func (c *CPU) fetch8() byte {
	v := c.read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) push(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}
