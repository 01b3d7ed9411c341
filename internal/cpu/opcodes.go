package cpu

// regRead8 reads the register selected by a 3-bit operand field; index 6
// is the memory operand (HL).
func (c *CPU) regRead8(idx byte) byte {
	switch idx & 7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.hl())
	default:
		return c.A
	}
}

func (c *CPU) regWrite8(idx byte, v byte) {
	switch idx & 7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.hl(), v)
	default:
		c.A = v
	}
}

// execute runs a single instruction and returns its cycle cost.
func (c *CPU) execute() (int, error) {
	op := c.fetch8()

	// The 0x40-0xBF block is fully regular: LD r,r' and the eight ALU
	// groups, with the operand encoded in the low three bits.
	if op >= 0x40 && op <= 0x7F && op != 0x76 {
		c.regWrite8(op>>3, c.regRead8(op))
		return cyclesTable[op], nil
	}
	if op >= 0x80 && op <= 0xBF {
		v := c.regRead8(op)
		switch (op >> 3) & 7 {
		case 0:
			c.add(v)
		case 1:
			c.adc(v)
		case 2:
			c.sub(v)
		case 3:
			c.sbc(v)
		case 4:
			c.and(v)
		case 5:
			c.xor(v)
		case 6:
			c.or(v)
		case 7:
			c.cp(v)
		}
		return cyclesTable[op], nil
	}

	cycles := cyclesTable[op]

	switch op {
	case 0x00: // NOP
	case 0x10: // STOP
		c.PC++

	// 16-bit loads
	case 0x01: // LD BC,d16
		c.setBC(c.fetch16())
	case 0x11: // LD DE,d16
		c.setDE(c.fetch16())
	case 0x21: // LD HL,d16
		c.setHL(c.fetch16())
	case 0x31: // LD SP,d16
		c.SP = c.fetch16()
	case 0x08: // LD (a16),SP
		c.write16(c.fetch16(), c.SP)
	case 0xF9: // LD SP,HL
		c.SP = c.hl()
	case 0xF8: // LD HL,SP+e
		c.setHL(c.addSPRel(c.SP, c.fetch8()))
	case 0xE8: // ADD SP,e
		c.SP = c.addSPRel(c.SP, c.fetch8())

	// 8-bit immediate loads
	case 0x06:
		c.B = c.fetch8()
	case 0x0E:
		c.C = c.fetch8()
	case 0x16:
		c.D = c.fetch8()
	case 0x1E:
		c.E = c.fetch8()
	case 0x26:
		c.H = c.fetch8()
	case 0x2E:
		c.L = c.fetch8()
	case 0x3E:
		c.A = c.fetch8()
	case 0x36: // LD (HL),d8
		c.write8(c.hl(), c.fetch8())

	// A <-> memory
	case 0x02:
		c.write8(c.bc(), c.A)
	case 0x12:
		c.write8(c.de(), c.A)
	case 0x0A:
		c.A = c.read8(c.bc())
	case 0x1A:
		c.A = c.read8(c.de())
	case 0x22: // LD (HL+),A
		c.write8(c.hl(), c.A)
		c.setHL(c.hl() + 1)
	case 0x2A: // LD A,(HL+)
		c.A = c.read8(c.hl())
		c.setHL(c.hl() + 1)
	case 0x32: // LD (HL-),A
		c.write8(c.hl(), c.A)
		c.setHL(c.hl() - 1)
	case 0x3A: // LD A,(HL-)
		c.A = c.read8(c.hl())
		c.setHL(c.hl() - 1)
	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
	case 0xE0: // LDH (a8),A
		c.mem.WriteHi(c.fetch8(), c.A)
	case 0xF0: // LDH A,(a8)
		c.A = c.mem.ReadHi(c.fetch8())
	case 0xE2: // LDH (C),A
		c.mem.WriteHi(c.C, c.A)
	case 0xF2: // LDH A,(C)
		c.A = c.mem.ReadHi(c.C)

	// INC/DEC r
	case 0x04:
		c.B = c.inc(c.B)
	case 0x0C:
		c.C = c.inc(c.C)
	case 0x14:
		c.D = c.inc(c.D)
	case 0x1C:
		c.E = c.inc(c.E)
	case 0x24:
		c.H = c.inc(c.H)
	case 0x2C:
		c.L = c.inc(c.L)
	case 0x3C:
		c.A = c.inc(c.A)
	case 0x34:
		c.write8(c.hl(), c.inc(c.read8(c.hl())))
	case 0x05:
		c.B = c.dec(c.B)
	case 0x0D:
		c.C = c.dec(c.C)
	case 0x15:
		c.D = c.dec(c.D)
	case 0x1D:
		c.E = c.dec(c.E)
	case 0x25:
		c.H = c.dec(c.H)
	case 0x2D:
		c.L = c.dec(c.L)
	case 0x3D:
		c.A = c.dec(c.A)
	case 0x35:
		c.write8(c.hl(), c.dec(c.read8(c.hl())))

	// 16-bit INC/DEC and ADD HL,rr
	case 0x03:
		c.setBC(c.bc() + 1)
	case 0x13:
		c.setDE(c.de() + 1)
	case 0x23:
		c.setHL(c.hl() + 1)
	case 0x33:
		c.SP++
	case 0x0B:
		c.setBC(c.bc() - 1)
	case 0x1B:
		c.setDE(c.de() - 1)
	case 0x2B:
		c.setHL(c.hl() - 1)
	case 0x3B:
		c.SP--
	case 0x09:
		c.addHL(c.bc())
	case 0x19:
		c.addHL(c.de())
	case 0x29:
		c.addHL(c.hl())
	case 0x39:
		c.addHL(c.SP)

	// ALU immediate
	case 0xC6:
		c.add(c.fetch8())
	case 0xCE:
		c.adc(c.fetch8())
	case 0xD6:
		c.sub(c.fetch8())
	case 0xDE:
		c.sbc(c.fetch8())
	case 0xE6:
		c.and(c.fetch8())
	case 0xEE:
		c.xor(c.fetch8())
	case 0xF6:
		c.or(c.fetch8())
	case 0xFE:
		c.cp(c.fetch8())

	// Accumulator rotates force Z clear.
	case 0x07: // RLCA
		c.A = c.rlc(c.A)
		c.setZ(false)
	case 0x0F: // RRCA
		c.A = c.rrc(c.A)
		c.setZ(false)
	case 0x17: // RLA
		c.A = c.rl(c.A)
		c.setZ(false)
	case 0x1F: // RRA
		c.A = c.rr(c.A)
		c.setZ(false)

	case 0x27: // DAA
		c.daa()
	case 0x2F: // CPL
		c.A = ^c.A
		c.setN(true)
		c.setH(true)
	case 0x37: // SCF
		c.setC(true)
		c.setN(false)
		c.setH(false)
	case 0x3F: // CCF
		c.setC(!c.cf())
		c.setN(false)
		c.setH(false)

	// Jumps
	case 0x18: // JR e
		c.jr(true)
	case 0x20:
		if c.jr(!c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0x28:
		if c.jr(c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0x30:
		if c.jr(!c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0x38:
		if c.jr(c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xC3: // JP a16
		c.jp(true)
	case 0xE9: // JP HL
		c.PC = c.hl()
	case 0xC2:
		if c.jp(!c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xCA:
		if c.jp(c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xD2:
		if c.jp(!c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xDA:
		if c.jp(c.cf()) {
			cycles = cyclesBranchedTable[op]
		}

	// Calls and returns
	case 0xCD: // CALL a16
		c.call(true)
	case 0xC4:
		if c.call(!c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xCC:
		if c.call(c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xD4:
		if c.call(!c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xDC:
		if c.call(c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xC9: // RET
		c.ret(true)
	case 0xC0:
		if c.ret(!c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xC8:
		if c.ret(c.zf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xD0:
		if c.ret(!c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xD8:
		if c.ret(c.cf()) {
			cycles = cyclesBranchedTable[op]
		}
	case 0xD9: // RETI
		c.ret(true)
		c.IME = true
		c.pendingEI = false
		c.pendingDI = false

	// RST t
	case 0xC7:
		c.rst(0x00)
	case 0xCF:
		c.rst(0x08)
	case 0xD7:
		c.rst(0x10)
	case 0xDF:
		c.rst(0x18)
	case 0xE7:
		c.rst(0x20)
	case 0xEF:
		c.rst(0x28)
	case 0xF7:
		c.rst(0x30)
	case 0xFF:
		c.rst(0x38)

	// Stack
	case 0xC5:
		c.push(c.bc())
	case 0xD5:
		c.push(c.de())
	case 0xE5:
		c.push(c.hl())
	case 0xF5:
		c.push(c.af())
	case 0xC1:
		c.setBC(c.pop())
	case 0xD1:
		c.setDE(c.pop())
	case 0xE1:
		c.setHL(c.pop())
	case 0xF1:
		c.setAF(c.pop())

	case 0x76: // HALT
		if c.IME {
			c.halted = true
		}
	case 0xF3: // DI takes effect after the next instruction
		c.pendingDI = true
	case 0xFB: // EI takes effect after the next instruction
		c.pendingEI = true

	case 0xCB:
		return c.executeCB(), nil

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return 0, InvalidOpcodeError{Opcode: op, PC: c.PC - 1}
	}

	return cycles, nil
}
