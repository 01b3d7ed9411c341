package cpu

// executeCB runs a CB-prefixed instruction. The CB page is fully regular:
// the top bits select the operation, the low three bits the operand.
func (c *CPU) executeCB() int {
	op := c.fetch8()
	reg := op & 7
	n := (op >> 3) & 7

	switch {
	case op < 0x40: // rotates, shifts, SWAP
		v := c.regRead8(reg)
		switch op >> 3 {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		case 7:
			v = c.srl(v)
		}
		c.regWrite8(reg, v)
	case op < 0x80: // BIT n,r
		c.bit(c.regRead8(reg), n)
	case op < 0xC0: // RES n,r
		c.regWrite8(reg, c.regRead8(reg)&^(1<<n))
	default: // SET n,r
		c.regWrite8(reg, c.regRead8(reg)|1<<n)
	}

	return cbCyclesTable[op]
}
