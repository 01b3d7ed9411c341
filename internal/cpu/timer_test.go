package cpu

import (
	"testing"

	"gbgo/internal/memory"
)

func TestDIVIncrementsEvery256Cycles(t *testing.T) {
	c := newTestCPU(t, make([]byte, 0x100)) // NOP sled
	start := c.mem.ReadByte(memory.DIV)
	// 65 NOPs = 260 cycles, enough to cross the divider threshold once.
	for i := 0; i < 65; i++ {
		mustStep(t, c)
	}
	if got := c.mem.ReadByte(memory.DIV); got != start+1 {
		t.Fatalf("DIV got %02x want %02x", got, start+1)
	}
}

func TestTIMATicksAtSelectedFrequency(t *testing.T) {
	c := newTestCPU(t, make([]byte, 0x100))
	c.mem.WriteByte(memory.TAC, 0x05) // enabled, 16 cycles per tick
	c.mem.WriteByte(memory.TIMA, 0x00)

	for i := 0; i < 4; i++ { // 16 cycles
		mustStep(t, c)
	}
	if got := c.mem.ReadByte(memory.TIMA); got != 0x01 {
		t.Fatalf("TIMA got %02x want 01", got)
	}
}

func TestTIMADisabledDoesNotTick(t *testing.T) {
	c := newTestCPU(t, make([]byte, 0x100))
	c.mem.WriteByte(memory.TAC, 0x01) // frequency set, enable bit clear
	for i := 0; i < 16; i++ {
		mustStep(t, c)
	}
	if got := c.mem.ReadByte(memory.TIMA); got != 0 {
		t.Fatalf("TIMA ticked while disabled: %02x", got)
	}
}

func TestTIMAOverflowReloadsAndRequests(t *testing.T) {
	c := newTestCPU(t, make([]byte, 0x100))
	c.IME = false // keep the interrupt pending instead of servicing it
	c.mem.WriteByte(memory.TMA, 0xAA)
	c.mem.WriteByte(memory.TAC, 0x05)
	c.mem.WriteByte(memory.TIMA, 0xFF)

	for i := 0; i < 4; i++ {
		mustStep(t, c)
	}
	if got := c.mem.ReadByte(memory.TIMA); got != 0xAA {
		t.Fatalf("TIMA after overflow got %02x want AA (TMA)", got)
	}
	if c.mem.ReadByte(memory.IF)&(1<<2) == 0 {
		t.Fatalf("timer interrupt not requested on overflow")
	}
}

func TestFrameBudgetCarriesOvershoot(t *testing.T) {
	// Tight JR -2 loop, 12 cycles per iteration.
	code := []byte{0x18, 0xFE}
	c := newTestCPU(t, code)

	total := 0
	for c.CanExecute() {
		total += mustStep(t, c)
	}
	if total < 70224 || total >= 70224+12 {
		t.Fatalf("frame consumed %d cycles, want [70224, 70236)", total)
	}
	// The budget resets once the overshoot is carried.
	if !c.CanExecute() {
		t.Fatalf("budget should reopen for the next frame")
	}
}
