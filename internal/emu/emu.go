// Package emu binds cartridge, memory, CPU and PPU into the host-facing
// emulator: a frame-advance entry point, key notifications, ROM loading
// and a color-scheme selector.
package emu

import (
	"errors"

	"github.com/cespare/xxhash"
	"github.com/sirupsen/logrus"

	"gbgo/internal/cart"
	"gbgo/internal/cpu"
	"gbgo/internal/memory"
	"gbgo/internal/ppu"
)

// FPS is the display refresh rate the host should drive Frame at.
const FPS = 60

// ErrNoCartridge is returned when powering on or running without a ROM.
var ErrNoCartridge = errors.New("no cartridge loaded")

// Key identifies a joypad key. Values match the joypad register bit
// layout: bits 0-3 are the direction pad, bits 4-7 the buttons.
type Key byte

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

var keyNames = [8]string{"RIGHT", "LEFT", "UP", "DOWN", "A", "B", "SELECT", "START"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "UNKNOWN"
}

func (k Key) directional() bool { return k <= KeyDown }

// Config carries host settings for a new GameBoy.
type Config struct {
	SkipBIOS    bool
	ColorScheme int
	Log         *logrus.Logger
}

// GameBoy owns exactly one Cartridge, Memory, CPU and PPU.
type GameBoy struct {
	cart *cart.Cartridge
	mem  *memory.Memory
	cpu  *cpu.CPU
	ppu  *ppu.PPU

	log      *logrus.Logger
	scheme   int
	skipBIOS bool
}

// New creates an emulator shell; a cartridge must be loaded before
// powering on.
func New(cfg Config) (*GameBoy, error) {
	if cfg.ColorScheme < 0 || cfg.ColorScheme > 9 {
		return nil, ppu.ErrBadColorScheme
	}
	log := cfg.Log
	if log == nil {
		log = defaultLogger()
	}
	return &GameBoy{
		log:      log,
		scheme:   cfg.ColorScheme,
		skipBIOS: cfg.SkipBIOS,
	}, nil
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// Load reads a ROM file and wires the subsystems around it.
func (gb *GameBoy) Load(path string) error {
	c, err := cart.Load(path)
	if err != nil {
		return err
	}
	gb.attach(c)
	return nil
}

// LoadROM wires the subsystems around an in-memory ROM image.
func (gb *GameBoy) LoadROM(data []byte) error {
	c, err := cart.New(data)
	if err != nil {
		return err
	}
	gb.attach(c)
	return nil
}

func (gb *GameBoy) attach(c *cart.Cartridge) {
	gb.cart = c
	gb.mem = memory.New(c)
	gb.cpu = cpu.New(gb.mem)
	gb.mem.AttachTimer(gb.cpu)
	gb.ppu = ppu.New(gb.mem, gb.mem)
	_ = gb.ppu.UseColorScheme(gb.scheme)

	h := c.Header()
	gb.log.Infof("cartridge %q mapper=%s rom=%dKiB version=%d",
		c.Title(), c.Mapper(), c.ROMSize()/1024, h.Version)
}

// PowerOn resets memory, PPU and CPU. With skipBIOS the CPU starts at
// 0x100 with the documented post-BIOS register values; otherwise it runs
// the built-in BIOS from 0x0.
func (gb *GameBoy) PowerOn(skipBIOS bool) error {
	if gb.cart == nil {
		return ErrNoCartridge
	}
	gb.skipBIOS = skipBIOS
	gb.mem.Reset(skipBIOS)
	gb.ppu.Reset()
	if skipBIOS {
		gb.cpu.Reset(0x100)
	} else {
		gb.cpu.Reset(0x0)
	}
	gb.log.Infof("power on skip_bios=%v scheme=%q", skipBIOS, ppu.ColorSchemeNames[gb.scheme])
	return nil
}

// Frame runs CPU instructions until the per-frame cycle budget is spent,
// ticking the PPU after each one. The framebuffer holds the finished
// frame when it returns.
func (gb *GameBoy) Frame() error {
	if gb.cart == nil {
		return ErrNoCartridge
	}
	for gb.cpu.CanExecute() {
		cycles, err := gb.cpu.Step()
		if err != nil {
			return err
		}
		gb.ppu.Update(cycles)
	}
	return nil
}

// KeyPressed marks a key down and requests a joypad interrupt when the
// key's row is selected and the key was previously up.
func (gb *GameBoy) KeyPressed(k Key) {
	wasUp := gb.mem.JoypadState()&(1<<k) != 0
	gb.mem.ClearJoypadState(byte(k))

	sel := gb.mem.JoypadSelect()
	var rowSelected bool
	if k.directional() {
		rowSelected = sel&(1<<4) == 0
	} else {
		rowSelected = sel&(1<<5) == 0
	}
	if rowSelected && wasUp {
		gb.mem.RequestInterrupt(memory.IntJoypad)
	}
}

// KeyReleased marks a key up.
func (gb *GameBoy) KeyReleased(k Key) {
	gb.mem.SetJoypadState(byte(k))
}

// UseColorScheme selects one of the ten palettes for subsequent frames.
func (gb *GameBoy) UseColorScheme(scheme int) error {
	if gb.ppu != nil {
		if err := gb.ppu.UseColorScheme(scheme); err != nil {
			return err
		}
	} else if scheme < 0 || scheme > 9 {
		return ppu.ErrBadColorScheme
	}
	gb.scheme = scheme
	return nil
}

// Framebuffer exposes the 160x144 RGB screen.
func (gb *GameBoy) Framebuffer() *[ppu.Height][ppu.Width][3]byte {
	return gb.ppu.Framebuffer()
}

// FrameHash digests the framebuffer; two deterministic runs produce equal
// hashes after every frame.
func (gb *GameBoy) FrameHash() uint64 {
	d := xxhash.New()
	fb := gb.ppu.Framebuffer()
	for y := range fb {
		for x := range fb[y] {
			_, _ = d.Write(fb[y][x][:])
		}
	}
	return d.Sum64()
}

// Title returns the loaded cartridge's title, or "" before Load.
func (gb *GameBoy) Title() string {
	if gb.cart == nil {
		return ""
	}
	return gb.cart.Title()
}

// CPU exposes the processor for tools and tests.
func (gb *GameBoy) CPU() *cpu.CPU { return gb.cpu }

// Memory exposes the MMU for tools and tests.
func (gb *GameBoy) Memory() *memory.Memory { return gb.mem }
