// Package ui is the host window: an ebiten surface presenting the
// emulator framebuffer and feeding keyboard state into the joypad.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gbgo/internal/emu"
	"gbgo/internal/ppu"
)

// Config holds window settings.
type Config struct {
	Title string
	Scale int
}

// keyBindings maps host keys onto joypad keys: arrows for the pad, X/Z
// for A/B, Enter/Backspace for Start/Select.
var keyBindings = map[ebiten.Key]emu.Key{
	ebiten.KeyArrowRight: emu.KeyRight,
	ebiten.KeyArrowLeft:  emu.KeyLeft,
	ebiten.KeyArrowUp:    emu.KeyUp,
	ebiten.KeyArrowDown:  emu.KeyDown,
	ebiten.KeyX:          emu.KeyA,
	ebiten.KeyZ:          emu.KeyB,
	ebiten.KeyBackspace:  emu.KeySelect,
	ebiten.KeyEnter:      emu.KeyStart,
}

// App drives one GameBoy at the display refresh rate.
type App struct {
	cfg Config
	gb  *emu.GameBoy

	tex *ebiten.Image
	pix []byte // RGBA staging for WritePixels
}

func NewApp(cfg Config, gb *emu.GameBoy) *App {
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	title := cfg.Title
	if t := gb.Title(); t != "" {
		title += " - [" + t + "]"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(ppu.Width*cfg.Scale, ppu.Height*cfg.Scale)
	return &App{
		cfg: cfg,
		gb:  gb,
		tex: ebiten.NewImage(ppu.Width, ppu.Height),
		pix: make([]byte, ppu.Width*ppu.Height*4),
	}
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for hostKey, joyKey := range keyBindings {
		if inpututil.IsKeyJustPressed(hostKey) {
			a.gb.KeyPressed(joyKey)
		}
		if inpututil.IsKeyJustReleased(hostKey) {
			a.gb.KeyReleased(joyKey)
		}
	}
	// Digit keys switch the color scheme live.
	for i := 0; i <= 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.KeyDigit0 + ebiten.Key(i)) {
			_ = a.gb.UseColorScheme(i)
		}
	}

	if err := a.gb.Frame(); err != nil {
		return err
	}

	fb := a.gb.Framebuffer()
	i := 0
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			a.pix[i+0] = fb[y][x][0]
			a.pix[i+1] = fb[y][x][1]
			a.pix[i+2] = fb[y][x][2]
			a.pix[i+3] = 0xFF
			i += 4
		}
	}
	a.tex.WritePixels(a.pix)
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width, ppu.Height
}

// Run blocks until the window closes or the emulator fails.
func (a *App) Run() error {
	ebiten.SetTPS(emu.FPS)
	if err := ebiten.RunGame(a); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
