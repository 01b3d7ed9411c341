package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gbgo/internal/emu"
	"gbgo/internal/ppu"
	"gbgo/internal/ui"
)

type cliFlags struct {
	ROMPath  string
	Scale    int
	Scheme   int
	SkipBIOS bool
	Title    string

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer xxhash (hex)
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb, .zip, .gz, .7z)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale (1-4)")
	flag.IntVar(&f.Scheme, "scheme", 0, "color scheme (0-9)")
	flag.BoolVar(&f.SkipBIOS, "skip-bios", false, "start at 0x100 with post-BIOS state")
	flag.StringVar(&f.Title, "title", "gbgo", "window title")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer xxhash (hex)")
	flag.Parse()
	return f
}

func newLogger() *logrus.Logger {
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

func runHeadless(log *logrus.Logger, gb *emu.GameBoy, frames int, pngPath, expect string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := gb.Frame(); err != nil {
			return err
		}
	}
	dur := time.Since(start)

	hash := gb.FrameHash()
	fps := float64(frames) / dur.Seconds()
	log.Infof("headless: frames=%d elapsed=%s fps=%.2f fb_xxhash=%016x",
		frames, dur.Truncate(time.Millisecond), fps, hash)

	if pngPath != "" {
		if err := saveFramePNG(gb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Infof("wrote %s", pngPath)
	}

	if expect != "" {
		want, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(expect), "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad -expect value %q: %w", expect, err)
		}
		if hash != want {
			return fmt.Errorf("framebuffer hash mismatch: got %016x, want %016x", hash, want)
		}
	}
	return nil
}

func saveFramePNG(gb *emu.GameBoy, path string) error {
	fb := gb.Framebuffer()
	img := image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height))
	i := 0
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			img.Pix[i+0] = fb[y][x][0]
			img.Pix[i+1] = fb[y][x][1]
			img.Pix[i+2] = fb[y][x][2]
			img.Pix[i+3] = 0xFF
			i += 4
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	log := newLogger()

	if f.ROMPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	gb, err := emu.New(emu.Config{
		SkipBIOS:    f.SkipBIOS,
		ColorScheme: f.Scheme,
		Log:         log,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := gb.Load(f.ROMPath); err != nil {
		log.Fatal(err)
	}
	if err := gb.PowerOn(f.SkipBIOS); err != nil {
		log.Fatal(err)
	}

	if f.Headless {
		if err := runHeadless(log, gb, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale}, gb)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
