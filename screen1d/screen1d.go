// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen1d implements a 1D display.Drawer that outputs to terminal
// (stdout) using ANSI color codes.
//
// Gauge turns the strip into a bar graph, which is how the htu21d command
// shows humidity and temperature.
package screen1d

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	X       int
	Palette *ansi256.Palette
	// W receives the escape sequences. Default is a colorable stdout.
	W io.Writer

	_ struct{}
}

// Dev is a 1D LED strip emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette

	pixels []color.NRGBA
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		pixels:  make([]color.NRGBA, opts.X),
	}
}

func (d *Dev) String() string {
	return "Screen1D"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not left corrupted.
func (d *Dev) Halt() error {
	_, err := io.WriteString(d.w, "\n\033[0m")
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("screen1d: invalid RGB stream length")
	}
	for i := 0; i < len(d.pixels) && 3*i < len(pixels); i++ {
		d.pixels[i] = color.NRGBA{pixels[3*i], pixels[3*i+1], pixels[3*i+2], 255}
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Gauge lights the fraction of the strip that v covers between lo and hi
// with on, and the rest with off. Values outside the range are clamped.
func (d *Dev) Gauge(v, lo, hi float64, on, off color.NRGBA) error {
	if hi <= lo {
		return fmt.Errorf("screen1d: invalid gauge range [%g, %g]", lo, hi)
	}
	f := (v - lo) / (hi - lo)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	lit := int(f*float64(len(d.pixels)) + 0.5)
	for i := range d.pixels {
		if i < lit {
			d.pixels[i] = on
		} else {
			d.pixels[i] = off
		}
	}
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: len(d.pixels), Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	for x := r.Min.X; x < r.Max.X; x++ {
		c := color.NRGBAModel.Convert(src.At(sp.X+x-r.Min.X, sp.Y)).(color.NRGBA)
		d.pixels[x] = c
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// Reuse the buffer to keep allocations per frame down.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for _, c := range d.pixels {
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
