// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen1d

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func TestGauge(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 10, W: &out})
	if err := d.Gauge(40, 0, 100, red, black); err != nil {
		t.Fatal(err)
	}
	for i, c := range d.pixels {
		if expected := i < 4; (c == red) != expected {
			t.Errorf("pixel %d = %v", i, c)
		}
	}
	if !strings.HasPrefix(out.String(), "\r\033[0m") || !strings.HasSuffix(out.String(), "\033[0m ") {
		t.Errorf("unexpected output %q", out.String())
	}
	if err := d.Gauge(150, 0, 100, red, black); err != nil {
		t.Fatal(err)
	}
	if d.pixels[9] != red {
		t.Error("value above range not clamped")
	}
	if err := d.Gauge(1, 5, 5, red, black); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestWriteDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 2, W: &out})
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Error("expected error for partial pixel")
	}
	if n, err := d.Write([]byte{255, 0, 0, 0, 0, 0}); err != nil || n != 6 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if d.pixels[0] != red || d.pixels[1] != black {
		t.Errorf("pixels %v", d.pixels)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, red)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if d.pixels[0] != (color.NRGBA{}) || d.pixels[1] != red {
		t.Errorf("pixels %v", d.pixels)
	}
	if d.Bounds().Dx() != 2 || d.String() != "Screen1D" {
		t.Error("unexpected bounds or name")
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}
