// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	plotWidth  = 640
	plotHeight = 320
	plotMargin = 30
)

// plot draws humidity (0-100%, blue) and temperature (-40-125°C, red) over
// the sample index and saves it as a PNG.
func plot(path string, samples []sample) error {
	if len(samples) == 0 {
		return errors.New("no readings to plot")
	}
	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	// Axes.
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(plotMargin, plotMargin, plotMargin, plotHeight-plotMargin)
	dc.DrawLine(plotMargin, plotHeight-plotMargin, plotWidth-plotMargin, plotHeight-plotMargin)
	dc.Stroke()

	series := []struct {
		r, g, b float64
		lo, hi  float64
		value   func(s sample) float64
	}{
		{0, 0, 1, 0, 100, func(s sample) float64 { return s.humidity }},
		{1, 0, 0, -40, 125, func(s sample) float64 { return s.temperature }},
	}
	for _, ser := range series {
		dc.SetRGB(ser.r, ser.g, ser.b)
		dc.SetLineWidth(2)
		for i, s := range samples {
			x, y := plotPoint(i, len(samples), ser.value(s), ser.lo, ser.hi)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	last := samples[len(samples)-1]
	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("%d readings, last %.2f%%RH %.2f°C at %s", len(samples), last.humidity, last.temperature, last.at.Format("15:04:05")), plotMargin, plotMargin-10)
	return dc.SavePNG(path)
}

func plotPoint(i, n int, v, lo, hi float64) (float64, float64) {
	w := float64(plotWidth - 2*plotMargin)
	h := float64(plotHeight - 2*plotMargin)
	x := float64(plotMargin)
	if n > 1 {
		x += w * float64(i) / float64(n-1)
	}
	f := (v - lo) / (hi - lo)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return x, float64(plotMargin) + h*(1-f)
}
