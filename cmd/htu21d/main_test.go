// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunFake(t *testing.T) {
	png := filepath.Join(t.TempDir(), "plot.png")
	cfg := config{res: 13, interval: time.Millisecond, count: 2, png: png, fake: true}
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), &cfg, &out, logger); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "Resolution set to 13bit\n") {
		t.Errorf("unexpected output %q", s)
	}
	if strings.Count(s, "Humidity: 47.98 %\nTemperature: 24.69 °C\n") != 2 {
		t.Errorf("unexpected output %q", s)
	}
	if fi, err := os.Stat(png); err != nil || fi.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}

func TestRunGauge(t *testing.T) {
	cfg := config{res: 99, interval: time.Millisecond, count: 1, gauge: 10, fake: true, strict: true}
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), &cfg, &out, logger); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "Resolution set to 14bit\n") || !strings.Contains(s, " 47.98%  24.69°C") {
		t.Errorf("unexpected output %q", s)
	}
}

func TestConfigValidate(t *testing.T) {
	var tests = []struct {
		cfg   config
		valid bool
	}{
		{cfg: config{addr: 0x40, res: 14, interval: time.Second}, valid: true},
		{cfg: config{addr: 0x7f, res: 11, interval: time.Second}, valid: true},
		{cfg: config{addr: 0x80, res: 14, interval: time.Second}},
		{cfg: config{addr: 0x10040, res: 14, interval: time.Second}},
		{cfg: config{addr: 0x40, res: 0x100, interval: time.Second}},
		{cfg: config{addr: 0x40, res: 14}},
	}
	for _, test := range tests {
		if err := test.cfg.validate(); (err == nil) != test.valid {
			t.Errorf("%+v: validate() = %v", test.cfg, err)
		}
	}
}

func TestRunRejectsInvalidAddress(t *testing.T) {
	// The address is checked before the host is initialized.
	cfg := config{addr: 0x140, res: 14, interval: time.Millisecond, count: 1}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), &cfg, io.Discard, logger); err == nil || !strings.Contains(err.Error(), "invalid I²C address") {
		t.Errorf("run() = %v", err)
	}
}

func TestPlotEmpty(t *testing.T) {
	if err := plot(filepath.Join(t.TempDir(), "x.png"), nil); err == nil {
		t.Error("expected error without readings")
	}
}
