// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// htu21d sets the resolution of an HTU21D sensor, then reads humidity and
// temperature until interrupted.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/htu21d/htu21d"
	"github.com/GermanBionicSystems/htu21d/htu21d/devnode"
	"github.com/GermanBionicSystems/htu21d/htu21d/htu21dtest"
	"github.com/GermanBionicSystems/htu21d/screen1d"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type config struct {
	bus      string
	addr     uint
	res      uint
	interval time.Duration
	count    int
	gauge    int
	png      string
	strict   bool
	fake     bool
}

func (cfg *config) validate() error {
	if cfg.addr > 0x7f {
		return fmt.Errorf("invalid I²C address 0x%x", cfg.addr)
	}
	if cfg.res > 0xff {
		return fmt.Errorf("invalid resolution %d", cfg.res)
	}
	if cfg.interval <= 0 {
		return errors.New("-interval must be positive")
	}
	return nil
}

type sample struct {
	at          time.Time
	humidity    float64
	temperature float64
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(colorable.NewColorableStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func open(cfg *config, logger *slog.Logger) (conn.Conn, func() error, error) {
	if cfg.fake {
		return htu21dtest.New(0x6e8c, 0x683a), func() error { return nil }, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	bus, err := i2creg.Open(cfg.bus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I²C: %w", err)
	}
	logger.Debug("opened bus", "bus", bus.String())
	return &i2c.Dev{Bus: bus, Addr: uint16(cfg.addr)}, bus.Close, nil
}

func run(ctx context.Context, cfg *config, w io.Writer, logger *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	c, closeBus, err := open(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBus()

	opts := htu21d.Opts{Logger: logger}
	if cfg.strict {
		opts.Policy = htu21d.Strict
	}
	if s, ok := c.(*htu21dtest.Sensor); ok {
		opts.Sleep = s.Sleep
	}
	node, err := devnode.Attach("i2c-htu21d", c, &opts)
	if err != nil {
		return err
	}
	defer node.Detach()
	h, err := node.Open()
	if err != nil {
		return err
	}
	defer h.Close()

	if _, err := h.Write([]byte{byte(cfg.res)}); err != nil {
		return err
	}
	fmt.Fprintf(w, "Resolution set to %s\n", htu21d.Resolution(cfg.res).Effective())

	var gauge *screen1d.Dev
	if cfg.gauge > 0 {
		gauge = screen1d.New(&screen1d.Opts{X: cfg.gauge, W: w})
		defer gauge.Halt()
	}

	var samples []sample
	frame := make([]byte, htu21d.FrameSize)
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()
	for cfg.count <= 0 || len(samples) < cfg.count {
		if _, err := h.Read(frame); err != nil {
			if errors.Is(err, htu21d.ErrCopyFault) || errors.Is(err, devnode.ErrDetached) {
				return err
			}
			// Only returned in strict mode.
			logger.Warn("measurement failed", "err", err)
		} else {
			s := sample{
				at:          time.Now(),
				humidity:    float64(htu21d.RawToHumidity(binary.BigEndian.Uint16(frame[0:2]))) / float64(physic.PercentRH),
				temperature: htu21d.RawToTemperature(binary.BigEndian.Uint16(frame[2:4])).Celsius(),
			}
			samples = append(samples, s)
			if gauge != nil {
				if err := gauge.Gauge(s.humidity, 0, 100, color.NRGBA{B: 255, A: 255}, color.NRGBA{A: 255}); err != nil {
					return err
				}
				fmt.Fprintf(w, "%6.2f%% %6.2f°C", s.humidity, s.temperature)
			} else {
				fmt.Fprintf(w, "Humidity: %.2f %%\nTemperature: %.2f °C\n\n", s.humidity, s.temperature)
			}
		}
		select {
		case <-ctx.Done():
			return finish(cfg, samples)
		case <-ticker.C:
		}
	}
	return finish(cfg, samples)
}

func finish(cfg *config, samples []sample) error {
	if cfg.png == "" {
		return nil
	}
	return plot(cfg.png, samples)
}

func mainImpl() error {
	cfg := config{}
	flag.StringVar(&cfg.bus, "bus", "", "I²C bus to use")
	flag.UintVar(&cfg.addr, "addr", uint(htu21d.DefaultAddress), "I²C address of the sensor")
	flag.UintVar(&cfg.res, "res", uint(htu21d.Res14), "temperature resolution in bits: 11, 12, 13 or 14")
	flag.DurationVar(&cfg.interval, "interval", 2*time.Second, "time between readings")
	flag.IntVar(&cfg.count, "n", 0, "number of readings, 0 reads until interrupted")
	flag.IntVar(&cfg.gauge, "gauge", 0, "draw humidity as a bar of this many cells")
	flag.StringVar(&cfg.png, "png", "", "plot the readings to this PNG file on exit")
	flag.BoolVar(&cfg.strict, "strict", false, "report bus and CRC failures and unconfirmed register writes")
	flag.BoolVar(&cfg.fake, "fake", false, "use a simulated sensor")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, &cfg, os.Stdout, logger)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "htu21d: %s.\n", err)
		os.Exit(1)
	}
}
