// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the fixed I²C address of the sensor.
const DefaultAddress uint16 = 0x40

const (
	cmdTriggerHumidity    byte = 0xf5 // no hold master
	cmdTriggerTemperature byte = 0xf3 // no hold master
	cmdWriteUserRegister  byte = 0xe6
	cmdReadUserRegister   byte = 0xe7
	cmdSoftReset          byte = 0xfe

	humidityDelay    = 20 * time.Millisecond
	temperatureDelay = 50 * time.Millisecond
	resetDelay       = 15 * time.Millisecond

	minSampleDuration = humidityDelay + temperatureDelay
)

// Policy selects how failures inside Read and Write are reported.
type Policy int

const (
	// BestEffort absorbs bus and CRC failures. Read leaves the bytes of a
	// failed measurement untouched and returns nil; Write always succeeds.
	BestEffort Policy = iota
	// Strict returns bus and CRC failures from Read after delivering the
	// valid part of the frame, and makes Write fail unless the read back
	// register matches what was written.
	Strict
)

func (p Policy) String() string {
	switch p {
	case BestEffort:
		return "best-effort"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Policy controls error reporting of Read and Write. Default is
	// BestEffort.
	Policy Policy
	// Sleep waits for a conversion to finish. Default is time.Sleep.
	Sleep func(time.Duration)
	// Logger receives diagnostics. Default is slog.Default().
	Logger *slog.Logger
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Policy: BestEffort,
}

// Dev is a handle to an HTU21D sensor.
type Dev struct {
	c      conn.Conn
	policy Policy
	sleep  func(time.Duration)
	log    *slog.Logger

	// bus serializes transaction sequences of this Dev, including the ones
	// of the SenseContinuous goroutine.
	bus sync.Mutex

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a Dev talking over c. Every Tx on c is a single bus
// transaction with the sensor. The Opts can be nil.
func New(c conn.Conn, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{c: c, policy: opts.Policy, sleep: opts.Sleep, log: opts.Logger}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

// NewI2C returns a Dev for the sensor at addr on b. The Opts can be nil.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr > 0x7f {
		return nil, fmt.Errorf("htu21d: invalid I²C address 0x%x", addr)
	}
	return New(&i2c.Dev{Bus: b, Addr: addr}, opts), nil
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("htu21d{%s}", d.c)
}

// Reset issues a soft reset. The user register returns to its power on
// value except for the heater bit.
func (d *Dev) Reset() error {
	d.bus.Lock()
	defer d.bus.Unlock()
	if err := d.c.Tx([]byte{cmdSoftReset}, nil); err != nil {
		return newBusError(opSend, cmdSoftReset, err)
	}
	d.sleep(resetDelay)
	return nil
}

// Sense implements physic.SenseEnv. Pressure is always 0. Unlike Read, a
// failed humidity or temperature measurement is always returned as an error.
func (d *Dev) Sense(e *physic.Env) error {
	e.Pressure = 0
	h, t := d.Acquire()
	if err := errors.Join(h.Err, t.Err); err != nil {
		return err
	}
	e.Humidity = RawToHumidity(h.Raw)
	e.Temperature = RawToTemperature(t.Raw)
	return nil
}

// SenseContinuous implements physic.SenseEnv. Failed measurements are
// skipped. Call Halt to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < minSampleDuration {
		return nil, fmt.Errorf("htu21d: sample interval %s is shorter than the %s conversion time", interval, minSampleDuration)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("htu21d: SenseContinuous already running")
	}
	d.stop = make(chan struct{})
	ch := make(chan physic.Env, 16)
	d.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer d.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					d.log.Debug("htu21d: skipping sample", "err", err)
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}(d.stop)
	return ch, nil
}

// Halt implements conn.Resource. It stops SenseContinuous if running.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.wg.Wait()
	d.stop = nil
	return nil
}

// Precision implements physic.SenseEnv. It reports the 14 bit temperature
// and 12 bit humidity resolution.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Humidity = physic.PercentRH / 25
	e.Pressure = 0
}

// RawToHumidity converts a raw humidity word to relative humidity. The two
// status bits are cleared first. The result is not clipped to 0-100%.
func RawToHumidity(raw uint16) physic.RelativeHumidity {
	// RH = -6 + 125 * raw / 2^16
	rh := -6.0 + 125.0*float64(raw&statusMask)/65536.0
	return physic.RelativeHumidity(rh * float64(physic.PercentRH))
}

// RawToTemperature converts a raw temperature word. The two status bits are
// cleared first.
func RawToTemperature(raw uint16) physic.Temperature {
	// T = -46.85 + 175.72 * raw / 2^16
	c := -46.85 + 175.72*float64(raw&statusMask)/65536.0
	return physic.Temperature(c*float64(physic.Kelvin)) + physic.ZeroCelsius
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
