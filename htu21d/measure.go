// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import "time"

const (
	opSend    = "send"
	opReceive = "receive"

	// statusMask clears the two status bits of a raw word.
	statusMask uint16 = 0xfffc
)

// Reading is one raw measurement and the CRC received with it.
type Reading struct {
	Raw uint16
	CRC byte
	// Err is nil when Raw passed the CRC check. Otherwise it is a *BusError
	// or a *CRCError, and Raw and CRC hold whatever was received, if anything.
	Err error
}

// Valid reports whether the reading passed its CRC check.
func (r Reading) Valid() bool {
	return r.Err == nil
}

// Status returns the two status bits embedded in the raw word.
func (r Reading) Status() byte {
	return byte(r.Raw &^ statusMask)
}

type phase struct {
	name  string
	cmd   byte
	delay time.Duration
}

var (
	humidityPhase    = phase{name: "humidity", cmd: cmdTriggerHumidity, delay: humidityDelay}
	temperaturePhase = phase{name: "temperature", cmd: cmdTriggerTemperature, delay: temperatureDelay}
)

// Acquire measures humidity then temperature. The two measurements are
// independent: a failure of the first does not prevent the second. Nothing
// is retried.
func (d *Dev) Acquire() (humidity, temperature Reading) {
	d.bus.Lock()
	defer d.bus.Unlock()
	humidity = d.measure(humidityPhase)
	temperature = d.measure(temperaturePhase)
	return humidity, temperature
}

func (d *Dev) measure(p phase) Reading {
	if err := d.c.Tx([]byte{p.cmd}, nil); err != nil {
		return d.discard(p, Reading{Err: newBusError(opSend, p.cmd, err)})
	}
	d.sleep(p.delay)
	var r [3]byte
	if err := d.c.Tx(nil, r[:]); err != nil {
		return d.discard(p, Reading{Err: newBusError(opReceive, p.cmd, err)})
	}
	raw := uint16(r[0])<<8 | uint16(r[1])
	if !ValidateCRC(raw, r[2]) {
		return d.discard(p, Reading{Raw: raw, CRC: r[2], Err: &CRCError{Raw: raw, Got: r[2]}})
	}
	return Reading{Raw: raw, CRC: r[2]}
}

func (d *Dev) discard(p phase, r Reading) Reading {
	d.log.Debug("htu21d: measurement invalid", "phase", p.name, "err", r.Err)
	return r
}
