// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import (
	"fmt"
	"strconv"
)

// Resolution is the temperature resolution in bits. The humidity resolution
// follows from it.
type Resolution uint8

const (
	Res14 Resolution = 14 // 14 bit temperature, 12 bit humidity
	Res13 Resolution = 13 // 13 bit temperature, 10 bit humidity
	Res12 Resolution = 12 // 12 bit temperature, 8 bit humidity
	Res11 Resolution = 11 // 11 bit temperature, 11 bit humidity
)

// User register bits.
const (
	bitRes0             byte = 1 << 0
	bitDisableOTPReload byte = 1 << 1
	bitHeater           byte = 1 << 2
	bitEndOfBattery     byte = 1 << 6
	bitRes1             byte = 1 << 7

	resolutionMask = bitRes1 | bitRes0
)

// Effective returns r if the sensor supports it and Res14 otherwise.
func (r Resolution) Effective() Resolution {
	switch r {
	case Res13, Res12, Res11:
		return r
	default:
		return Res14
	}
}

// HumidityBits returns the humidity resolution paired with r.
func (r Resolution) HumidityBits() int {
	switch r.Effective() {
	case Res13:
		return 10
	case Res12:
		return 8
	case Res11:
		return 11
	default:
		return 12
	}
}

func (r Resolution) String() string {
	return strconv.Itoa(int(r)) + "bit"
}

func (r Resolution) bits() byte {
	switch r.Effective() {
	case Res13:
		return bitRes1
	case Res12:
		return bitRes0
	case Res11:
		return bitRes1 | bitRes0
	default:
		return 0
	}
}

// applyResolution returns reg with the resolution bits replaced. Every other
// bit is kept.
func applyResolution(reg byte, r Resolution) byte {
	return reg&^resolutionMask | r.bits()
}

// UserRegister is the sensor configuration byte.
type UserRegister byte

// Resolution decodes bits 7 and 0.
func (u UserRegister) Resolution() Resolution {
	switch byte(u) & resolutionMask {
	case bitRes1:
		return Res13
	case bitRes0:
		return Res12
	case bitRes1 | bitRes0:
		return Res11
	default:
		return Res14
	}
}

// Heater reports whether the on chip heater is enabled.
func (u UserRegister) Heater() bool {
	return byte(u)&bitHeater != 0
}

// OTPReloadDisabled reports whether the default settings are not reloaded
// from OTP before each measurement. It is set at power on.
func (u UserRegister) OTPReloadDisabled() bool {
	return byte(u)&bitDisableOTPReload != 0
}

// EndOfBattery reports whether the supply is below 2.25V.
func (u UserRegister) EndOfBattery() bool {
	return byte(u)&bitEndOfBattery != 0
}

func (u UserRegister) String() string {
	return fmt.Sprintf("0x%02x(%s heater=%t eob=%t)", byte(u), u.Resolution(), u.Heater(), u.EndOfBattery())
}

// ConfigReport describes one SetResolution call.
type ConfigReport struct {
	Requested Resolution
	Applied   Resolution
	Before    UserRegister
	Written   UserRegister
	// Attempted is true once the write transaction was accepted by the bus.
	Attempted bool
	// ReadBack is the register value read after the write. It is diagnostic
	// only; Confirmed tells whether it matched Written.
	ReadBack    UserRegister
	ReadBackErr error
	Confirmed   bool
}

// UserRegister reads the configuration byte.
func (d *Dev) UserRegister() (UserRegister, error) {
	d.bus.Lock()
	defer d.bus.Unlock()
	return d.userRegister()
}

func (d *Dev) userRegister() (UserRegister, error) {
	if err := d.c.Tx([]byte{cmdReadUserRegister}, nil); err != nil {
		return 0, newBusError(opSend, cmdReadUserRegister, err)
	}
	var r [1]byte
	if err := d.c.Tx(nil, r[:]); err != nil {
		return 0, newBusError(opReceive, cmdReadUserRegister, err)
	}
	return UserRegister(r[0]), nil
}

func (d *Dev) writeUserRegister(u UserRegister) error {
	if err := d.c.Tx([]byte{cmdWriteUserRegister, byte(u)}, nil); err != nil {
		return newBusError(opSend, cmdWriteUserRegister, err)
	}
	return nil
}

// SetResolution changes bits 7 and 0 of the user register and leaves the
// others alone. Unsupported values select Res14.
//
// The register is read back afterwards and the result recorded in the report,
// but a mismatch is not an error. An error is returned only when a
// transaction of the read-modify-write fails. If the first read fails the
// register is not written.
func (d *Dev) SetResolution(r Resolution) (ConfigReport, error) {
	d.bus.Lock()
	defer d.bus.Unlock()
	rep := ConfigReport{Requested: r, Applied: r.Effective()}
	before, err := d.userRegister()
	if err != nil {
		d.log.Warn("htu21d: reading configuration failed", "err", err)
		return rep, err
	}
	rep.Before = before
	d.log.Debug("htu21d: read configuration", "register", before)

	rep.Written = UserRegister(applyResolution(byte(before), rep.Applied))
	if err := d.writeUserRegister(rep.Written); err != nil {
		d.log.Warn("htu21d: writing configuration failed", "register", rep.Written, "err", err)
		return rep, err
	}
	rep.Attempted = true
	d.log.Debug("htu21d: wrote configuration", "register", rep.Written)

	rep.ReadBack, rep.ReadBackErr = d.userRegister()
	rep.Confirmed = rep.ReadBackErr == nil && rep.ReadBack == rep.Written
	if rep.ReadBackErr != nil {
		d.log.Warn("htu21d: configuration read back failed", "err", rep.ReadBackErr)
	} else {
		d.log.Debug("htu21d: read back configuration", "register", rep.ReadBack, "confirmed", rep.Confirmed)
	}
	d.log.Debug("htu21d: temperature resolution set", "resolution", rep.Applied, "requested", int(r))
	return rep, nil
}

// SetHeater turns the on chip heater on or off. Only bit 2 of the user
// register changes.
func (d *Dev) SetHeater(on bool) error {
	d.bus.Lock()
	defer d.bus.Unlock()
	u, err := d.userRegister()
	if err != nil {
		return err
	}
	if on {
		u |= UserRegister(bitHeater)
	} else {
		u &^= UserRegister(bitHeater)
	}
	return d.writeUserRegister(u)
}
