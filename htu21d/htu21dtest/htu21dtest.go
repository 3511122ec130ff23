// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package htu21dtest is meant to be used to test drivers over a fake HTU21D.
//
// Sensor answers the no hold master command set and enforces the same
// conversion times as the real part: a result read before the driver slept
// long enough is refused. Failures can be injected per command.
package htu21dtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/htu21d/common"
	"periph.io/x/conn/v3"
)

// ErrNack is returned for every transaction the fake sensor refuses.
var ErrNack = errors.New("htu21dtest: nack")

// PowerOnRegister is the user register value after power on.
const PowerOnRegister byte = 0x02

const (
	cmdTriggerHumidity    byte = 0xf5
	cmdTriggerTemperature byte = 0xf3
	cmdWriteUserRegister  byte = 0xe6
	cmdReadUserRegister   byte = 0xe7
	cmdSoftReset          byte = 0xfe

	bitEndOfBattery byte = 1 << 6
)

var conversionTime = map[byte]time.Duration{
	cmdTriggerHumidity:    16 * time.Millisecond,
	cmdTriggerTemperature: 50 * time.Millisecond,
}

// Sensor is a fake HTU21D implementing conn.Conn.
//
// The exported fields can be changed between transactions while holding the
// lock.
type Sensor struct {
	sync.Mutex
	// Register is the user register.
	Register byte
	// Humidity and Temperature are the raw words returned by measurements.
	Humidity    uint16
	Temperature uint16
	// FailSend makes the command byte of the key fail with the error.
	FailSend map[byte]error
	// FailReceive makes the read following the command of the key fail.
	FailReceive map[byte]error
	// CorruptCRC flips the low bit of the CRC sent after the command.
	CorruptCRC map[byte]bool
	// IgnoreWrites accepts register writes without storing them.
	IgnoreWrites bool

	// Log records every transaction and sleep, e.g. "W f5", "sleep 20ms",
	// "R 3".
	Log []string
	// Interleaved is set when a measurement was triggered while another was
	// waiting to be read.
	Interleaved bool

	pending byte
	waited  time.Duration
}

// New returns a Sensor with the power on register and the given raw values.
func New(humidity, temperature uint16) *Sensor {
	return &Sensor{Register: PowerOnRegister, Humidity: humidity, Temperature: temperature}
}

func (s *Sensor) String() string {
	return "htu21dtest"
}

// Duplex implements conn.Conn.
func (s *Sensor) Duplex() conn.Duplex {
	return conn.Half
}

// Sleep records d and counts it toward the pending conversion. Pass it as the
// driver's sleep function.
func (s *Sensor) Sleep(d time.Duration) {
	s.Lock()
	defer s.Unlock()
	s.Log = append(s.Log, "sleep "+d.String())
	s.waited += d
}

// Tx implements conn.Conn.
func (s *Sensor) Tx(w, r []byte) error {
	s.Lock()
	defer s.Unlock()
	if len(w) != 0 {
		if err := s.command(w); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		return s.receive(r)
	}
	return nil
}

func (s *Sensor) command(w []byte) error {
	cmd := w[0]
	s.Log = append(s.Log, fmt.Sprintf("W % x", w))
	if err := s.FailSend[cmd]; err != nil {
		return err
	}
	switch cmd {
	case cmdTriggerHumidity, cmdTriggerTemperature:
		if s.pending == cmdTriggerHumidity || s.pending == cmdTriggerTemperature {
			s.Interleaved = true
		}
		s.pending = cmd
		s.waited = 0
	case cmdReadUserRegister:
		s.pending = cmd
	case cmdWriteUserRegister:
		if len(w) != 2 {
			return fmt.Errorf("%w: write user register with %d bytes", ErrNack, len(w))
		}
		if !s.IgnoreWrites {
			s.Register = w[1]&^bitEndOfBattery | s.Register&bitEndOfBattery
		}
		s.pending = 0
	case cmdSoftReset:
		s.Register = PowerOnRegister | s.Register&bitEndOfBattery
		s.pending = 0
	default:
		return fmt.Errorf("%w: unknown command 0x%02x", ErrNack, cmd)
	}
	return nil
}

func (s *Sensor) receive(r []byte) error {
	s.Log = append(s.Log, fmt.Sprintf("R %d", len(r)))
	cmd := s.pending
	s.pending = 0
	if err := s.FailReceive[cmd]; err != nil {
		return err
	}
	switch cmd {
	case cmdReadUserRegister:
		r[0] = s.Register
		return nil
	case cmdTriggerHumidity, cmdTriggerTemperature:
		if s.waited < conversionTime[cmd] {
			// Still converting, the sensor does not acknowledge its address.
			s.pending = cmd
			return fmt.Errorf("%w: conversion not done after %s", ErrNack, s.waited)
		}
		v := s.Humidity
		if cmd == cmdTriggerTemperature {
			v = s.Temperature
		}
		out := []byte{byte(v >> 8), byte(v), common.CRC8Init(0, []byte{byte(v >> 8), byte(v)})}
		if s.CorruptCRC[cmd] {
			out[2] ^= 0x01
		}
		copy(r, out)
		if len(r) < len(out) {
			return fmt.Errorf("%w: short read of %d bytes", ErrNack, len(r))
		}
		return nil
	default:
		return fmt.Errorf("%w: nothing to read", ErrNack)
	}
}

var _ conn.Conn = &Sensor{}
