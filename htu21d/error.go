// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrCRCMismatch is matched by every *CRCError.
	ErrCRCMismatch = errors.New("htu21d: crc mismatch")
	// ErrCopyFault is returned when bytes cannot be delivered to or taken
	// from the caller's buffer. It says nothing about the sensor.
	ErrCopyFault = errors.New("htu21d: copy fault")
	// ErrNotConfirmed is returned in Strict mode when the user register
	// read back after a write does not hold the written value.
	ErrNotConfirmed = errors.New("htu21d: register write not confirmed")
)

// BusErrorKind classifies a failed bus transaction.
type BusErrorKind int

const (
	// NoAck is any transaction the bus refused or did not complete.
	NoAck BusErrorKind = iota
	// ShortTransfer means fewer bytes than requested moved over the bus.
	ShortTransfer
	// Timeout means the bus gave up waiting on the device.
	Timeout
)

func (k BusErrorKind) String() string {
	switch k {
	case NoAck:
		return "no ack"
	case ShortTransfer:
		return "short transfer"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("BusErrorKind(%d)", int(k))
	}
}

// BusError is a failed transaction with the command it belonged to.
type BusError struct {
	Op   string // "send" or "receive"
	Cmd  byte
	Kind BusErrorKind
	Err  error
}

func newBusError(op string, cmd byte, err error) *BusError {
	kind := NoAck
	switch {
	case errors.Is(err, io.ErrShortWrite), errors.Is(err, io.ErrUnexpectedEOF):
		kind = ShortTransfer
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		kind = Timeout
	}
	return &BusError{Op: op, Cmd: cmd, Kind: kind, Err: err}
}

func (e *BusError) Error() string {
	return fmt.Sprintf("htu21d: %s for command 0x%02x failed (%s): %v", e.Op, e.Cmd, e.Kind, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// CRCError reports a reading whose checksum did not validate.
type CRCError struct {
	Raw uint16
	Got byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("htu21d: crc mismatch for 0x%04x: received 0x%02x, computed 0x%02x", e.Raw, e.Got, ComputeCRC(e.Raw))
}

// Is lets errors.Is(err, ErrCRCMismatch) match.
func (e *CRCError) Is(target error) bool {
	return target == ErrCRCMismatch
}

// DeviceError is returned by Dev.Read and Dev.Write.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("htu21d: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
