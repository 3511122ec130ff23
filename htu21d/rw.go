// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import (
	"errors"
	"io"
)

// FrameSize is the number of bytes Read delivers: the raw humidity word at
// offset 0 and the raw temperature word at offset 2, both high byte first.
const FrameSize = 4

// Read measures humidity and temperature and copies the raw words of the
// valid measurements into p. The two bytes of an invalid measurement are left
// as they were. In BestEffort mode that is not an error.
//
// Read fails with ErrCopyFault when p is shorter than FrameSize. The
// measurements are still taken.
func (d *Dev) Read(p []byte) (int, error) {
	h, t := d.Acquire()
	if len(p) < FrameSize {
		d.log.Warn("htu21d: short read buffer", "len", len(p), "want", FrameSize)
		return 0, &DeviceError{Op: "read", Err: ErrCopyFault}
	}
	deliver(p[0:2], h)
	deliver(p[2:4], t)
	if d.policy == Strict {
		if err := errors.Join(h.Err, t.Err); err != nil {
			return FrameSize, &DeviceError{Op: "read", Err: err}
		}
	}
	return FrameSize, nil
}

func deliver(dst []byte, r Reading) {
	if !r.Valid() {
		return
	}
	dst[0] = byte(r.Raw >> 8)
	dst[1] = byte(r.Raw)
}

// Write sets the temperature resolution from p[0]. Any value other than 11,
// 12, 13 or 14 selects 14. The rest of p is ignored.
//
// In BestEffort mode Write reports success even when the bus failed. In Strict
// mode bus failures are returned and so is ErrNotConfirmed when the register
// read back differs from the value written.
func (d *Dev) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, &DeviceError{Op: "write", Err: ErrCopyFault}
	}
	rep, err := d.SetResolution(Resolution(p[0]))
	if d.policy == Strict {
		if err != nil {
			return 0, &DeviceError{Op: "write", Err: err}
		}
		if !rep.Confirmed {
			return 0, &DeviceError{Op: "write", Err: errors.Join(ErrNotConfirmed, rep.ReadBackErr)}
		}
	}
	return len(p), nil
}

var _ io.ReadWriter = &Dev{}
