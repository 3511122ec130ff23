// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import "testing"

func TestValidateCRC(t *testing.T) {
	// Values from the datasheet.
	var tests = []struct {
		value uint16
		crc   byte
	}{
		{value: 0x00dc, crc: 0x79},
		{value: 0x683a, crc: 0x7c},
		{value: 0x4e85, crc: 0x6b},
	}
	for _, test := range tests {
		if !ValidateCRC(test.value, test.crc) {
			t.Errorf("ValidateCRC(0x%04x, 0x%02x) = false", test.value, test.crc)
		}
		for b := 0; b < 256; b++ {
			if byte(b) != test.crc && ValidateCRC(test.value, byte(b)) {
				t.Errorf("ValidateCRC(0x%04x, 0x%02x) = true, only 0x%02x is valid", test.value, b, test.crc)
			}
		}
	}
}

// The bit serial form and the byte wise form in package common must agree
// for every raw word.
func TestComputeCRCRoundTrip(t *testing.T) {
	for v := 0; v <= 0xffff; v++ {
		crc := ComputeCRC(uint16(v))
		if !ValidateCRC(uint16(v), crc) {
			t.Fatalf("ValidateCRC(0x%04x, ComputeCRC()=0x%02x) = false", v, crc)
		}
		if ValidateCRC(uint16(v), crc^0x01) {
			t.Fatalf("ValidateCRC(0x%04x, 0x%02x) = true for corrupted crc", v, crc^0x01)
		}
	}
}
