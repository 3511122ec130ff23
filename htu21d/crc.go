// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d

import "github.com/GermanBionicSystems/htu21d/common"

const (
	crcPolynomial uint32 = 0x988000 // x^8 + x^5 + x^4 + 1, aligned to bit 23
	crcMSB        uint32 = 0x800000
	crcMask       uint32 = 0xff8000
)

// ValidateCRC reports whether crc is the checksum of value.
//
// The value is padded with eight zero bits and divided bit by bit, as shown in
// the datasheet.
func ValidateCRC(value uint16, crc byte) bool {
	polynom, msb, mask := crcPolynomial, crcMSB, crcMask
	result := uint32(value) << 8
	for msb != 0x80 {
		if result&msb != 0 {
			result = ((result ^ polynom) & mask) | (result &^ mask)
		}
		msb >>= 1
		mask >>= 1
		polynom >>= 1
	}
	return result == uint32(crc)
}

// ComputeCRC returns the checksum the sensor sends after value.
func ComputeCRC(value uint16) byte {
	return common.CRC8Init(0, []byte{byte(value >> 8), byte(value)})
}
