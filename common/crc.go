// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, a CRC8 calculation
package common

// crc8Polynomial is x^8 + x^5 + x^4 + 1 with the x^8 term omitted.
const crc8Polynomial byte = 0x31

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	return CRC8Init(0xff, bytes)
}

// CRC8Init calculates the same CRC as CRC8 but starting from init.
//
// Sensirion parts seed the register with 0xff. The TE Connectivity HTU21D
// family uses the same polynomial seeded with 0x00.
func CRC8Init(init byte, bytes []byte) byte {
	crc := init
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crc8Polynomial
			}
		}
	}
	return crc
}
