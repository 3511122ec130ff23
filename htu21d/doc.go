// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package htu21d controls a TE Connectivity HTU21D humidity and temperature
// sensor over I²C. The Si7021 and SHT21 accept the same commands.
//
// The driver uses the no hold master commands only. A measurement is
// triggered, the driver waits the worst case conversion time from the datasheet
// (20ms for humidity, 50ms for temperature) and then reads two data bytes and a
// CRC byte. Readings that fail the CRC are never reported as valid.
//
// Dev implements io.Reader and io.Writer the way a character device would:
// Read fills a 4 byte frame with the raw humidity and temperature words, high
// byte first, and Write takes a single byte selecting the temperature
// resolution in bits (11, 12, 13 or 14). Dev also implements physic.SenseEnv.
//
// The transaction sequences of one Dev never interleave, including those of
// its SenseContinuous goroutine. Several Dev values on the same sensor are
// not coordinated; hosts sharing one sensor between users should share one
// node instead, see package devnode.
//
// # Datasheet
//
// https://www.te.com/commerce/DocumentDelivery/DDEController?Action=showdoc&DocId=Data+Sheet%7FHPC199_6%7FA6%7Fpdf%7FEnglish%7FENG_DS_HPC199_6_A6.pdf
package htu21d
