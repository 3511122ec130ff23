// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package htu21d_test

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/GermanBionicSystems/htu21d/htu21d"
	"github.com/GermanBionicSystems/htu21d/htu21d/htu21dtest"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	dev, err := htu21d.NewI2C(bus, htu21d.DefaultAddress, nil)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := dev.SetResolution(htu21d.Res12); err != nil {
		log.Fatal(err)
	}
	env := physic.Env{}
	if err := dev.Sense(&env); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Temperature: %s   Humidity: %s\n", env.Temperature, env.Humidity)
}

func ExampleDev_Read() {
	s := htu21dtest.New(0x6e8c, 0x683a)
	dev := htu21d.New(s, &htu21d.Opts{Sleep: s.Sleep})

	frame := make([]byte, htu21d.FrameSize)
	if _, err := dev.Read(frame); err != nil {
		log.Fatal(err)
	}
	h := binary.BigEndian.Uint16(frame[0:2])
	t := binary.BigEndian.Uint16(frame[2:4])
	fmt.Printf("raw % x\n", frame)
	fmt.Printf("%.2f%%RH %.2f°C\n", float64(htu21d.RawToHumidity(h))/float64(physic.PercentRH), htu21d.RawToTemperature(t).Celsius())
	// Output:
	// raw 6e 8c 68 3a
	// 47.98%RH 24.69°C
}
