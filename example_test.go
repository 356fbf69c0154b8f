// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948_test

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/icm20948"
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

	// Create the sensor with the default ±2g / ±500°/s configuration.
	d, err := icm20948.New(bus, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Halt()

	a, err := d.Acceleration()
	if err != nil {
		log.Fatal(err)
	}
	g, err := d.AngularVelocity()
	if err != nil {
		log.Fatal(err)
	}
	t, err := d.Temperature()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s  %s  %.2f°C\n", a, g, t.Celsius())
}

func ExampleDev_SenseContinuous() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	d, err := icm20948.New(bus, nil)
	if err != nil {
		log.Fatal(err)
	}

	// Print the die temperature once a second until Halt is called.
	ch, err := d.SenseContinuous(time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Halt()
	for env := range ch {
		fmt.Printf("%s\n", env.Temperature)
	}
}
