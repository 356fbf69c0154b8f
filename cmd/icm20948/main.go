// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// icm20948 polls an ICM-20948 and prints acceleration, angular velocity and
// die temperature. With -color each axis is rendered as a bar of ANSI
// colored blocks, green for positive and red for negative readings.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/icm20948"
)

func main() {
	busName := flag.String("bus", "", "I²C bus to use, empty for the first available")
	addr := flag.Uint("addr", uint(icm20948.DefaultAddr), "I²C address of the device")
	interval := flag.Duration("interval", 100*time.Millisecond, "time between samples")
	count := flag.Int("n", 0, "number of samples to take, 0 for unlimited")
	colored := flag.Bool("color", false, "render each axis as a colored bar")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	opts := icm20948.DefaultOpts
	opts.Addr = uint16(*addr)
	d, err := icm20948.New(bus, &opts)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Halt()

	w := colorable.NewColorableStdout()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for i := 0; *count == 0 || i < *count; i++ {
		<-ticker.C
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
		if *colored {
			printBars(w, a, g, t.Celsius())
		} else {
			fmt.Printf("%s  %s  %.2f°C\n", a, g, t.Celsius())
		}
	}
}

// printBars writes one line of per axis bars. The accelerometer bars are
// scaled to ±2g and the gyroscope bars to ±500°/s, the driver defaults.
func printBars(w io.Writer, a icm20948.Acceleration, g icm20948.AngularVelocity, celsius float64) {
	fmt.Fprintf(w, "ax%s ay%s az%s  gx%s gy%s gz%s  %.2f°C\n",
		bar(a.X/(2*9.80665)), bar(a.Y/(2*9.80665)), bar(a.Z/(2*9.80665)),
		bar(g.X/500), bar(g.Y/500), bar(g.Z/500), celsius)
}

// bar renders v in [-1, 1] as eight blocks, lit proportionally to |v|.
func bar(v float64) string {
	lit := int(math.Abs(v) * 8)
	if lit > 8 {
		lit = 8
	}
	c := color.NRGBA{G: 255, A: 255}
	if v < 0 {
		c = color.NRGBA{R: 255, A: 255}
	}
	var b strings.Builder
	for i := 0; i < lit; i++ {
		b.WriteString(ansi256.Default.Block(c))
	}
	for i := lit; i < 8; i++ {
		b.WriteString(ansi256.Default.Block(color.NRGBA{R: 40, G: 40, B: 40, A: 255}))
	}
	b.WriteString("\033[0m")
	return b.String()
}
