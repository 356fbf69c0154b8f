// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// icm20948plot records a burst of samples from an ICM-20948 and renders the
// acceleration and angular velocity waveforms to a PNG.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/icm20948"
)

const (
	width      = 900
	height     = 600
	marginLeft = 60
	marginTop  = 40
	paneGap    = 60
)

var axisColors = [3][3]float64{
	{0.85, 0.2, 0.2}, // X
	{0.2, 0.65, 0.2}, // Y
	{0.2, 0.3, 0.85}, // Z
}

func main() {
	busName := flag.String("bus", "", "I²C bus to use, empty for the first available")
	addr := flag.Uint("addr", uint(icm20948.DefaultAddr), "I²C address of the device")
	samples := flag.Int("samples", 512, "number of samples to record")
	interval := flag.Duration("interval", 10*time.Millisecond, "time between samples")
	out := flag.String("out", "icm20948.png", "output PNG file")
	fontPath := flag.String("font", "", "TTF file for labels, a builtin bitmap font is used when empty")
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

	accel := make([][3]float64, 0, *samples)
	gyro := make([][3]float64, 0, *samples)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for i := 0; i < *samples; i++ {
		<-ticker.C
		a, err := d.Acceleration()
		if err != nil {
			log.Fatal(err)
		}
		g, err := d.AngularVelocity()
		if err != nil {
			log.Fatal(err)
		}
		accel = append(accel, [3]float64{a.X, a.Y, a.Z})
		gyro = append(gyro, [3]float64{g.X, g.Y, g.Z})
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(loadFace(*fontPath))

	paneH := (height - 2*marginTop - paneGap) / 2
	drawPane(dc, marginTop, paneH, "acceleration [m/s²]", accel)
	drawPane(dc, marginTop+paneH+paneGap, paneH, "angular velocity [°/s]", gyro)

	if err := dc.SavePNG(*out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d samples to %s\n", *samples, *out)
}

// drawPane renders one three axis waveform pane at vertical offset top.
func drawPane(dc *gg.Context, top, h int, label string, data [][3]float64) {
	// Scale symmetrically around zero to the largest magnitude seen.
	max := 1.0
	for _, s := range data {
		for _, v := range s {
			if v > max {
				max = v
			}
			if -v > max {
				max = -v
			}
		}
	}

	x0 := float64(marginLeft)
	x1 := float64(width - marginLeft/2)
	y0 := float64(top)
	y1 := float64(top + h)
	mid := (y0 + y1) / 2

	dc.SetRGB(0.75, 0.75, 0.75)
	dc.SetLineWidth(1)
	dc.DrawLine(x0, mid, x1, mid)
	dc.DrawLine(x0, y0, x0, y1)
	dc.Stroke()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(label, x0, y0-8)
	dc.DrawString(fmt.Sprintf("+%.1f", max), 6, y0+6)
	dc.DrawString(fmt.Sprintf("-%.1f", max), 6, y1)

	if len(data) < 2 {
		return
	}
	step := (x1 - x0) / float64(len(data)-1)
	for axis := 0; axis < 3; axis++ {
		c := axisColors[axis]
		dc.SetRGB(c[0], c[1], c[2])
		dc.SetLineWidth(1.5)
		for i, s := range data {
			y := mid - s[axis]/max*float64(h)/2
			x := x0 + float64(i)*step
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
}

// loadFace parses the TTF at path, falling back to the builtin bitmap font
// when path is empty or unreadable.
func loadFace(path string) font.Face {
	if path == "" {
		return basicfont.Face7x13
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		log.Printf("falling back to the builtin font: %v", err)
		return basicfont.Face7x13
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		log.Printf("falling back to the builtin font: %v", err)
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: 13})
}
