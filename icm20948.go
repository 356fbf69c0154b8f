// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the I²C address the ICM-20948 uses with the AD0 pin high,
// which is how most breakout boards wire it.
const DefaultAddr uint16 = 0x69

// Standard gravity, m/s² per g.
const gravity = 9.80665

// resetDelay is how long to wait after a soft reset. The reset bit self
// clears and the part offers no ready flag to poll, so a fixed delay it is.
var resetDelay = time.Second

// Opts holds the configuration applied to the device at construction time.
type Opts struct {
	// Addr is the I²C device address. Defaults to 0x69.
	Addr uint16
	// AccelRange selects the accelerometer full scale range.
	AccelRange AccelRange
	// GyroFullScale selects the gyroscope full scale range.
	GyroFullScale GyroFullScale
	// AccelRateDivisor sets the accelerometer output data rate,
	// rate ≈ 1125Hz / (1 + divisor). Zero means the default of 22.
	AccelRateDivisor uint16
	// GyroRateDivisor sets the gyroscope output data rate,
	// rate ≈ 1125Hz / (1 + divisor). Zero means the default of 10.
	GyroRateDivisor uint8
}

// DefaultOpts is the recommended default configuration: ±2g, ±500°/s,
// 48.9Hz accelerometer and 102.3Hz gyroscope output.
var DefaultOpts = Opts{
	Addr:             DefaultAddr,
	AccelRange:       Range2G,
	GyroFullScale:    FullScale500,
	AccelRateDivisor: 22,
	GyroRateDivisor:  10,
}

// Dev is a handle to an ICM-20948 on an I²C bus.
//
// A Dev serializes its own operations, but the underlying bus must not be
// shared with another user of the same device: a bank switch interleaved from
// outside would redirect the next register access.
type Dev struct {
	regs mmr.Dev8
	opts Opts

	mu       sync.Mutex
	shutdown chan struct{}
	// Mirrors of the last written range codes, needed to scale raw readings
	// without a bank switch per measurement. Stale if the device is reset
	// behind the driver's back.
	accelRange AccelRange
	gyroScale  GyroFullScale
}

// New opens an ICM-20948 on the given bus, verifies its identity, resets it
// and applies opts. Pass nil to get DefaultOpts.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultAddr
	}
	if o.AccelRateDivisor == 0 {
		o.AccelRateDivisor = DefaultOpts.AccelRateDivisor
	}
	if o.GyroRateDivisor == 0 {
		o.GyroRateDivisor = DefaultOpts.GyroRateDivisor
	}
	d := &Dev{
		regs: mmr.Dev8{Conn: &i2c.Dev{Bus: b, Addr: o.Addr}, Order: binary.BigEndian},
		opts: o,
	}
	id, err := d.regs.ReadUint8(regDeviceID)
	if err != nil {
		return nil, wrapf("reading device id: %v", err)
	}
	if id != deviceID {
		return nil, wrapf("no ICM-20948 at address %#x: device id %#x, expected %#x", o.Addr, id, deviceID)
	}
	if err := d.writeBits(regPwrMgmt1, 1, shiftReset, 1); err != nil {
		return nil, wrapf("resetting: %v", err)
	}
	time.Sleep(resetDelay)
	if err := d.writeBits(regPwrMgmt1, 1, shiftSleep, 0); err != nil {
		return nil, wrapf("waking: %v", err)
	}
	if err := d.selectBank(0); err != nil {
		return nil, wrapf("selecting bank 0: %v", err)
	}
	if err := d.SetAccelRange(o.AccelRange); err != nil {
		return nil, err
	}
	if err := d.SetGyroFullScale(o.GyroFullScale); err != nil {
		return nil, err
	}
	if err := d.SetAccelRateDivisor(o.AccelRateDivisor); err != nil {
		return nil, err
	}
	if err := d.SetGyroRateDivisor(o.GyroRateDivisor); err != nil {
		return nil, err
	}
	return d, nil
}

// Acceleration is an acceleration measurement on the three axes in m/s².
type Acceleration struct {
	X, Y, Z float64
}

func (a Acceleration) String() string {
	return fmt.Sprintf("X:%.3fm/s² Y:%.3fm/s² Z:%.3fm/s²", a.X, a.Y, a.Z)
}

// AngularVelocity is an angular velocity measurement on the three axes in
// degrees per second.
type AngularVelocity struct {
	X, Y, Z float64
}

func (a AngularVelocity) String() string {
	return fmt.Sprintf("X:%.2f°/s Y:%.2f°/s Z:%.2f°/s", a.X, a.Y, a.Z)
}

// Acceleration returns the current acceleration on the three axes.
func (d *Dev) Acceleration() (Acceleration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var raw [3]int16
	if err := d.regs.ReadStruct(regAccelXout, &raw); err != nil {
		return Acceleration{}, wrapf("reading acceleration: %v", err)
	}
	s := accelSensitivity[d.accelRange]
	return Acceleration{
		X: float64(raw[0]) / s * gravity,
		Y: float64(raw[1]) / s * gravity,
		Z: float64(raw[2]) / s * gravity,
	}, nil
}

// AngularVelocity returns the current rotation rate on the three axes.
func (d *Dev) AngularVelocity() (AngularVelocity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var raw [3]int16
	if err := d.regs.ReadStruct(regGyroXout, &raw); err != nil {
		return AngularVelocity{}, wrapf("reading angular velocity: %v", err)
	}
	s := gyroSensitivity[d.gyroScale]
	return AngularVelocity{
		X: float64(raw[0]) / s,
		Y: float64(raw[1]) / s,
		Z: float64(raw[2]) / s,
	}, nil
}

// Temperature returns the die temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.temperature()
}

// temperature reads the temperature word. It trails the gyroscope data and
// the part only delivers a sane value when the whole run is read in one
// pass, hence the read anchored at the gyroscope registers.
//
// It must be called with d.mu held.
func (d *Dev) temperature() (physic.Temperature, error) {
	var raw [4]int16
	if err := d.regs.ReadStruct(regGyroXout, &raw); err != nil {
		return 0, wrapf("reading temperature: %v", err)
	}
	c := float64(raw[3])/333.87 + 21
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Kelvin)), nil
}

// Sense reads the temperature sensor and writes the value to env.
// Implements physic.SenseEnv.
func (d *Dev) Sense(env *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.temperature()
	if err == nil {
		env.Temperature = t
	}
	return err
}

// SenseContinuous reads the temperature sensor at the given interval and
// writes the values to the returned channel. Call Halt to terminate it.
// Implements physic.SenseEnv.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		return nil, wrapf("already sensing continuously")
	}
	d.shutdown = make(chan struct{})
	channel := make(chan physic.Env, 16)
	go func(shutdown <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-shutdown:
				close(channel)
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := d.Sense(&e); err == nil && len(channel) < cap(channel) {
					channel <- e
				}
			}
		}
	}(d.shutdown)
	return channel, nil
}

// Precision returns the temperature sensor's step size, 1/333.87 °C.
// Implements physic.SenseEnv.
func (d *Dev) Precision(env *physic.Env) {
	step := float64(physic.Kelvin) / 333.87
	env.Temperature = physic.Temperature(step)
	env.Pressure = 0
	env.Humidity = 0
}

// Halt stops a SenseContinuous operation if one is running and puts the
// device to sleep. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
		d.shutdown = nil
	}
	return d.writeBits(regPwrMgmt1, 1, shiftSleep, 1)
}

func (d *Dev) String() string {
	return fmt.Sprintf("icm20948: %s", d.regs.Conn)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
