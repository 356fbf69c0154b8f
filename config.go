// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948

// ClockSource selects the device clock.
type ClockSource byte

const (
	// ClockInternal runs off the internal 20MHz oscillator.
	ClockInternal ClockSource = 0b000
	// ClockAuto picks the best available source, the PLL when ready.
	// Required for full gyroscope performance per the datasheet.
	ClockAuto ClockSource = 0b001
	// ClockStop stops the clock and keeps the timing generator in reset.
	ClockStop ClockSource = 0b111
)

func (c ClockSource) String() string {
	switch c {
	case ClockInternal:
		return "internal"
	case ClockAuto:
		return "auto"
	case ClockStop:
		return "stop"
	}
	return "unknown"
}

// AccelRange is the accelerometer full scale range.
type AccelRange byte

const (
	Range2G  AccelRange = 0b00
	Range4G  AccelRange = 0b01
	Range8G  AccelRange = 0b10
	Range16G AccelRange = 0b11
)

func (r AccelRange) String() string {
	switch r {
	case Range2G:
		return "±2g"
	case Range4G:
		return "±4g"
	case Range8G:
		return "±8g"
	case Range16G:
		return "±16g"
	}
	return "unknown"
}

// LSB per g for each AccelRange.
var accelSensitivity = [...]float64{16384, 8192, 4096, 2048}

// GyroFullScale is the gyroscope full scale range.
type GyroFullScale byte

const (
	FullScale250  GyroFullScale = 0b00
	FullScale500  GyroFullScale = 0b01
	FullScale1000 GyroFullScale = 0b10
	FullScale2000 GyroFullScale = 0b11
)

func (s GyroFullScale) String() string {
	switch s {
	case FullScale250:
		return "±250°/s"
	case FullScale500:
		return "±500°/s"
	case FullScale1000:
		return "±1000°/s"
	case FullScale2000:
		return "±2000°/s"
	}
	return "unknown"
}

// LSB per °/s for each GyroFullScale.
var gyroSensitivity = [...]float64{131, 65.5, 32.8, 16.4}

// AccelFilter is the accelerometer digital low pass filter cutoff. Signals
// above the cutoff frequency are filtered out.
type AccelFilter byte

const (
	AccelFilter246Hz AccelFilter = 0b001
	AccelFilter111Hz AccelFilter = 0b010
	AccelFilter50Hz  AccelFilter = 0b011
	AccelFilter24Hz  AccelFilter = 0b100
	AccelFilter12Hz  AccelFilter = 0b101
	AccelFilter6Hz   AccelFilter = 0b110
	AccelFilter473Hz AccelFilter = 0b111
)

// GyroFilter is the gyroscope digital low pass filter cutoff.
type GyroFilter byte

const (
	GyroFilter197Hz GyroFilter = 0b000
	GyroFilter152Hz GyroFilter = 0b001
	GyroFilter120Hz GyroFilter = 0b010
	GyroFilter51Hz  GyroFilter = 0b011
	GyroFilter24Hz  GyroFilter = 0b100
	GyroFilter12Hz  GyroFilter = 0b101
	GyroFilter6Hz   GyroFilter = 0b110
	GyroFilter361Hz GyroFilter = 0b111
)

// The device only accepts an integer rate divisor, output ≈ 1125Hz/(1+N).
// Only these discrete pairs are valid; arbitrary frequencies are rejected.
var accelRates = []struct {
	Hz      float64
	Divisor uint16
}{
	{140.6, 7},
	{102.3, 10},
	{70.3, 15},
	{48.9, 22},
	{35.2, 31},
	{17.6, 63},
	{8.8, 127},
	{4.4, 255},
	{2.2, 513},
	{1.1, 1022},
	{0.55, 2044},
	{0.27, 4095},
}

var gyroRates = []struct {
	Hz      float64
	Divisor uint8
}{
	{562.5, 1},
	{375.0, 2},
	{281.3, 3},
	{225.0, 4},
	{187.5, 5},
	{140.6, 7},
	{125.0, 8},
	{102.3, 10},
	{70.3, 15},
	{66.2, 16},
	{48.9, 22},
	{35.2, 31},
	{34.1, 32},
	{17.6, 63},
	{17.3, 64},
	{4.4, 255},
}

// ClockSource returns the currently selected device clock.
func (d *Dev) ClockSource() (ClockSource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readBits(regPwrMgmt1, 3, shiftClockSel)
	return ClockSource(v), err
}

// SetClockSource selects the device clock.
func (d *Dev) SetClockSource(c ClockSource) error {
	switch c {
	case ClockInternal, ClockAuto, ClockStop:
	default:
		return wrapf("invalid clock source %d", c)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeBits(regPwrMgmt1, 3, shiftClockSel, byte(c))
}

// AccelEnabled reports whether the accelerometer is on. The device powers
// the axes individually; the driver only ever switches all three together.
func (d *Dev) AccelEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readBits(regPwrMgmt2, 3, shiftAccelDisable)
	return v == 0b000, err
}

// SetAccelEnabled switches all three accelerometer axes on or off.
func (d *Dev) SetAccelEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeBits(regPwrMgmt2, 3, shiftAccelDisable, disableBits(enabled))
}

// GyroEnabled reports whether the gyroscope is on.
func (d *Dev) GyroEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readBits(regPwrMgmt2, 3, shiftGyroDisable)
	return v == 0b000, err
}

// SetGyroEnabled switches all three gyroscope axes on or off.
func (d *Dev) SetGyroEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeBits(regPwrMgmt2, 3, shiftGyroDisable, disableBits(enabled))
}

// TempSensorEnabled reports whether the temperature sensor is on.
func (d *Dev) TempSensorEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readBits(regPwrMgmt1, 1, shiftTempDis)
	return v == 0, err
}

// SetTempSensorEnabled switches the temperature sensor on or off.
func (d *Dev) SetTempSensorEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	if !enabled {
		v = 1
	}
	return d.writeBits(regPwrMgmt1, 1, shiftTempDis, v)
}

// AccelRange returns the accelerometer full scale range the device reports.
func (d *Dev) AccelRange() (AccelRange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regAccelConfig, 2, shiftFullScale)
		return
	})
	return AccelRange(v), err
}

// SetAccelRange sets the accelerometer full scale range. Raw readings are
// scaled with the value set here, so a wider range costs resolution.
func (d *Dev) SetAccelRange(r AccelRange) error {
	if r > Range16G {
		return wrapf("invalid accelerometer range %d", r)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.inBank2(func() error {
		return d.writeBits(regAccelConfig, 2, shiftFullScale, byte(r))
	})
	if err != nil {
		return err
	}
	d.accelRange = r
	return nil
}

// GyroFullScale returns the gyroscope full scale range the device reports.
func (d *Dev) GyroFullScale() (GyroFullScale, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regGyroConfig1, 2, shiftFullScale)
		return
	})
	return GyroFullScale(v), err
}

// SetGyroFullScale sets the gyroscope full scale range.
func (d *Dev) SetGyroFullScale(s GyroFullScale) error {
	if s > FullScale2000 {
		return wrapf("invalid gyroscope full scale %d", s)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.inBank2(func() error {
		return d.writeBits(regGyroConfig1, 2, shiftFullScale, byte(s))
	})
	if err != nil {
		return err
	}
	d.gyroScale = s
	return nil
}

// AccelFilter returns the accelerometer low pass filter cutoff.
func (d *Dev) AccelFilter() (AccelFilter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regAccelConfig, 3, shiftFilterConfig)
		return
	})
	return AccelFilter(v), err
}

// SetAccelFilter sets the accelerometer low pass filter cutoff. Readings
// immediately after a change are inaccurate while the filter settles.
func (d *Dev) SetAccelFilter(f AccelFilter) error {
	if f < AccelFilter246Hz || f > AccelFilter473Hz {
		return wrapf("invalid accelerometer filter cutoff %d", f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inBank2(func() error {
		return d.writeBits(regAccelConfig, 3, shiftFilterConfig, byte(f))
	})
}

// AccelFilterEnabled reports whether the accelerometer low pass filter is in
// the signal path.
func (d *Dev) AccelFilterEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regAccelConfig, 1, shiftFilterChoice)
		return
	})
	return v == 1, err
}

// SetAccelFilterEnabled puts the accelerometer low pass filter in or out of
// the signal path.
func (d *Dev) SetAccelFilterEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	if enabled {
		v = 1
	}
	return d.inBank2(func() error {
		return d.writeBits(regAccelConfig, 1, shiftFilterChoice, v)
	})
}

// GyroFilter returns the gyroscope low pass filter cutoff.
func (d *Dev) GyroFilter() (GyroFilter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regGyroConfig1, 3, shiftFilterConfig)
		return
	})
	return GyroFilter(v), err
}

// SetGyroFilter sets the gyroscope low pass filter cutoff.
func (d *Dev) SetGyroFilter(f GyroFilter) error {
	if f > GyroFilter361Hz {
		return wrapf("invalid gyroscope filter cutoff %d", f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inBank2(func() error {
		return d.writeBits(regGyroConfig1, 3, shiftFilterConfig, byte(f))
	})
}

// GyroFilterEnabled reports whether the gyroscope low pass filter is in the
// signal path.
func (d *Dev) GyroFilterEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	err := d.inBank2(func() (err error) {
		v, err = d.readBits(regGyroConfig1, 1, shiftFilterChoice)
		return
	})
	return v == 1, err
}

// SetGyroFilterEnabled puts the gyroscope low pass filter in or out of the
// signal path.
func (d *Dev) SetGyroFilterEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v byte
	if enabled {
		v = 1
	}
	return d.inBank2(func() error {
		return d.writeBits(regGyroConfig1, 1, shiftFilterChoice, v)
	})
}

// AccelRateDivisor returns the accelerometer output rate divisor.
func (d *Dev) AccelRateDivisor() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v uint16
	err := d.inBank2(func() (err error) {
		v, err = d.regs.ReadUint16(regAccelSmplrtDiv)
		return
	})
	return v, err
}

// SetAccelRateDivisor sets the accelerometer output rate divisor. Only the
// divisors enumerated in the accelerometer rate table are accepted.
func (d *Dev) SetAccelRateDivisor(div uint16) error {
	ok := false
	for _, r := range accelRates {
		if r.Divisor == div {
			ok = true
			break
		}
	}
	if !ok {
		return wrapf("invalid accelerometer rate divisor %d", div)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inBank2(func() error {
		return d.regs.WriteUint16(regAccelSmplrtDiv, div)
	})
}

// AccelDataRate returns the accelerometer output data rate in Hz.
func (d *Dev) AccelDataRate() (float64, error) {
	div, err := d.AccelRateDivisor()
	if err != nil {
		return 0, err
	}
	for _, r := range accelRates {
		if r.Divisor == div {
			return r.Hz, nil
		}
	}
	return 0, wrapf("accelerometer rate divisor %d set outside the driver", div)
}

// SetAccelDataRate sets the accelerometer output data rate. Only the
// frequencies enumerated in the accelerometer rate table are accepted, since
// the device itself only takes an integer divisor.
func (d *Dev) SetAccelDataRate(hz float64) error {
	for _, r := range accelRates {
		if r.Hz == hz {
			return d.SetAccelRateDivisor(r.Divisor)
		}
	}
	return wrapf("invalid accelerometer data rate %gHz", hz)
}

// GyroRateDivisor returns the gyroscope output rate divisor.
func (d *Dev) GyroRateDivisor() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v uint8
	err := d.inBank2(func() (err error) {
		v, err = d.regs.ReadUint8(regGyroSmplrtDiv)
		return
	})
	return v, err
}

// SetGyroRateDivisor sets the gyroscope output rate divisor. Only the
// divisors enumerated in the gyroscope rate table are accepted.
func (d *Dev) SetGyroRateDivisor(div uint8) error {
	ok := false
	for _, r := range gyroRates {
		if r.Divisor == div {
			ok = true
			break
		}
	}
	if !ok {
		return wrapf("invalid gyroscope rate divisor %d", div)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inBank2(func() error {
		return d.regs.WriteUint8(regGyroSmplrtDiv, div)
	})
}

// GyroDataRate returns the gyroscope output data rate in Hz.
func (d *Dev) GyroDataRate() (float64, error) {
	div, err := d.GyroRateDivisor()
	if err != nil {
		return 0, err
	}
	for _, r := range gyroRates {
		if r.Divisor == div {
			return r.Hz, nil
		}
	}
	return 0, wrapf("gyroscope rate divisor %d set outside the driver", div)
}

// SetGyroDataRate sets the gyroscope output data rate. Only the frequencies
// enumerated in the gyroscope rate table are accepted.
func (d *Dev) SetGyroDataRate(hz float64) error {
	for _, r := range gyroRates {
		if r.Hz == hz {
			return d.SetGyroRateDivisor(r.Divisor)
		}
	}
	return wrapf("invalid gyroscope data rate %gHz", hz)
}

// disableBits maps an enable flag to the 3 axis disable bits of PWR_MGMT_2.
func disableBits(enabled bool) byte {
	if enabled {
		return 0b000
	}
	return 0b111
}
