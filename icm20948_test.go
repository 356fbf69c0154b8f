// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

const testAddr uint16 = 0x69

// initOps is the exact transaction sequence New issues against a device with
// power-on register defaults (PWR_MGMT_1 = 0x41, config registers = 0x01).
func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		// Identity check.
		{Addr: testAddr, W: []byte{regDeviceID}, R: []byte{deviceID}},
		// Soft reset.
		{Addr: testAddr, W: []byte{regPwrMgmt1}, R: []byte{0x41}},
		{Addr: testAddr, W: []byte{regPwrMgmt1, 0xC1}},
		// Clear the sleep bit.
		{Addr: testAddr, W: []byte{regPwrMgmt1}, R: []byte{0x41}},
		{Addr: testAddr, W: []byte{regPwrMgmt1, 0x01}},
		// Select bank 0.
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
		{Addr: testAddr, W: []byte{regBankSel, 0x00}},
		// Accelerometer range ±2g, in bank 2.
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
		{Addr: testAddr, W: []byte{regBankSel, 0x20}},
		{Addr: testAddr, W: []byte{regAccelConfig}, R: []byte{0x01}},
		{Addr: testAddr, W: []byte{regAccelConfig, 0x01}},
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x20}},
		{Addr: testAddr, W: []byte{regBankSel, 0x00}},
		// Gyroscope full scale ±500°/s, in bank 2.
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
		{Addr: testAddr, W: []byte{regBankSel, 0x20}},
		{Addr: testAddr, W: []byte{regGyroConfig1}, R: []byte{0x01}},
		{Addr: testAddr, W: []byte{regGyroConfig1, 0x03}},
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x20}},
		{Addr: testAddr, W: []byte{regBankSel, 0x00}},
		// Accelerometer rate divisor 22, in bank 2.
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
		{Addr: testAddr, W: []byte{regBankSel, 0x20}},
		{Addr: testAddr, W: []byte{regAccelSmplrtDiv, 0x00, 0x16}},
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x20}},
		{Addr: testAddr, W: []byte{regBankSel, 0x00}},
		// Gyroscope rate divisor 10, in bank 2.
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
		{Addr: testAddr, W: []byte{regBankSel, 0x20}},
		{Addr: testAddr, W: []byte{regGyroSmplrtDiv, 0x0A}},
		{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x20}},
		{Addr: testAddr, W: []byte{regBankSel, 0x00}},
	}
}

// testDev builds a Dev around bus without going through New, the way the
// aht20 tests do, so individual operations can be played back in isolation.
func testDev(bus i2c.Bus) *Dev {
	return &Dev{
		regs:       mmrDev(bus),
		accelRange: Range2G,
		gyroScale:  FullScale500,
	}
}

func TestNew(t *testing.T) {
	resetDelay = 0
	pb := &i2ctest.Playback{Ops: initOps()}
	d, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewNotFound(t *testing.T) {
	resetDelay = 0
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: testAddr, W: []byte{regDeviceID}, R: []byte{0x12}}},
		DontPanic: true,
	}
	record := &i2ctest.Record{Bus: pb}
	if _, err := New(record, nil); err == nil {
		t.Fatal("expected a device id mismatch error")
	}
	// Nothing may be written to an unidentified device.
	if len(record.Ops) != 1 {
		t.Fatalf("expected the identity read to be the only transaction, got %#v", record.Ops)
	}
}

func TestAcceleration(t *testing.T) {
	// 16384 LSB at ±2g is exactly 1g.
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: testAddr, W: []byte{regAccelXout}, R: []byte{0x40, 0x00, 0xE0, 0x00, 0x00, 0x00}},
	}}
	d := testDev(pb)
	a, err := d.Acceleration()
	if err != nil {
		t.Fatal(err)
	}
	for i, axis := range []struct {
		got, want float64
	}{
		{a.X, 9.80665},
		{a.Y, -4.903325},
		{a.Z, 0},
	} {
		if math.Abs(axis.got-axis.want) > 1e-6 {
			t.Errorf("axis %d: got %gm/s², want %gm/s²", i, axis.got, axis.want)
		}
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAccelerationUsesRangeMirror(t *testing.T) {
	// After switching to ±8g, 4096 LSB is 1g.
	ops := bank2Ops(
		i2ctest.IO{Addr: testAddr, W: []byte{regAccelConfig}, R: []byte{0x01}},
		i2ctest.IO{Addr: testAddr, W: []byte{regAccelConfig, 0x05}},
	)
	ops = append(ops, i2ctest.IO{Addr: testAddr, W: []byte{regAccelXout}, R: []byte{0x10, 0x00, 0x00, 0x00, 0x00, 0x00}})
	pb := &i2ctest.Playback{Ops: ops}
	d := testDev(pb)
	if err := d.SetAccelRange(Range8G); err != nil {
		t.Fatal(err)
	}
	a, err := d.Acceleration()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.X-gravity) > 1e-6 {
		t.Errorf("got %gm/s², want %gm/s²", a.X, gravity)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAngularVelocity(t *testing.T) {
	// 655 LSB at ±500°/s is 10°/s.
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: testAddr, W: []byte{regGyroXout}, R: []byte{0x02, 0x8F, 0xFD, 0x71, 0x00, 0x00}},
	}}
	d := testDev(pb)
	g, err := d.AngularVelocity()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.X-10) > 1e-6 || math.Abs(g.Y+10) > 1e-6 || math.Abs(g.Z) > 1e-6 {
		t.Errorf("got %s, want X:10°/s Y:-10°/s Z:0°/s", g)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestTemperature sweeps the sensor's rated range and checks that the raw
// word 333.87×(T−21) converts back to T.
func TestTemperature(t *testing.T) {
	var ops []i2ctest.IO
	var want []float64
	for temp := -40.0; temp <= 85.0; temp += 2.5 {
		raw := int16(math.Round(333.87 * (temp - 21)))
		r := make([]byte, 8)
		binary.BigEndian.PutUint16(r[6:], uint16(raw))
		ops = append(ops, i2ctest.IO{Addr: testAddr, W: []byte{regGyroXout}, R: r})
		want = append(want, temp)
	}
	pb := &i2ctest.Playback{Ops: ops}
	d := testDev(pb)
	for _, temp := range want {
		got, err := d.Temperature()
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got.Celsius()-temp) > 0.01 {
			t.Errorf("got %.4f°C, want %.4f°C", got.Celsius(), temp)
		}
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSense(t *testing.T) {
	// 1335 LSB is 24.9988°C.
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: testAddr, W: []byte{regGyroXout}, R: []byte{0, 0, 0, 0, 0, 0, 0x05, 0x37}},
	}}
	d := testDev(pb)
	env := physic.Env{}
	if err := d.Sense(&env); err != nil {
		t.Fatal(err)
	}
	want := 1335/333.87 + 21
	if math.Abs(env.Temperature.Celsius()-want) > 1e-4 {
		t.Errorf("got %.4f°C, want %.4f°C", env.Temperature.Celsius(), want)
	}
	if env.Pressure != 0 || env.Humidity != 0 {
		t.Error("pressure and humidity must stay unset")
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestBankRestored verifies that a bank 2 access always parks the bank
// selector back on bank 0, where the measurement registers live.
func TestBankRestored(t *testing.T) {
	pb := &i2ctest.Playback{Ops: bank2Ops(
		i2ctest.IO{Addr: testAddr, W: []byte{regGyroSmplrtDiv}, R: []byte{0x0A}},
	)}
	record := &i2ctest.Record{Bus: pb}
	d := testDev(record)
	div, err := d.GyroRateDivisor()
	if err != nil {
		t.Fatal(err)
	}
	if div != 10 {
		t.Errorf("got divisor %d, want 10", div)
	}
	var bankWrites [][]byte
	for _, op := range record.Ops {
		if len(op.W) == 2 && op.W[0] == regBankSel {
			bankWrites = append(bankWrites, op.W)
		}
	}
	if len(bankWrites) == 0 {
		t.Fatal("expected writes to the bank select register")
	}
	if last := bankWrites[len(bankWrites)-1]; last[1]&0x30 != 0 {
		t.Errorf("bank selector left on %#x, want bank 0", last[1])
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestBankRestoredOnError verifies bank 0 is restored even when the bracketed
// register access fails mid-way.
func TestBankRestoredOnError(t *testing.T) {
	// The playback only knows the bank switch transactions, so the divisor
	// read itself fails. The restore writes must still be consumed.
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x00}},
			{Addr: testAddr, W: []byte{regBankSel, 0x20}},
			{Addr: testAddr, W: []byte{regBankSel}, R: []byte{0x20}},
			{Addr: testAddr, W: []byte{regBankSel, 0x00}},
		},
		DontPanic: true,
	}
	d := testDev(pb)
	if _, err := d.AccelRateDivisor(); err == nil {
		t.Fatal("expected the divisor read to fail")
	}
	if err := pb.Close(); err != nil {
		t.Fatalf("bank 0 was not restored after the failure: %v", err)
	}
}

func TestPrecision(t *testing.T) {
	d := testDev(&i2ctest.Record{})
	env := physic.Env{}
	d.Precision(&env)
	// One LSB is 1/333.87 K, a shade under 3mK.
	if env.Temperature < 2995*physic.MicroKelvin || env.Temperature > 2996*physic.MicroKelvin {
		t.Errorf("got precision %d, want 1/333.87K", env.Temperature)
	}
	if env.Pressure != 0 || env.Humidity != 0 {
		t.Error("pressure and humidity precision must stay unset")
	}
}

func TestSenseContinuous(t *testing.T) {
	// Raw temperature words and the readings they decode to.
	tests := []struct {
		raw  int16
		want float64
	}{
		{0, 21},
		{1335, 1335/333.87 + 21},
		{-13355, -13355.0/333.87 + 21},
	}
	var ops []i2ctest.IO
	for _, tc := range tests {
		r := make([]byte, 8)
		binary.BigEndian.PutUint16(r[6:], uint16(tc.raw))
		ops = append(ops, i2ctest.IO{Addr: testAddr, W: []byte{regGyroXout}, R: r})
	}
	// Halt parks the device in sleep mode once the channel is drained.
	ops = append(ops,
		i2ctest.IO{Addr: testAddr, W: []byte{regPwrMgmt1}, R: []byte{0x01}},
		i2ctest.IO{Addr: testAddr, W: []byte{regPwrMgmt1, 0x41}},
	)
	// The ticker can fire again between the last reading and Halt; such a
	// read finds no matching transaction and must only fail, not panic.
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d := testDev(pb)
	ch, err := d.SenseContinuous(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.SenseContinuous(10 * time.Millisecond); err == nil {
		t.Error("expected a second SenseContinuous to be refused")
	}
	for _, tc := range tests {
		env := <-ch
		if math.Abs(env.Temperature.Celsius()-tc.want) > 0.01 {
			t.Errorf("got %.4f°C, want %.4f°C", env.Temperature.Celsius(), tc.want)
		}
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected the channel to close after Halt")
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: testAddr, W: []byte{regPwrMgmt1}, R: []byte{0x01}},
		{Addr: testAddr, W: []byte{regPwrMgmt1, 0x41}},
	}}
	d := testDev(pb)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}
