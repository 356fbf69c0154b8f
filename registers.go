// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948

// User bank 0 registers.
const (
	regDeviceID  byte = 0x00 // WHO_AM_I, reads 0xEA
	regPwrMgmt1  byte = 0x06 // Reset, sleep, temperature disable, clock select
	regPwrMgmt2  byte = 0x07 // Accelerometer/gyroscope axis disable
	regAccelXout byte = 0x2D // 3×int16 big-endian acceleration data
	regGyroXout  byte = 0x33 // 3×int16 big-endian gyroscope data, temperature follows
	regBankSel   byte = 0x7F // User bank select, reachable from every bank
)

// User bank 2 registers.
const (
	regGyroSmplrtDiv  byte = 0x00 // Gyroscope rate divisor, 1 byte
	regGyroConfig1    byte = 0x01 // Gyroscope DLPF choice, full scale, DLPF config
	regAccelSmplrtDiv byte = 0x10 // Accelerometer rate divisor, 2 bytes big-endian
	regAccelConfig    byte = 0x14 // Accelerometer DLPF choice, range, DLPF config
)

// Register PWR_MGMT_1 (0x06)
// | RESET | SLEEP | LP_EN | ---- | TEMP_DIS | CLKSEL(2) | CLKSEL(1) | CLKSEL(0) |
const (
	shiftClockSel uint = 0
	shiftTempDis  uint = 3
	shiftSleep    uint = 6
	shiftReset    uint = 7
)

// Register PWR_MGMT_2 (0x07)
// | -- | -- | DISABLE_ACCEL(2:0) | DISABLE_GYRO(2:0) |
const (
	shiftGyroDisable  uint = 0
	shiftAccelDisable uint = 3
)

// Registers ACCEL_CONFIG (0x14) and GYRO_CONFIG_1 (0x01) share a layout:
// | -- | -- | DLPFCFG(2) | DLPFCFG(1) | DLPFCFG(0) | FS_SEL(1) | FS_SEL(0) | FCHOICE |
const (
	shiftFilterChoice uint = 0
	shiftFullScale    uint = 1
	shiftFilterConfig uint = 3
)

// Register REG_BANK_SEL (0x7F)
// | -- | -- | USER_BANK(1) | USER_BANK(0) | -- | -- | -- | -- |
const shiftUserBank uint = 4

const deviceID byte = 0xEA
