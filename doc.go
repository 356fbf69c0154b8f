// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package icm20948 controls an InvenSense ICM-20948 accelerometer/gyroscope
// over I²C.
//
// The device exposes its registers through four switchable "user banks"; the
// driver handles the bank selection transparently and always leaves bank 0,
// where the measurement registers live, selected.
//
// Acceleration is returned in m/s², angular velocity in °/s (the native unit
// of the device's full scale settings) and temperature as a
// physic.Temperature. The icm20948.Dev type implements the physic.SenseEnv
// interface for the temperature sensor.
//
// The magnetometer behind the chip's auxiliary I²C master is not supported.
//
// # Datasheet
//
// https://invensense.tdk.com/wp-content/uploads/2016/06/DS-000189-ICM-20948-v1.3.pdf
package icm20948
