// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icm20948

import "fmt"

// readBits returns the width-bit wide field at shift inside the register.
func (d *Dev) readBits(reg byte, width, shift uint) (byte, error) {
	v, err := d.regs.ReadUint8(reg)
	if err != nil {
		return 0, err
	}
	return v >> shift & (1<<width - 1), nil
}

// writeBits replaces the width-bit wide field at shift inside the register,
// preserving the other bits with a read-modify-write cycle.
func (d *Dev) writeBits(reg byte, width, shift uint, value byte) error {
	v, err := d.regs.ReadUint8(reg)
	if err != nil {
		return err
	}
	mask := byte(1<<width-1) << shift
	v = v&^mask | value<<shift&mask
	return d.regs.WriteUint8(reg, v)
}

// selectBank maps one of the four register banks into the address space.
// REG_BANK_SEL itself is reachable from every bank.
func (d *Dev) selectBank(bank byte) error {
	return d.writeBits(regBankSel, 2, shiftUserBank, bank)
}

// inBank2 runs op with user bank 2 selected and restores bank 0 afterwards,
// also when op fails. The measurement registers all live in bank 0, so no
// operation may leave another bank selected.
func (d *Dev) inBank2(op func() error) error {
	if err := d.selectBank(2); err != nil {
		return err
	}
	err := op()
	if restoreErr := d.selectBank(0); err == nil {
		err = restoreErr
	}
	return err
}

func wrapf(format string, a ...interface{}) error {
	return fmt.Errorf("icm20948: "+format, a...)
}
