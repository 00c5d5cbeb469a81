// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bno055 controls a Bosch BNO055 9-axis absolute orientation sensor
// over I²C.
//
// The bus is shared with the caller: the driver never closes or reconfigures
// it and holds no lock. When several goroutines or drivers use the same bus,
// the caller serializes the transactions.
//
// Datasheet: https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bno055-ds000.pdf
package bno055

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ChipID is the content of the chip ID register of every BNO055.
const ChipID = 0xA0

// I²C addresses, selected by the COM3 pin.
const (
	DefaultAddr   uint16 = 0x28
	AlternateAddr uint16 = 0x29
)

// SettleDelay is the quiet time the device needs after an operating mode
// change before registers can be accessed again.
const SettleDelay = 7 * time.Millisecond

// ConfigDelay is the quiet time after switching from a fusion mode to CONFIG.
const ConfigDelay = 19 * time.Millisecond

// BusError reports the failed step of a register transaction.
type BusError struct {
	Op  string // "select", "read" or "write"
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bno055: %s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Euler is an orientation in the selected angle unit.
type Euler struct {
	Heading float64 `json:"heading"`
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
}

// Vector is a three axis measurement.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is the unit quaternion produced by the fusion engine.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Reading holds the output of one Sense call. All four vectors come from the
// same burst read.
type Reading struct {
	Accel AccelUnit `json:"-"`
	Angle AngleUnit `json:"-"`

	Acceleration Vector `json:"accel"`
	Magnetometer Vector `json:"mag"` // µT
	Gyroscope    Vector `json:"gyro"`
	Orientation  Euler  `json:"euler"`
}

// Dev is a handle to one BNO055.
type Dev struct {
	dev        i2c.Dev
	angleUnits AngleUnit
	accelUnits AccelUnit
}

// New returns a driver for the device at addr on bus. An addr of 0 selects
// DefaultAddr. No bus traffic happens until the first call.
//
// The unit cache starts at the device power-on state: degrees and m/s².
func New(bus i2c.Bus, addr uint16) *Dev {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &Dev{
		dev:        i2c.Dev{Addr: addr, Bus: bus},
		angleUnits: Degrees,
		accelUnits: MetersPerSecondSquared,
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("BNO055{%s, 0x%02X}", d.dev.Bus, d.dev.Addr)
}

// Addr returns the I²C address of the device.
func (d *Dev) Addr() uint16 { return d.dev.Addr }

// AngleUnits returns the angle unit last written successfully.
func (d *Dev) AngleUnits() AngleUnit { return d.angleUnits }

// AccelerationUnits returns the acceleration unit last written successfully.
func (d *Dev) AccelerationUnits() AccelUnit { return d.accelUnits }

// CheckID reads the chip ID register. Compare the result with ChipID.
//
// Bus errors are logged and not returned; a failed read yields 0.
func (d *Dev) CheckID() byte {
	id, err := d.ReadRegister(regChipID)
	if err != nil {
		log.WithError(err).Warn("bno055: chip ID read failed")
	}
	return id
}

// SetMode selects the operating mode and waits SettleDelay.
//
// For ModeNDOF the low nibble of OPR_MODE is replaced and the high nibble is
// kept. Other modes write the register back unchanged. Bus errors are logged
// and not returned.
func (d *Dev) SetMode(mode OperatingMode) {
	code, err := d.ReadRegister(RegOprMode)
	if err != nil {
		log.WithError(err).Warn("bno055: operating mode read failed")
	}
	if mode == ModeNDOF {
		code = code&oprModeKeepMask | oprModeNDOF
	}
	if err := d.WriteRegister(RegOprMode, code); err != nil {
		log.WithError(err).WithField("mode", mode).Warn("bno055: operating mode write failed")
	}
	time.Sleep(SettleDelay)
}

// Reconfigure runs fn with the device in CONFIG mode, where UNIT_SEL and the
// other configuration registers accept writes, then restores the previous
// operating mode. A device already in CONFIG is left as is.
//
// The previous mode is restored even when fn fails; both errors are returned.
func (d *Dev) Reconfigure(fn func() error) error {
	code, err := d.ReadRegister(RegOprMode)
	if err != nil {
		return err
	}
	if code&^oprModeKeepMask == oprModeConfig {
		return fn()
	}
	if err := d.WriteRegister(RegOprMode, code&oprModeKeepMask|oprModeConfig); err != nil {
		return err
	}
	time.Sleep(ConfigDelay)

	fnErr := fn()
	err = d.WriteRegister(RegOprMode, code)
	time.Sleep(SettleDelay)
	return errors.Join(fnErr, err)
}

// WritableInAnyMode reports whether reg takes writes outside CONFIG mode.
// Every other page 0 register must be written through Reconfigure.
func WritableInAnyMode(reg byte) bool {
	return reg == RegOprMode || reg == regPageID || reg == regSysTrig
}

// SetAngleUnits selects degrees or radians for both the Euler and the
// gyroscope outputs. The device only takes the write in CONFIG mode; see
// Reconfigure.
//
// The cached unit only changes once the write succeeded. A value other than
// Degrees or Radians leaves the bits alone, still writes the register and
// does not touch the cache.
func (d *Dev) SetAngleUnits(u AngleUnit) error {
	code, err := d.ReadRegister(RegUnitSel)
	if err != nil {
		return err
	}
	switch u {
	case Degrees:
		code &^= unitEulerRadians | unitGyroRadians
	case Radians:
		code |= unitEulerRadians | unitGyroRadians
	}
	if err := d.WriteRegister(RegUnitSel, code); err != nil {
		return err
	}
	if u == Degrees || u == Radians {
		d.angleUnits = u
	}
	return nil
}

// SetAccelerationUnits selects m/s² or milli-g for the acceleration output,
// with the same caching rules as SetAngleUnits.
func (d *Dev) SetAccelerationUnits(u AccelUnit) error {
	code, err := d.ReadRegister(RegUnitSel)
	if err != nil {
		return err
	}
	switch u {
	case MetersPerSecondSquared:
		code &^= unitAccelMilligee
	case Milligee:
		code |= unitAccelMilligee
	}
	if err := d.WriteRegister(RegUnitSel, code); err != nil {
		return err
	}
	if u == MetersPerSecondSquared || u == Milligee {
		d.accelUnits = u
	}
	return nil
}

// EulerAngles reads heading, roll and pitch in one burst.
//
// Pitch is negated so that a nose-up attitude reads positive.
func (d *Dev) EulerAngles() (Euler, error) {
	var buf [6]byte
	if err := d.burst(regEulerData, buf[:]); err != nil {
		return Euler{}, err
	}
	return d.euler(buf[:]), nil
}

// GyroData reads the angular rate of the three axes, in the angle unit per
// second.
func (d *Dev) GyroData() (Vector, error) {
	var buf [6]byte
	if err := d.burst(regGyroData, buf[:]); err != nil {
		return Vector{}, err
	}
	return vector(buf[:], d.angleUnits.lsb()), nil
}

// Acceleration reads the acceleration of the three axes.
func (d *Dev) Acceleration() (Vector, error) {
	var buf [6]byte
	if err := d.burst(regAccelData, buf[:]); err != nil {
		return Vector{}, err
	}
	return vector(buf[:], d.accelUnits.lsb()), nil
}

// Magnetometer reads the magnetic field in µT.
func (d *Dev) Magnetometer() (Vector, error) {
	var buf [6]byte
	if err := d.burst(regMagData, buf[:]); err != nil {
		return Vector{}, err
	}
	return vector(buf[:], lsbPerMicroT), nil
}

// Quaternion reads the fused orientation as a unit quaternion.
func (d *Dev) Quaternion() (Quaternion, error) {
	var buf [8]byte
	if err := d.burst(regQuatData, buf[:]); err != nil {
		return Quaternion{}, err
	}
	return Quaternion{
		W: float64(le16(buf[0:])) / lsbPerQuatUnit,
		X: float64(le16(buf[2:])) / lsbPerQuatUnit,
		Y: float64(le16(buf[4:])) / lsbPerQuatUnit,
		Z: float64(le16(buf[6:])) / lsbPerQuatUnit,
	}, nil
}

// Temperature reads the die temperature in whichever unit the device is set
// to report and returns it as a physic.Temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	sel, err := d.ReadRegister(RegUnitSel)
	if err != nil {
		return 0, err
	}
	raw, err := d.ReadRegister(regTemp)
	if err != nil {
		return 0, err
	}
	c := float64(int8(raw))
	if sel&unitTempFahrenh != 0 {
		// 2 LSB per °F
		c = (c/2 - 32) * 5 / 9
	}
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Kelvin)), nil
}

// Sense reads acceleration, magnetic field, angular rate and orientation in
// a single burst.
func (d *Dev) Sense() (Reading, error) {
	var buf [burstLen]byte
	if err := d.burst(regAccelData, buf[:]); err != nil {
		return Reading{}, err
	}
	return Reading{
		Accel:        d.accelUnits,
		Angle:        d.angleUnits,
		Acceleration: vector(buf[regAccelData-regAccelData:], d.accelUnits.lsb()),
		Magnetometer: vector(buf[regMagData-regAccelData:], lsbPerMicroT),
		Gyroscope:    vector(buf[regGyroData-regAccelData:], d.angleUnits.lsb()),
		Orientation:  d.euler(buf[regEulerData-regAccelData:]),
	}, nil
}

// ReadHeading reads the heading alone. Bus errors are logged and a failed
// read yields 0.
func (d *Dev) ReadHeading() float64 {
	return d.legacyAxis(regEulerData, 1)
}

// ReadRoll reads the roll alone, like ReadHeading.
func (d *Dev) ReadRoll() float64 {
	return d.legacyAxis(regEulerRoll, 1)
}

// ReadPitch reads the pitch alone, negated like in EulerAngles.
func (d *Dev) ReadPitch() float64 {
	return d.legacyAxis(regEulerPtch, -1)
}

func (d *Dev) legacyAxis(reg byte, sign float64) float64 {
	var buf [2]byte
	if err := d.burst(reg, buf[:]); err != nil {
		log.WithError(err).Warn("bno055: single axis read failed")
	}
	return sign * float64(le16(buf[:])) / d.angleUnits.lsb()
}

// ReadRegister reads one register. The register is selected and read in two
// separate transactions.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	var b [1]byte
	if err := d.dev.Tx([]byte{reg}, nil); err != nil {
		return 0, &BusError{Op: "select", Reg: reg, Err: err}
	}
	if err := d.dev.Tx(nil, b[:]); err != nil {
		return 0, &BusError{Op: "read", Reg: reg, Err: err}
	}
	return b[0], nil
}

// ReadRegisters reads len(buf) consecutive registers starting at reg with a
// repeated start.
func (d *Dev) ReadRegisters(reg byte, buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("bno055: read of register 0x%02X: empty buffer", reg)
	}
	return d.burst(reg, buf)
}

// WriteRegister writes one register.
func (d *Dev) WriteRegister(reg, v byte) error {
	if err := d.dev.Tx([]byte{reg, v}, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// burst selects reg and reads buf without releasing the bus, so the device
// cannot update the block halfway.
func (d *Dev) burst(reg byte, buf []byte) error {
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		return &BusError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

func (d *Dev) euler(b []byte) Euler {
	lsb := d.angleUnits.lsb()
	return Euler{
		Heading: float64(le16(b[0:])) / lsb,
		Roll:    float64(le16(b[2:])) / lsb,
		Pitch:   -float64(le16(b[4:])) / lsb,
	}
}

func vector(b []byte, lsb float64) Vector {
	return Vector{
		X: float64(le16(b[0:])) / lsb,
		Y: float64(le16(b[2:])) / lsb,
		Z: float64(le16(b[4:])) / lsb,
	}
}

// le16 assembles a little endian two's complement value.
func le16(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}
