// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

// Page 0 register map.
const (
	regChipID    = 0x00
	regPageID    = 0x07
	regAccelData = 0x08 // X LSB, X MSB, Y LSB, Y MSB, Z LSB, Z MSB
	regMagData   = 0x0E
	regGyroData  = 0x14
	regEulerData = 0x1A // heading, roll, pitch
	regEulerRoll = 0x1C
	regEulerPtch = 0x1E
	regQuatData  = 0x20 // W, X, Y, Z
	regTemp      = 0x34
	regSysTrig   = 0x3F
)

// Registers callers address directly.
const (
	RegUnitSel = 0x3B // written through SetAngleUnits and SetAccelerationUnits
	RegOprMode = 0x3D
)

// UNIT_SEL bits.
const (
	unitAccelMilligee = 1 << 0
	unitGyroRadians   = 1 << 1
	unitEulerRadians  = 1 << 2
	unitTempFahrenh   = 1 << 4
)

// OPR_MODE fields.
const (
	oprModeKeepMask = 0xF0 // bits preserved across a mode change
	oprModeConfig   = 0x00
	oprModeNDOF     = 0x0C
)

// Resolution of the output registers.
const (
	lsbPerDegree   = 16.0
	lsbPerRadian   = 900.0
	lsbPerMPS2     = 100.0
	lsbPerMilligee = 1.0
	lsbPerMicroT   = 16.0
	lsbPerQuatUnit = 1 << 14
)

// burstLen is the length of the contiguous accel, mag, gyro and Euler block.
const burstLen = regQuatData - regAccelData
