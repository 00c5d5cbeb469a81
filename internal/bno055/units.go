// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

import "fmt"

// OperatingMode is a value of the OPR_MODE low nibble.
type OperatingMode byte

// ModeNDOF is the 9 degrees of freedom fusion mode (accel + gyro + mag).
// It is the only mode SetMode acts on; other values are reserved.
const ModeNDOF OperatingMode = oprModeNDOF

func (m OperatingMode) String() string {
	if m == ModeNDOF {
		return "NDOF"
	}
	return fmt.Sprintf("OperatingMode(0x%02X)", byte(m))
}

// AngleUnit selects the encoding of the Euler and gyroscope outputs.
type AngleUnit int

const (
	Degrees AngleUnit = iota
	Radians
)

func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	}
	return fmt.Sprintf("AngleUnit(%d)", int(u))
}

// lsb returns the raw counts per unit.
func (u AngleUnit) lsb() float64 {
	if u == Radians {
		return lsbPerRadian
	}
	return lsbPerDegree
}

// ParseAngleUnit accepts "deg", "degrees", "rad" and "radians".
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch s {
	case "deg", "degrees":
		return Degrees, nil
	case "rad", "radians":
		return Radians, nil
	}
	return 0, fmt.Errorf("bno055: unknown angle unit %q", s)
}

// AccelUnit selects the encoding of the acceleration output.
type AccelUnit int

const (
	MetersPerSecondSquared AccelUnit = iota
	Milligee
)

func (u AccelUnit) String() string {
	switch u {
	case MetersPerSecondSquared:
		return "m/s2"
	case Milligee:
		return "mg"
	}
	return fmt.Sprintf("AccelUnit(%d)", int(u))
}

func (u AccelUnit) lsb() float64 {
	if u == Milligee {
		return lsbPerMilligee
	}
	return lsbPerMPS2
}

// ParseAccelUnit accepts "mps2", "m/s2", "si", "mg" and "milligee".
func ParseAccelUnit(s string) (AccelUnit, error) {
	switch s {
	case "mps2", "m/s2", "si":
		return MetersPerSecondSquared, nil
	case "mg", "milligee":
		return Milligee, nil
	}
	return 0, fmt.Errorf("bno055: unknown acceleration unit %q", s)
}
