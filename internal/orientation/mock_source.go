// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// MockSource generates a slowly turning, rocking orientation. It serves both
// poses and full samples so the tools run without hardware.
type MockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock source starting now.
func NewMockSource() *MockSource {
	return &MockSource{start: time.Now(), now: time.Now}
}

func (m *MockSource) euler() bno055.Euler {
	elapsed := m.now().Sub(m.start).Seconds()
	return bno055.Euler{
		Heading: math.Mod(elapsed*30, 360),
		Roll:    20 * math.Sin(elapsed),
		Pitch:   15 * math.Cos(elapsed*0.7),
	}
}

// Next implements Source.
func (m *MockSource) Next() (Pose, error) {
	return PoseFromEuler(m.euler(), bno055.Degrees), nil
}

// NextSample implements imu.Source. Gravity is projected from roll and
// pitch; rates and field are fixed.
func (m *MockSource) NextSample() (imu.Sample, error) {
	e := m.euler()
	roll := e.Roll * math.Pi / 180
	pitch := e.Pitch * math.Pi / 180
	const g = 9.80665
	return imu.FromReading("mock", m.now(), bno055.Reading{
		Angle: bno055.Degrees,
		Accel: bno055.MetersPerSecondSquared,
		Acceleration: bno055.Vector{
			X: -g * math.Sin(pitch),
			Y: g * math.Sin(roll) * math.Cos(pitch),
			Z: g * math.Cos(roll) * math.Cos(pitch),
		},
		Gyroscope:    bno055.Vector{Z: 30},
		Magnetometer: bno055.Vector{X: 22, Z: -42},
		Orientation:  e,
	}), nil
}
