// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// EulerReader is the part of the sensor a Source needs.
type EulerReader interface {
	EulerAngles() (bno055.Euler, error)
	AngleUnits() bno055.AngleUnit
}

type sensorSource struct {
	r EulerReader
}

// NewSensorSource returns a Source reading the fused orientation of a
// BNO055.
func NewSensorSource(r EulerReader) Source {
	return &sensorSource{r: r}
}

func (s *sensorSource) Next() (Pose, error) {
	e, err := s.r.EulerAngles()
	if err != nil {
		return Pose{}, fmt.Errorf("orientation: %w", err)
	}
	return PoseFromEuler(e, s.r.AngleUnits()), nil
}
