package orientation

import (
	"math"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// Pose is the canonical representation of orientation for the app, in
// degrees whatever unit the sensor is set to.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// PoseFromEuler converts fused Euler angles reported in unit to a Pose.
// Yaw is the sensor heading.
func PoseFromEuler(e bno055.Euler, unit bno055.AngleUnit) Pose {
	scale := 1.0
	if unit == bno055.Radians {
		scale = 180.0 / math.Pi
	}
	return Pose{
		Roll:  e.Roll * scale,
		Pitch: e.Pitch * scale,
		Yaw:   e.Heading * scale,
	}
}

// PoseFromSample converts the Euler angles carried by a sample. An unknown
// unit string is taken as degrees.
func PoseFromSample(s imu.Sample) Pose {
	unit, err := bno055.ParseAngleUnit(s.AngleUnit)
	if err != nil {
		unit = bno055.Degrees
	}
	return PoseFromEuler(bno055.Euler{Heading: s.Heading, Roll: s.Roll, Pitch: s.Pitch}, unit)
}
