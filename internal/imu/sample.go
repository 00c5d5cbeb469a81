package imu

import (
	"time"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// Sample is one scaled BNO055 reading, as published over MQTT.
type Sample struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Ax float64 `json:"ax"` // accel, AccelUnit
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // angular rate, AngleUnit per second
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Mx float64 `json:"mx"` // magnetometer, µT
	My float64 `json:"my"`
	Mz float64 `json:"mz"`

	Heading float64 `json:"heading"` // Euler, AngleUnit
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`

	AngleUnit string `json:"angle_unit"`
	AccelUnit string `json:"accel_unit"`
}

// FromReading flattens a driver reading into a Sample.
func FromReading(source string, t time.Time, r bno055.Reading) Sample {
	return Sample{
		Source:    source,
		Time:      t,
		Ax:        r.Acceleration.X,
		Ay:        r.Acceleration.Y,
		Az:        r.Acceleration.Z,
		Gx:        r.Gyroscope.X,
		Gy:        r.Gyroscope.Y,
		Gz:        r.Gyroscope.Z,
		Mx:        r.Magnetometer.X,
		My:        r.Magnetometer.Y,
		Mz:        r.Magnetometer.Z,
		Heading:   r.Orientation.Heading,
		Roll:      r.Orientation.Roll,
		Pitch:     r.Orientation.Pitch,
		AngleUnit: r.Angle.String(),
		AccelUnit: r.Accel.String(),
	}
}

// Source is anything that produces samples.
type Source interface {
	NextSample() (Sample, error)
}
