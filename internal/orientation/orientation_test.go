package orientation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	e    bno055.Euler
	unit bno055.AngleUnit
	err  error
}

func (f fakeReader) EulerAngles() (bno055.Euler, error) { return f.e, f.err }
func (f fakeReader) AngleUnits() bno055.AngleUnit       { return f.unit }

func TestPoseFromEuler(t *testing.T) {
	p := PoseFromEuler(bno055.Euler{Heading: 90, Roll: 10, Pitch: -5}, bno055.Degrees)
	assert.Equal(t, Pose{Roll: 10, Pitch: -5, Yaw: 90}, p)

	p = PoseFromEuler(bno055.Euler{Heading: math.Pi, Roll: math.Pi / 2, Pitch: -math.Pi / 4}, bno055.Radians)
	assert.InDelta(t, 180, p.Yaw, 1e-9)
	assert.InDelta(t, 90, p.Roll, 1e-9)
	assert.InDelta(t, -45, p.Pitch, 1e-9)
}

func TestSensorSource(t *testing.T) {
	src := NewSensorSource(fakeReader{e: bno055.Euler{Heading: 1, Roll: 2, Pitch: 3}, unit: bno055.Degrees})
	p, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Pose{Roll: 2, Pitch: 3, Yaw: 1}, p)

	boom := errors.New("boom")
	_, err = NewSensorSource(fakeReader{err: boom}).Next()
	assert.ErrorIs(t, err, boom)
}

func TestMockSource(t *testing.T) {
	start := time.Unix(1000, 0)
	m := &MockSource{start: start, now: func() time.Time { return start.Add(2 * time.Second) }}

	p, err := m.Next()
	require.NoError(t, err)
	assert.InDelta(t, 60, p.Yaw, 1e-9)
	assert.InDelta(t, 20*math.Sin(2), p.Roll, 1e-9)

	s, err := m.NextSample()
	require.NoError(t, err)
	assert.Equal(t, "mock", s.Source)
	assert.Equal(t, "deg", s.AngleUnit)
	norm := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
	assert.InDelta(t, 9.80665, norm, 1e-9)
}

func TestPoseFromSample(t *testing.T) {
	p := PoseFromSample(imu.Sample{Heading: math.Pi / 2, Roll: 0, Pitch: -math.Pi / 2, AngleUnit: "rad"})
	assert.InDelta(t, 90, p.Yaw, 1e-9)
	assert.InDelta(t, -90, p.Pitch, 1e-9)

	p = PoseFromSample(imu.Sample{Heading: 12, Roll: 3, AngleUnit: ""})
	assert.Equal(t, Pose{Roll: 3, Yaw: 12}, p)
}
