package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

type fakeSource struct {
	samples []imu.Sample
	err     error
	calls   int
}

func (f *fakeSource) NextSample() (imu.Sample, error) {
	f.calls++
	if f.err != nil {
		return imu.Sample{}, f.err
	}
	s := f.samples[0]
	if len(f.samples) > 1 {
		f.samples = f.samples[1:]
	}
	return s, nil
}

func TestProducerTickPublishesPoseAndSample(t *testing.T) {
	broker := newFakeBroker()
	src := &fakeSource{samples: []imu.Sample{{
		Source: "bno055", Heading: 3.14159265358979, Roll: 0, Pitch: 0.5,
		Ax: 1, AngleUnit: "rad", AccelUnit: "m/s2",
	}}}
	p := &producer{src: src, pub: broker, topicPose: "t/pose", topicIMU: "t/imu"}

	require.NoError(t, p.tick(time.Now()))
	require.Len(t, broker.published, 2)

	assert.Equal(t, "t/pose", broker.published[0].topic)
	assert.True(t, broker.published[0].retained)
	var pose orientation.Pose
	require.NoError(t, json.Unmarshal(broker.published[0].payload, &pose))
	assert.InDelta(t, 180, pose.Yaw, 1e-6)
	assert.InDelta(t, 28.6479, pose.Pitch, 1e-3)

	assert.Equal(t, "t/imu", broker.published[1].topic)
	var s imu.Sample
	require.NoError(t, json.Unmarshal(broker.published[1].payload, &s))
	assert.Equal(t, "bno055", s.Source)
	assert.Equal(t, 1.0, s.Ax)
}

func TestProducerTickReadErrorPublishesNothing(t *testing.T) {
	broker := newFakeBroker()
	boom := errors.New("nak")
	p := &producer{src: &fakeSource{err: boom}, pub: broker, topicPose: "p", topicIMU: "i"}

	assert.ErrorIs(t, p.tick(time.Now()), boom)
	assert.Empty(t, broker.published)
}

func TestProducerTickPublishError(t *testing.T) {
	broker := newFakeBroker()
	broker.publishErr = errBroker
	p := &producer{src: &fakeSource{samples: []imu.Sample{{}}}, pub: broker, topicPose: "p", topicIMU: "i"}

	err := p.tick(time.Now())
	assert.ErrorIs(t, err, errBroker)
	assert.Contains(t, err.Error(), "publish p")
}

func TestProducerRunStopsOnCancel(t *testing.T) {
	broker := newFakeBroker()
	src := &fakeSource{samples: []imu.Sample{{AngleUnit: "deg"}}}
	p := &producer{src: src, pub: broker, topicPose: "p", topicIMU: "i", logEvery: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	p.run(ctx, 5*time.Millisecond)

	assert.Greater(t, src.calls, 1)
	assert.Len(t, broker.published, 2*src.calls)
}

func TestProducerWithMockSource(t *testing.T) {
	broker := newFakeBroker()
	p := &producer{src: orientation.NewMockSource(), pub: broker, topicPose: "p", topicIMU: "i"}

	require.NoError(t, p.tick(time.Now()))
	var s imu.Sample
	require.NoError(t, json.Unmarshal(broker.published[1].payload, &s))
	assert.Equal(t, "mock", s.Source)
}
