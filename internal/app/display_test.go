package app

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

type fakeScreen struct {
	drawn image.Image
}

func (s *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, displayWidth, displayHeight) }

func (s *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	s.drawn = src
	return nil
}

func TestRenderPose(t *testing.T) {
	waiting := renderPose(orientation.Pose{}, false)
	shown := renderPose(orientation.Pose{Roll: 10, Pitch: -20, Yaw: 300}, true)

	assert.Equal(t, image.Rect(0, 0, displayWidth, displayHeight), shown.Bounds())
	assert.Greater(t, litPixels(waiting), 0)
	assert.Greater(t, litPixels(shown), 0)
	assert.NotEqual(t, waiting.Pix, shown.Pix)
}

func TestRenderSample(t *testing.T) {
	a := renderSample(imu.Sample{Ax: 1, AccelUnit: "m/s2", AngleUnit: "deg"}, true)
	b := renderSample(imu.Sample{Ax: 2, AccelUnit: "m/s2", AngleUnit: "deg"}, true)
	assert.NotEqual(t, a.Pix, b.Pix)
}

func TestDisplayDataRender(t *testing.T) {
	data := &DisplayData{}
	broker := newFakeBroker()
	require.NoError(t, subscribeJSON(broker, "pose", data.setPose))
	require.NoError(t, subscribeJSON(broker, "imu", data.setSample))

	before := data.render("orientation")
	broker.deliver("pose", orientation.Pose{Yaw: 90})
	after := data.render("orientation")
	assert.NotEqual(t, before.Pix, after.Pix)
	assert.Equal(t, renderPose(orientation.Pose{Yaw: 90}, true).Pix, after.Pix)

	broker.deliver("imu", imu.Sample{Gz: 5})
	assert.Equal(t, renderSample(imu.Sample{Gz: 5}, true).Pix, data.render("imu").Pix)

	screen := &fakeScreen{}
	require.NoError(t, show(screen, after))
	assert.Same(t, after, screen.drawn)
}

func TestNewDisplayUsesConfiguredAddress(t *testing.T) {
	for _, addr := range []uint16{0x3C, 0x3D} {
		rec := &i2ctest.Record{}
		dev, err := newDisplay(rec, addr)
		require.NoError(t, err)
		require.NotNil(t, dev)

		require.NotEmpty(t, rec.Ops)
		for _, op := range rec.Ops {
			assert.Equal(t, addr, op.Addr)
		}
	}
}
