package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// screen is the part of *ssd1306.Dev the display loop draws on.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	pose       orientation.Pose
	havePose   bool
	sample     imu.Sample
	haveSample bool
}

func (d *DisplayData) setPose(p orientation.Pose) {
	d.mu.Lock()
	d.pose, d.havePose = p, true
	d.mu.Unlock()
}

func (d *DisplayData) setSample(s imu.Sample) {
	d.mu.Lock()
	d.sample, d.haveSample = s, true
	d.mu.Unlock()
}

// render draws the configured content from the latest data.
func (d *DisplayData) render(content string) *image1bit.VerticalLSB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if content == "imu" {
		return renderSample(d.sample, d.haveSample)
	}
	return renderPose(d.pose, d.havePose)
}

// RunDisplay shows the latest pose or sample received over MQTT on an
// SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	bus, err := sensors.OpenI2C(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	defer bus.Close()

	dev, err := newDisplay(bus, cfg.DisplayI2CAddr)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.WithField("addr", fmt.Sprintf("0x%02X", cfg.DisplayI2CAddr)).Info("display: initialized")

	if err := show(dev, renderLines(10, 26, "Orientation", "BNO055 NDOF")); err != nil {
		log.WithError(err).Warn("display: error showing splash")
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if cfg.DisplayContent == "imu" {
		err = subscribeJSON(client, cfg.TopicIMU, data.setSample)
	} else {
		err = subscribeJSON(client, cfg.TopicPose, data.setPose)
	}
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Info("display: starting update loop")
	for range ticker.C {
		if err := show(dev, data.render(cfg.DisplayContent)); err != nil {
			log.WithError(err).Warn("display: update error")
		}
	}
	return nil
}

// fixedAddrBus sends every transaction to addr, whatever address the caller
// passes. ssd1306.NewI2C always talks to 0x3C.
type fixedAddrBus struct {
	i2c.Bus
	addr uint16
}

func (b *fixedAddrBus) Tx(_ uint16, w, r []byte) error { return b.Bus.Tx(b.addr, w, r) }

// newDisplay initializes the SSD1306 at addr on bus.
func newDisplay(bus i2c.Bus, addr uint16) (*ssd1306.Dev, error) {
	return ssd1306.NewI2C(&fixedAddrBus{Bus: bus, addr: addr}, &ssd1306.DefaultOpts)
}

func show(dev screen, img image.Image) error {
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// renderLines draws text lines starting at baseline y, one every lineHeight
// pixels.
func renderLines(x, y int, lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(x, y+i*lineHeight)
		drawer.DrawString(line)
	}
	return img
}

func renderPose(p orientation.Pose, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines(0, 26, "Orientation", "Waiting...")
	}
	return renderLines(0, 13,
		fmt.Sprintf("R: %7.1f", p.Roll),
		fmt.Sprintf("P: %7.1f", p.Pitch),
		fmt.Sprintf("Y: %7.1f", p.Yaw),
	)
}

func renderSample(s imu.Sample, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines(0, 26, "IMU", "Waiting...")
	}
	return renderLines(0, 13,
		fmt.Sprintf("A:%6.1f %6.1f", s.Ax, s.Ay),
		fmt.Sprintf("  %6.1f %s", s.Az, s.AccelUnit),
		fmt.Sprintf("G:%6.1f %6.1f", s.Gx, s.Gy),
		fmt.Sprintf("  %6.1f %s/s", s.Gz, s.AngleUnit),
	)
}
