package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// RunInertialProducer samples the BNO055 (or the mock source) and publishes
// poses and samples until SIGINT or SIGTERM.
func RunInertialProducer(useMock bool) error {
	log.Info("starting orientation producer")
	cfg := config.Get()

	var src imu.Source
	if useMock {
		log.Info("using mock orientation source")
		src = orientation.NewMockSource()
	} else {
		mgr := sensors.GetManager()
		if err := mgr.Init(); err != nil {
			return fmt.Errorf("failed to initialize BNO055: %w", err)
		}
		defer mgr.Close()
		src = mgr
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &producer{
		src:       src,
		pub:       client,
		topicPose: cfg.TopicPose,
		topicIMU:  cfg.TopicIMU,
		logEvery:  time.Duration(cfg.ConsoleLogInterval) * time.Millisecond,
	}
	log.Info("connected to MQTT, starting publish loop")
	p.run(ctx, time.Duration(cfg.IMUSampleInterval)*time.Millisecond)
	log.Info("producer: shutting down")
	return nil
}

type producer struct {
	src       imu.Source
	pub       publisher
	topicPose string
	topicIMU  string
	logEvery  time.Duration
	lastLog   time.Time
}

func (p *producer) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if err := p.tick(t); err != nil {
				log.WithError(err).Warn("producer tick failed")
			}
		}
	}
}

// tick reads one sample and publishes it with the pose derived from it. A
// failed read publishes nothing.
func (p *producer) tick(t time.Time) error {
	s, err := p.src.NextSample()
	if err != nil {
		return err
	}
	pose := orientation.PoseFromSample(s)

	if err := publishJSON(p.pub, p.topicPose, pose); err != nil {
		return err
	}
	if err := publishJSON(p.pub, p.topicIMU, s); err != nil {
		return err
	}

	if p.logEvery > 0 && t.Sub(p.lastLog) >= p.logEvery {
		p.lastLog = t
		log.WithFields(log.Fields{
			"roll":  fmt.Sprintf("%.2f", pose.Roll),
			"pitch": fmt.Sprintf("%.2f", pose.Pitch),
			"yaw":   fmt.Sprintf("%.2f", pose.Yaw),
			"accel": fmt.Sprintf("%.2f %.2f %.2f %s", s.Ax, s.Ay, s.Az, s.AccelUnit),
			"gyro":  fmt.Sprintf("%.2f %.2f %.2f %s/s", s.Gx, s.Gy, s.Gz, s.AngleUnit),
		}).Info("tick")
	}
	return nil
}
