package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

// RunConsoleMQTT prints every pose and sample published by the producer.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeConsole(client, cfg, os.Stdout); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("console: shutting down")
	return nil
}

func subscribeConsole(s subscriber, cfg *config.Config, w io.Writer) error {
	if err := subscribeJSON(s, cfg.TopicPose, func(p orientation.Pose) {
		printPose(w, "POSE", p)
	}); err != nil {
		return err
	}
	return subscribeJSON(s, cfg.TopicIMU, func(smp imu.Sample) {
		printSample(w, smp)
	})
}

func printPose(w io.Writer, tag string, p orientation.Pose) {
	fmt.Fprintf(w, "[%-4s]  ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f\n", tag, p.Roll, p.Pitch, p.Yaw)
}

func printSample(w io.Writer, s imu.Sample) {
	fmt.Fprintf(w,
		"[IMU ]  a=(%8.2f %8.2f %8.2f) %s  g=(%8.2f %8.2f %8.2f) %s/s  m=(%7.1f %7.1f %7.1f) uT\n",
		s.Ax, s.Ay, s.Az, s.AccelUnit,
		s.Gx, s.Gy, s.Gz, s.AngleUnit,
		s.Mx, s.My, s.Mz,
	)
}
