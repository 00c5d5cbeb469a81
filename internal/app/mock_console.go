// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// RunConsole prints poses read straight from the sensor, or from the mock
// source, without going through MQTT.
func RunConsole(useMock bool) error {
	cfg := config.Get()

	var src orientation.Source
	if useMock {
		src = orientation.NewMockSource()
	} else {
		mgr := sensors.GetManager()
		if err := mgr.Init(); err != nil {
			return fmt.Errorf("failed to initialize BNO055: %w", err)
		}
		defer mgr.Close()
		src = orientation.NewSensorSource(mgr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return printPoses(ctx, src, time.Duration(cfg.IMUSampleInterval)*time.Millisecond, os.Stdout)
}

// printPoses prints one pose per interval until ctx is done. Read errors are
// logged and the loop goes on.
func printPoses(ctx context.Context, src orientation.Source, interval time.Duration, w io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pose, err := src.Next()
			if err != nil {
				log.WithError(err).Warn("console: orientation read failed")
				continue
			}
			printPose(w, "BNO", pose)
		}
	}
}
