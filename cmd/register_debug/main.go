// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	app.SetupLogging(cfg.LogLevel)

	log.Info("starting BNO055 register debug tool (standalone)")

	mgr := sensors.GetManager()
	if err := mgr.Init(); err != nil {
		log.Fatalf("failed to initialize BNO055: %v", err)
	}
	defer mgr.Close()

	h := app.NewRegisterDebugHandler(mgr, cfg.Writable)
	http.HandleFunc("/ws", h.HandleWS)

	// API endpoint for live sensor data
	http.HandleFunc("/api/imu", h.HandleSensorData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Infof("register debug tool listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
