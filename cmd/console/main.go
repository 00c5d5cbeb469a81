// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	useMock := flag.Bool("mock", false, "print the mock orientation instead of reading the BNO055")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	app.SetupLogging(config.Get().LogLevel)

	log.Info("starting orientation-computer console")
	if err := app.RunConsole(*useMock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
