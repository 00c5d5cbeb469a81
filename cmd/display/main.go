package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	app.SetupLogging(config.Get().LogLevel)

	log.Info("starting orientation-computer display (MQTT subscriber)")
	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
