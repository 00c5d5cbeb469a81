package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/cli"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
