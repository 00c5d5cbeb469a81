package app

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the process logger. An unknown level falls back to
// info.
func SetupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
