package logging

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Configure sets level and formatter on the standard logrus logger.
// Unknown levels fall back to info.
func Configure(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if err != nil && level != "" {
		log.Warnf("⚠️  Unknown LOG_LEVEL %q, using info", level)
	}
}

// Silence discards log output, for tests.
func Silence() {
	log.SetOutput(io.Discard)
}
