package logger

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup configures the package-level logrus logger. Warn and above are also
// recorded as events on the span carried by the entry's context.
func Setup(level, format string) error {
	if level == "" {
		level = "info"
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger.Setup: %v", err)
	}

	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	case FormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("logger.Setup: unknown format %q", format)
	}

	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
	)))

	return nil
}
