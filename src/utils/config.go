package utils

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/american-pricer/src/models"
)

// LoadPricerConfig reads a YAML config and fills defaults. An empty path
// returns the defaults.
func LoadPricerConfig(path string) (*models.PricerConfigYAML, error) {
	cfg := &models.PricerConfigYAML{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadPricerConfig: failed to read %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("LoadPricerConfig: failed to parse %s: %w", path, err)
		}

		log.Debugf("loaded pricer config from %s", path)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPricerConfig: %w", err)
	}

	return cfg, nil
}
