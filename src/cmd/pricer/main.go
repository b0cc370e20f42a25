package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/american-pricer/src/eventpubsub"
	"github.com/jiaming2012/american-pricer/src/logger"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/service"
	"github.com/jiaming2012/american-pricer/src/telemetry"
	"github.com/jiaming2012/american-pricer/src/utils"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	envDir     string

	cfg               *models.PricerConfigYAML
	svc               *service.PricingService
	shutdownTelemetry telemetry.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:                "pricer",
	Short:              "Prices American calls with discrete cash dividends on a finite-difference grid.",
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func setup(cmd *cobra.Command, args []string) error {
	if err := utils.InitEnvironmentVariables(envDir); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	level := logLevel
	if level == "" {
		level = utils.GetEnvOrDefault("LOG_LEVEL", "info")
	}

	format := logFormat
	if format == "" {
		format = utils.GetEnvOrDefault("LOG_FORMAT", logger.FormatText)
	}

	if err := logger.Setup(level, format); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("PRICER_CONFIG")
	}

	var err error
	if cfg, err = utils.LoadPricerConfig(path); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	endpoint := utils.GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	insecure := strings.HasPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")

	shutdownTelemetry, err = telemetry.Setup(cmd.Context(), telemetry.Config{
		Endpoint:     endpoint,
		Insecure:     insecure,
		RuntimeStats: cmd.Name() == "serve",
	})
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	eventpubsub.Init()

	return nil
}

// newService is called after flags have been folded into cfg.
func newService() error {
	var err error
	if svc, err = service.NewPricingService(cfg); err != nil {
		return err
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if shutdownTelemetry == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownTelemetry(ctx); err != nil {
		log.Warnf("telemetry shutdown: %v", err)
	}

	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML pricer config (defaults to $PRICER_CONFIG).")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (defaults to $LOG_LEVEL, then info).")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (defaults to $LOG_FORMAT).")
	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "Directory holding .env.development / .env.production.")

	rootCmd.AddCommand(priceCmd, impliedVolCmd, batchCmd, convergenceCmd, serveCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
