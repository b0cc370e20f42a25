package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/american-pricer/src/handler"
	"github.com/jiaming2012/american-pricer/src/utils"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the pricer over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newService(); err != nil {
			return err
		}

		port := servePort
		if port == "" {
			port = utils.GetEnvOrDefault("PORT", "3000")
		}

		router := handler.NewRouter(svc)

		srv := &http.Server{
			Handler:     otelhttp.NewHandler(router, "pricer"),
			Addr:        fmt.Sprintf(":%s", port),
			ReadTimeout: 15 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Infof("listening on :%s", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case <-stop:
		case err := <-errCh:
			return fmt.Errorf("http: failed to listen and serve: %w", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}

		log.Info("Server gracefully stopped")

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (defaults to $PORT, then 3000).")
}
