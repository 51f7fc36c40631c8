// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/stacklok/toolhive-messaging/channel"
	"github.com/stacklok/toolhive-messaging/logger"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 10 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second // Must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout      = 60 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demonstration authorization server",
		Long: `Run an authorization server that exchanges protected messages:

  GET|POST /authorize  authorization requests, answered with signed redirects
  POST     /token      signed token requests (authorization_code, refresh_token)
  GET|POST /callback   echoes a verified indirect response as JSON
  GET      /metrics    Prometheus metrics of sent and received messages
  GET      /healthz    liveness check

Grants are kept in memory and lost on restart.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	cmd.Flags().String("address", ":8080", "Address to listen on")
	mustBind(v, "server.address", cmd.Flags().Lookup("address"))
	return cmd
}

// newMetrics returns a meter provider exporting to a dedicated Prometheus
// registry together with the handler serving that registry.
func newMetrics() (*sdkmetric.MeterProvider, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return mp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func runServe(ctx context.Context, v *viper.Viper) error {
	mp, metricsHandler, err := newMetrics()
	if err != nil {
		return err
	}
	defer func() { _ = mp.Shutdown(context.Background()) }()

	rt, err := loadRuntime(ctx, v, channel.WithMeterProvider(mp))
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	address := rt.cfg.Server.Address
	logger.Infof("Starting authorization server on %s", address)
	logger.Infof("Binding stack provides %s, nonce backend %s", rt.enforcement.Stack.Protections(), rt.cfg.Nonce.Backend)

	server := &http.Server{
		Addr:         address,
		Handler:      newRouter(newAuthServer(rt.channel, rt.logger), metricsHandler),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Infof("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logger.Infof("Server shutdown complete")
	return nil
}
