package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"cpfgate/internal/app"
	"cpfgate/internal/directory"
	"cpfgate/internal/platform/config"
	"cpfgate/internal/platform/httpserver"
	"cpfgate/internal/platform/logger"
	"cpfgate/internal/platform/metrics"
	"cpfgate/internal/resource"
	httptransport "cpfgate/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		// keep serving: requests resolve to configuration errors
		log.ErrorContext(ctx, "configuration incomplete", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gateway := app.New(ctx, cfg, log, reg)

	health := make(map[string]httptransport.HealthCheck, len(gateway.Health))
	for name, check := range gateway.Health {
		health[name] = check
	}
	deps := httptransport.Deps{
		Authorize: httptransport.NewAuthorizeHandler(gateway.Authorizer, cfg.Auth.DefaultResource, log),
		Lookup:    directory.NewHandler(gateway.Lookup),
		Protected: resource.NewHandler(log),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Health:    health,
		Logger:    log,
	}
	if gateway.Signer != nil {
		deps.TokenValidator = gateway.Signer
	}
	srv := httpserver.New(cfg.Server, httptransport.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting cpfgate", "addr", cfg.Server.Addr, "strategy", gateway.Strategy.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.InfoContext(shutdownCtx, "shutting down")
		return errors.Join(srv.Shutdown(shutdownCtx), gateway.Close(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
