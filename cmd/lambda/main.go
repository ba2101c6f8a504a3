package main

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"cpfgate/internal/app"
	"cpfgate/internal/platform/config"
	"cpfgate/internal/platform/logger"
	lambdatransport "cpfgate/internal/transport/lambda"
)

// Handler names accepted by LAMBDA_HANDLER.
const (
	handlerAuthorizer = "authorizer"
	handlerToken      = "token"
	handlerLookup     = "lookup"
	handlerProtected  = "protected"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	name := strings.ToLower(strings.TrimSpace(os.Getenv("LAMBDA_HANDLER")))
	if name == "" {
		name = handlerAuthorizer
	}

	if name == handlerProtected {
		lambda.Start(lambdatransport.NewProtectedHandler(log).Handle)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.ErrorContext(ctx, "configuration incomplete", "error", err)
	}
	// metrics are not scraped inside lambda; the registry only satisfies wiring
	gateway := app.New(ctx, cfg, log, prometheus.NewRegistry())

	switch name {
	case handlerAuthorizer:
		lambda.Start(lambdatransport.NewPolicyHandler(gateway.Authorizer, log).Handle)
	case handlerToken:
		lambda.Start(lambdatransport.NewTokenHandler(gateway.Authorizer, log).Handle)
	case handlerLookup:
		lambda.Start(lambdatransport.NewLookupHandler(gateway.Lookup, log).Handle)
	default:
		log.ErrorContext(ctx, "unknown LAMBDA_HANDLER", "handler", name)
		os.Exit(1)
	}
}
