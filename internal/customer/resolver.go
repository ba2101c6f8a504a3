package customer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cpfgate/internal/customer")

// Observer receives resolution outcomes. decision/metrics implements it.
type Observer interface {
	ObserveResolve(result string, d time.Duration)
}

// Resolver answers "is this CPF a customer" against the configured datastore.
type Resolver struct {
	secrets  SecretStore
	store    Datastore
	lookup   Lookup
	logger   *slog.Logger
	observer Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithObserver records resolution latency and outcome.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// NewResolver constructs a Resolver.
func NewResolver(secrets SecretStore, store Datastore, lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		secrets: secrets,
		store:   store,
		lookup:  lookup,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckConfig reports configuration problems without performing any I/O.
func (r *Resolver) CheckConfig() error {
	if r.secrets == nil || r.store == nil {
		return ErrConfiguration
	}
	return r.lookup.Validate()
}

// Resolve fetches credentials, opens a scoped session, runs one parameterized
// existence query and releases the session on every path. Failures come back as
// *ResolveError; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, cpf string) (res Resolution, err error) {
	ctx, span := tracer.Start(ctx, "customer.Resolve")
	start := time.Now()
	defer func() {
		r.observe(res, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(KindOf(err)))
		} else {
			span.SetAttributes(attribute.Bool("customer.found", res.Found))
		}
		span.End()
	}()

	creds, err := r.secrets.Fetch(ctx, r.lookup.SecretID)
	if err != nil {
		return Resolution{}, newResolveError(KindSecretUnavailable, err)
	}

	session, err := r.store.Open(ctx, creds)
	if err != nil {
		return Resolution{}, newResolveError(KindConnectionFailed, err)
	}
	defer func() {
		if cerr := session.Close(context.WithoutCancel(ctx)); cerr != nil {
			r.logger.WarnContext(ctx, "failed to close customer datastore session", "error", cerr)
		}
	}()

	found, err := session.ExistsByColumn(ctx, r.lookup.Table, r.lookup.Column, cpf)
	if err != nil {
		return Resolution{}, newResolveError(KindQueryFailed, err)
	}
	return Resolution{Found: found}, nil
}

func (r *Resolver) observe(res Resolution, err error, d time.Duration) {
	if r.observer == nil {
		return
	}
	result := "not_found"
	switch {
	case err != nil:
		var re *ResolveError
		if errors.As(err, &re) {
			result = string(re.Kind)
		} else {
			result = "error"
		}
	case res.Found:
		result = "found"
	}
	r.observer.ObserveResolve(result, d)
}
