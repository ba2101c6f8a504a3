// Package decision turns an extracted CPF into exactly one Decision.
//
// The engine walks presence, format, configuration and store access in that
// order and stops at the first terminal state. What a resolver failure or an
// unknown CPF becomes is fixed by the Strategy, never by the call site.
package decision

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cpfgate/internal/audit"
	"cpfgate/internal/customer"
	"cpfgate/internal/decision/metrics"
	"cpfgate/internal/decision/ports"
	"cpfgate/pkg/cpf"
	"cpfgate/pkg/platform/middleware/device"
	"cpfgate/pkg/requestcontext"
)

var tracer = otel.Tracer("cpfgate/internal/decision")

// Engine is safe for concurrent use; it holds no per-request state.
type Engine struct {
	strategy  Strategy
	resolver  ports.CustomerResolver
	validator *cpf.Validator
	checks    []func() error
	metrics   *metrics.Metrics
	auditor   ports.AuditPort
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithAuditor(a ports.AuditPort) Option {
	return func(e *Engine) {
		e.auditor = a
	}
}

// WithValidator replaces the default checksum-only validator.
func WithValidator(v *cpf.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithConfigCheck adds a check run before any store access. A non-nil error
// yields StateConfigurationMissing.
func WithConfigCheck(check func() error) Option {
	return func(e *Engine) {
		e.checks = append(e.checks, check)
	}
}

func NewEngine(strategy Strategy, resolver ports.CustomerResolver, opts ...Option) *Engine {
	e := &Engine{
		strategy:  strategy,
		resolver:  resolver,
		validator: cpf.NewValidator(),
		auditor:   audit.NopPublisher{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the strategy the engine was built with.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Decide never panics and never returns an error: every failure is a Deny or
// a guest Issue according to the strategy.
func (e *Engine) Decide(ctx context.Context, in Input) (d Decision) {
	ctx, span := tracer.Start(ctx, "decision.Decide",
		trace.WithAttributes(attribute.String("decision.strategy", e.strategy.Name)))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "decision panicked",
				"strategy", e.strategy.Name,
				"panic", r,
			)
			span.SetStatus(codes.Error, "panic")
			d = Decision{State: StateInternalError, Kind: KindDeny, Reason: ReasonInternal, Principal: DenyPrincipal}
		}
		e.record(ctx, span, d, time.Since(start))
		span.End()
	}()
	return e.decide(ctx, in)
}

func (e *Engine) decide(ctx context.Context, in Input) Decision {
	raw := strings.TrimSpace(in.CPF)
	if raw == "" {
		return deny(StateNoIdentifier, ReasonNotProvided, "")
	}

	id := raw
	if e.strategy.ValidateFormat {
		parsed, err := e.validator.Parse(raw)
		if err != nil {
			return deny(StateInvalidFormat, ReasonInvalid, "")
		}
		id = parsed.String()
	}

	if err := e.checkConfig(); err != nil {
		e.logger.ErrorContext(ctx, "decision configuration missing",
			"strategy", e.strategy.Name,
			"error", err,
		)
		return deny(StateConfigurationMissing, ReasonConfiguration, id)
	}

	res, err := e.resolver.Resolve(ctx, id)
	if err != nil {
		e.logger.WarnContext(ctx, "customer resolution failed",
			"strategy", e.strategy.Name,
			"kind", string(customer.KindOf(err)),
			"cpf_hash", cpf.Hash(id),
			"error", err,
		)
		if e.strategy.OnResolverError == FailOpen {
			return issue(StateResolverError, id, false)
		}
		return deny(StateResolverError, ReasonDatabase, id)
	}

	if res.Found {
		if e.strategy.Output == OutputPolicy {
			return Decision{State: StateResolvedFound, Kind: KindAllow, Principal: id, CPF: id, Customer: true}
		}
		return issue(StateResolvedFound, id, true)
	}
	if e.strategy.GuestIssuance {
		return issue(StateResolvedNotFound, id, false)
	}
	return deny(StateResolvedNotFound, ReasonNotFound, id)
}

func (e *Engine) checkConfig() error {
	if e.resolver == nil {
		return customer.ErrConfiguration
	}
	var errs []error
	for _, check := range e.checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deny(state State, reason, id string) Decision {
	return Decision{State: state, Kind: KindDeny, Reason: reason, Principal: DenyPrincipal, CPF: id}
}

func issue(state State, id string, isCustomer bool) Decision {
	return Decision{State: state, Kind: KindIssue, Principal: id, CPF: id, Customer: isCustomer}
}

func (e *Engine) record(ctx context.Context, span trace.Span, d Decision, elapsed time.Duration) {
	span.SetAttributes(
		attribute.String("decision.state", string(d.State)),
		attribute.String("decision.kind", string(d.Kind)),
	)
	e.metrics.IncrementOutcome(e.strategy.Name, string(d.State), string(d.Kind))
	e.metrics.ObserveDecideLatency(e.strategy.Name, elapsed)

	event := audit.Event{
		Action:     audit.ActionDecisionMade,
		Timestamp:  requestcontext.Now(ctx).UTC(),
		Strategy:   e.strategy.Name,
		State:      string(d.State),
		Decision:   string(d.Kind),
		Reason:     d.Reason,
		Customer:   d.Customer,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		DeviceName: device.Name(ctx),
	}
	if d.CPF != "" {
		event.SubjectIDHash = cpf.Hash(d.CPF)
	}
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to emit decision audit event",
			"request_id", event.RequestID,
			"error", err,
		)
	}

	e.logger.InfoContext(ctx, "decision made",
		"strategy", e.strategy.Name,
		"state", string(d.State),
		"kind", string(d.Kind),
		"reason", d.Reason,
		"request_id", event.RequestID,
	)
}
