// Package authorizer adapts transport requests to the decision engine and
// renders decisions as either IAM-style policies or signed-token envelopes.
package authorizer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cpfgate/internal/decision"
	"cpfgate/pkg/cpf"
	"cpfgate/pkg/platform/httputil"
)

// Signer issues access tokens. *jwttoken.Service implements it.
type Signer interface {
	Issue(cpf string, customer bool) (string, time.Time, error)
}

// Decider is the decision engine contract.
type Decider interface {
	Decide(ctx context.Context, in decision.Input) decision.Decision
	Strategy() decision.Strategy
}

// Result holds exactly one of Policy or Response.
type Result struct {
	Policy   *Policy
	Response *Response
	Decision decision.Decision
}

type Authorizer struct {
	engine Decider
	signer Signer
	logger *slog.Logger
}

type Option func(*Authorizer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Authorizer) {
		a.logger = logger
	}
}

// New builds an Authorizer. signer may be nil for the policy shape; a token
// strategy without a signer answers every granted decision with 500.
func New(engine Decider, signer Signer, opts ...Option) *Authorizer {
	a := &Authorizer{
		engine: engine,
		signer: signer,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SignerCheck reports a missing signer as a configuration problem. It is
// meant for decision.WithConfigCheck so the store is never touched first.
func SignerCheck(signer Signer, signerErr error) func() error {
	return func() error {
		if signerErr != nil {
			return signerErr
		}
		if signer == nil {
			return errMissingSigner
		}
		return nil
	}
}

// Authorize runs one request through extraction, decision and rendering.
func (a *Authorizer) Authorize(ctx context.Context, req Request) (res Result) {
	strategy := a.engine.Strategy()
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "authorizer panicked", "strategy", strategy.Name, "panic", r)
			res = a.internalError(strategy, req.Resource)
		}
	}()

	raw, err := ExtractCPF(req.Headers, req.Body)
	if err != nil {
		a.logger.InfoContext(ctx, "rejected malformed request body", "strategy", strategy.Name)
		if strategy.Output == decision.OutputPolicy {
			p := RenderPolicy(decision.Decision{Kind: decision.KindDeny, Reason: ErrMalformedBody.Message}, req.Resource)
			return Result{Policy: &p}
		}
		r := messageResponse(http.StatusBadRequest, ErrMalformedBody.Message)
		return Result{Response: &r}
	}

	d := a.engine.Decide(ctx, decision.Input{CPF: raw})
	res.Decision = d

	if strategy.Output == decision.OutputPolicy {
		p := RenderPolicy(d, req.Resource)
		res.Policy = &p
		return res
	}

	r := a.renderToken(ctx, d)
	res.Response = &r
	return res
}

func (a *Authorizer) renderToken(ctx context.Context, d decision.Decision) Response {
	if d.Kind != decision.KindIssue {
		return denialResponse(d)
	}
	if a.signer == nil {
		a.logger.ErrorContext(ctx, "token requested without a signing key")
		return messageResponse(http.StatusInternalServerError, decision.ReasonConfiguration)
	}
	token, _, err := a.signer.Issue(d.CPF, d.Customer)
	if err != nil || token == "" {
		a.logger.ErrorContext(ctx, "failed to sign token", "cpf_hash", cpf.Hash(d.CPF), "error", err)
		return messageResponse(http.StatusInternalServerError, httputil.GenericInternalMessage)
	}
	return tokenResponse(token)
}

func (a *Authorizer) internalError(strategy decision.Strategy, resource string) Result {
	d := decision.Decision{State: decision.StateInternalError, Kind: decision.KindDeny, Reason: decision.ReasonInternal}
	if strategy.Output == decision.OutputPolicy {
		p := RenderPolicy(d, resource)
		return Result{Policy: &p, Decision: d}
	}
	r := messageResponse(http.StatusInternalServerError, httputil.GenericInternalMessage)
	return Result{Response: &r, Decision: d}
}
