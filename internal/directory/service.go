package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cpfgate/pkg/cpf"
	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/sentinel"
)

// Service validates the CPF before any directory call and translates
// directory facts into domain errors.
type Service struct {
	finder    Finder
	validator *cpf.Validator
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithValidator(v *cpf.Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

func NewService(finder Finder, opts ...Option) *Service {
	s := &Service{
		finder:    finder,
		validator: cpf.NewValidator(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Lookup(ctx context.Context, raw string) (*Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "CPF not provided")
	}
	id, err := s.validator.Parse(raw)
	if err != nil {
		return nil, err
	}
	if s.finder == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "configuration error")
	}

	rec, err := s.finder.FindByCPF(ctx, id.String())
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "Customer not found")
	case errors.Is(err, sentinel.ErrDuplicate):
		s.logger.ErrorContext(ctx, "multiple directory users share a CPF", "cpf_hash", id.Hash())
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "multiple records found")
	default:
		s.logger.ErrorContext(ctx, "directory lookup failed", "cpf_hash", id.Hash(), "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
	}
}
