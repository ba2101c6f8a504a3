package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/requestcontext"
)

// InsecureDefaultSigningKey is the test-only fallback key of the mock strategy.
// It is used only when AllowInsecureDefault is set and no key is configured.
const InsecureDefaultSigningKey = "cpfgate-insecure-mock-signing-key"

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = time.Hour

// Claims are the claims of an issued access token.
type Claims struct {
	CPF      string `json:"cpf"`
	Customer bool   `json:"customer"`
	jwt.RegisteredClaims
}

// Config configures a Service.
type Config struct {
	SigningKey           string
	Issuer               string
	TTL                  time.Duration
	AllowInsecureDefault bool
}

// Service issues and validates HS256 access tokens.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	insecure   bool
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the issuance clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// ErrMissingSigningKey is returned when no signing key is configured.
var ErrMissingSigningKey = dErrors.New(dErrors.CodeConfiguration, "configuration error")

func New(cfg Config, opts ...Option) (*Service, error) {
	key := cfg.SigningKey
	insecure := false
	if key == "" {
		if !cfg.AllowInsecureDefault {
			return nil, ErrMissingSigningKey
		}
		key = InsecureDefaultSigningKey
		insecure = true
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Service{
		signingKey: []byte(key),
		issuer:     cfg.Issuer,
		ttl:        ttl,
		insecure:   insecure,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Insecure reports whether the service signs with InsecureDefaultSigningKey.
func (s *Service) Insecure() bool {
	return s.insecure
}

// Issue signs a token for cpf. Every token carries an expiry.
func (s *Service) Issue(cpf string, customer bool) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CPF:      cpf,
		Customer: customer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cpf,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, expiresAt, nil
}

func (s *Service) Validate(tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, parserOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateSubject satisfies the bearer middleware's TokenValidator.
func (s *Service) ValidateSubject(_ context.Context, token string) (requestcontext.Subject, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return requestcontext.Subject{}, err
	}
	return requestcontext.Subject{
		CPF:      claims.CPF,
		Customer: claims.Customer,
		TokenID:  claims.ID,
	}, nil
}
