package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cpfgate/pkg/domain-errors"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(Config{SigningKey: "test-signing-key", Issuer: "test-issuer", TTL: time.Hour}, opts...)
	require.NoError(t, err)
	return svc
}

func Test_IssueRoundTrip(t *testing.T) {
	svc := newTestService(t)

	for _, customer := range []bool{true, false} {
		token, exp, err := svc.Issue("52998224725", customer)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "52998224725", claims.CPF)
		assert.Equal(t, "52998224725", claims.Subject)
		assert.Equal(t, customer, claims.Customer)
		assert.Equal(t, "test-issuer", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
		assert.NotNil(t, claims.IssuedAt)
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	}
}

func Test_ValidateWithDifferentKeyFails(t *testing.T) {
	token, _, err := newTestService(t).Issue("52998224725", true)
	require.NoError(t, err)

	other, err := New(Config{SigningKey: "another-key", Issuer: "test-issuer"})
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateExpiredToken(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := newTestService(t, WithClock(past)).Issue("52998224725", false)
	require.NoError(t, err)

	_, err = newTestService(t).Validate(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		CPF: "52998224725",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService(t).Validate(signed)
	require.Error(t, err)
}

func Test_ValidateRequiresExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CPF:              "52998224725",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = newTestService(t).Validate(signed)
	require.Error(t, err)
}

func Test_NewWithoutKey(t *testing.T) {
	_, err := New(Config{Issuer: "x"})
	require.ErrorIs(t, err, ErrMissingSigningKey)
	assert.Equal(t, dErrors.CodeConfiguration, dErrors.CodeOf(err))

	svc, err := New(Config{AllowInsecureDefault: true})
	require.NoError(t, err)
	assert.True(t, svc.Insecure())
	assert.Equal(t, DefaultTTL, svc.ttl)

	assert.False(t, newTestService(t).Insecure())
}

func Test_ValidateSubject(t *testing.T) {
	svc := newTestService(t)
	token, _, err := svc.Issue("52998224725", true)
	require.NoError(t, err)

	subject, err := svc.ValidateSubject(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "52998224725", subject.CPF)
	assert.True(t, subject.Customer)
	assert.NotEmpty(t, subject.TokenID)

	_, err = svc.ValidateSubject(context.Background(), "garbage")
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
