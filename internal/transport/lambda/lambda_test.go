package lambdatransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfgate/internal/authorizer"
	"cpfgate/internal/customer"
	"cpfgate/internal/decision"
	"cpfgate/internal/directory"
	"cpfgate/internal/jwttoken"
	"cpfgate/pkg/platform/middleware/device"
	"cpfgate/pkg/platform/sentinel"
	"cpfgate/pkg/requestcontext"
)

type stubFinder struct {
	rec *directory.Record
	err error
}

func (f stubFinder) FindByCPF(context.Context, string) (*directory.Record, error) {
	return f.rec, f.err
}

type foundResolver struct{}

func (foundResolver) Resolve(context.Context, string) (customer.Resolution, error) {
	return customer.Resolution{Found: true}, nil
}

var discard = slog.New(slog.DiscardHandler)

func TestPolicyHandler(t *testing.T) {
	a := authorizer.New(decision.NewEngine(decision.PolicyStrategy(), foundResolver{}), nil)
	h := NewPolicyHandler(a, discard)

	resp, err := h.Handle(context.Background(), events.APIGatewayCustomAuthorizerRequestTypeRequest{
		MethodArn: "arn:aws:execute-api:sa-east-1:1:api/prod/GET/x",
		Headers:   map[string]string{"CPF": "52998224725"},
	})
	require.NoError(t, err)
	assert.Equal(t, "52998224725", resp.PrincipalID)
	assert.Equal(t, "2012-10-17", resp.PolicyDocument.Version)
	require.Len(t, resp.PolicyDocument.Statement, 1)
	st := resp.PolicyDocument.Statement[0]
	assert.Equal(t, []string{"execute-api:Invoke"}, st.Action)
	assert.Equal(t, "Allow", st.Effect)
	assert.Equal(t, []string{"arn:aws:execute-api:sa-east-1:1:api/prod/GET/x"}, st.Resource)

	resp, err = h.Handle(context.Background(), events.APIGatewayCustomAuthorizerRequestTypeRequest{MethodArn: "arn"})
	require.NoError(t, err)
	assert.Equal(t, "user", resp.PrincipalID)
	assert.Equal(t, "Deny", resp.PolicyDocument.Statement[0].Effect)
	assert.Equal(t, "CPF not provided", resp.Context["reason"])
}

type capturingAuthorizer struct {
	ctx context.Context
}

func (c *capturingAuthorizer) Authorize(ctx context.Context, _ authorizer.Request) authorizer.Result {
	c.ctx = ctx
	p := authorizer.RenderPolicy(decision.Decision{Kind: decision.KindDeny, Reason: "CPF not provided"}, "arn")
	return authorizer.Result{Policy: &p}
}

func TestPolicyHandlerRequestMetadata(t *testing.T) {
	const ua = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
	for _, key := range []string{"User-Agent", "user-agent"} {
		t.Run(key, func(t *testing.T) {
			svc := &capturingAuthorizer{}
			ev := events.APIGatewayCustomAuthorizerRequestTypeRequest{
				MethodArn: "arn",
				Headers:   map[string]string{key: ua},
			}
			ev.RequestContext.RequestID = "req-1"
			ev.RequestContext.Identity.SourceIP = "203.0.113.7"

			_, err := NewPolicyHandler(svc, discard).Handle(context.Background(), ev)
			require.NoError(t, err)
			require.NotNil(t, svc.ctx)
			assert.Equal(t, ua, requestcontext.UserAgent(svc.ctx))
			assert.Equal(t, "203.0.113.7", requestcontext.ClientIP(svc.ctx))
			assert.Equal(t, "req-1", requestcontext.RequestID(svc.ctx))
			assert.Equal(t, device.NameFromUserAgent(ua), device.Name(svc.ctx))
		})
	}
}

func TestPolicyHandlerMiswired(t *testing.T) {
	signer, err := jwttoken.New(jwttoken.Config{SigningKey: "k"})
	require.NoError(t, err)
	a := authorizer.New(decision.NewEngine(decision.TokenStrategy(), foundResolver{}), signer)

	_, err = NewPolicyHandler(a, discard).Handle(context.Background(), events.APIGatewayCustomAuthorizerRequestTypeRequest{})
	assert.EqualError(t, err, "Unauthorized")
}

func TestTokenHandler(t *testing.T) {
	signer, err := jwttoken.New(jwttoken.Config{AllowInsecureDefault: true})
	require.NoError(t, err)
	a := authorizer.New(decision.NewEngine(decision.MockStrategy(), customer.PrefixResolver{}), signer)
	h := NewTokenHandler(a, discard)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"cpf":"00011122233"}`})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body authorizer.TokenBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	claims, err := signer.Validate(body.Token)
	require.NoError(t, err)
	assert.False(t, claims.Customer)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"CPF not provided"}`, resp.Body)
}

func TestLookupHandler(t *testing.T) {
	svc := directory.NewService(stubFinder{rec: &directory.Record{Username: "maria", Attributes: map[string]string{"email": "m@example.com"}}})
	h := NewLookupHandler(svc, discard)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"cpf":"52998224725"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	var got directory.LookupResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &got))
	assert.Equal(t, "maria", got.Username)

	tests := []struct {
		name   string
		finder stubFinder
		body   string
		status int
	}{
		{name: "missing body", body: "", status: http.StatusBadRequest},
		{name: "malformed body", body: "{", status: http.StatusBadRequest},
		{name: "missing cpf", body: `{}`, status: http.StatusBadRequest},
		{name: "not found", finder: stubFinder{err: sentinel.ErrNotFound}, body: `{"cpf":"52998224725"}`, status: http.StatusNotFound},
		{name: "duplicate", finder: stubFinder{err: sentinel.ErrDuplicate}, body: `{"cpf":"52998224725"}`, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLookupHandler(directory.NewService(tt.finder), discard)
			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusInternalServerError {
				assert.Contains(t, resp.Body, "Internal server error")
			}
		})
	}
}

func TestProtectedHandler(t *testing.T) {
	h := NewProtectedHandler(discard)
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{
				"principalId": "52998224725",
				"claims":      map[string]interface{}{"email": "maria@example.com"},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Request authenticated","principal":"52998224725","email":"maria@example.com"}`, resp.Body)
}
