// Package lambdatransport adapts API Gateway events to the gateway services.
package lambdatransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"cpfgate/internal/authorizer"
	"cpfgate/internal/directory"
	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/httputil"
	"cpfgate/pkg/platform/middleware/device"
	"cpfgate/pkg/requestcontext"
)

// AuthorizeService runs one authorization request.
type AuthorizeService interface {
	Authorize(ctx context.Context, req authorizer.Request) authorizer.Result
}

// LookupService finds a directory record by CPF.
type LookupService interface {
	Lookup(ctx context.Context, raw string) (*directory.Record, error)
}

// API Gateway maps this exact message to a 401.
var errNoPolicy = errors.New("Unauthorized")

// PolicyHandler serves API Gateway REQUEST authorizers.
type PolicyHandler struct {
	service AuthorizeService
	logger  *slog.Logger
}

func NewPolicyHandler(service AuthorizeService, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{service: service, logger: logger}
}

func (h *PolicyHandler) Handle(ctx context.Context, ev events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	ctx = withRequestMetadata(ctx, ev.RequestContext.RequestID, ev.RequestContext.Identity.SourceIP, headerValue(ev.Headers, "User-Agent"))
	res := h.service.Authorize(ctx, authorizer.Request{
		Headers:  ev.Headers,
		Resource: ev.MethodArn,
	})
	if res.Policy == nil {
		// a token-shaped result here means the deployment is miswired
		h.logger.ErrorContext(ctx, "policy authorizer produced no policy")
		return events.APIGatewayCustomAuthorizerResponse{}, errNoPolicy
	}
	return toGatewayPolicy(*res.Policy), nil
}

// headerValue reads a header from an event map whose key casing depends on the client.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func toGatewayPolicy(p authorizer.Policy) events.APIGatewayCustomAuthorizerResponse {
	statements := make([]events.IAMPolicyStatement, 0, len(p.PolicyDocument.Statement))
	for _, st := range p.PolicyDocument.Statement {
		statements = append(statements, events.IAMPolicyStatement{
			Action:   []string{st.Action},
			Effect:   st.Effect,
			Resource: []string{st.Resource},
		})
	}
	var ctxValues map[string]interface{}
	if len(p.Context) > 0 {
		ctxValues = make(map[string]interface{}, len(p.Context))
		for k, v := range p.Context {
			ctxValues[k] = v
		}
	}
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: p.PrincipalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version:   p.PolicyDocument.Version,
			Statement: statements,
		},
		Context: ctxValues,
	}
}

// TokenHandler serves proxy integrations that exchange a CPF for a token.
type TokenHandler struct {
	service AuthorizeService
	logger  *slog.Logger
}

func NewTokenHandler(service AuthorizeService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{service: service, logger: logger}
}

func (h *TokenHandler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withProxyMetadata(ctx, ev)
	res := h.service.Authorize(ctx, authorizer.Request{
		Headers: ev.Headers,
		Body:    ev.Body,
	})
	if res.Response == nil {
		h.logger.ErrorContext(ctx, "token handler produced no envelope")
		return jsonResponse(http.StatusInternalServerError, map[string]string{"message": httputil.GenericInternalMessage}), nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: res.Response.StatusCode,
		Headers:    res.Response.Headers,
		Body:       res.Response.Body,
	}, nil
}

// LookupHandler serves the directory lookup over a proxy integration.
type LookupHandler struct {
	service LookupService
	logger  *slog.Logger
}

func NewLookupHandler(service LookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{service: service, logger: logger}
}

func (h *LookupHandler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withProxyMetadata(ctx, ev)
	if ev.Body == "" {
		return errorResponse(dErrors.New(dErrors.CodeBadRequest, "Request body is required")), nil
	}
	var req directory.LookupRequest
	if err := json.Unmarshal([]byte(ev.Body), &req); err != nil {
		return errorResponse(dErrors.New(dErrors.CodeBadRequest, "Request body is not valid JSON")), nil
	}
	rec, err := h.service.Lookup(ctx, req.CPF)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, directory.LookupResponse{
		Message:    "Customer found",
		Username:   rec.Username,
		Attributes: rec.Attributes,
	}), nil
}

// ProtectedHandler is the resource behind a Cognito or custom authorizer.
type ProtectedHandler struct {
	logger *slog.Logger
}

func NewProtectedHandler(logger *slog.Logger) *ProtectedHandler {
	return &ProtectedHandler{logger: logger}
}

type protectedResponse struct {
	Message   string `json:"message"`
	Principal string `json:"principal,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (h *ProtectedHandler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withProxyMetadata(ctx, ev)
	authz := ev.RequestContext.Authorizer
	resp := protectedResponse{Message: "Request authenticated"}
	if v, ok := authz["principalId"].(string); ok {
		resp.Principal = v
	}
	if claims, ok := authz["claims"].(map[string]interface{}); ok {
		if email, ok := claims["email"].(string); ok {
			resp.Email = email
		}
	}
	h.logger.InfoContext(ctx, "protected resource accessed", "request_id", requestcontext.RequestID(ctx))
	return jsonResponse(http.StatusOK, resp), nil
}

func withProxyMetadata(ctx context.Context, ev events.APIGatewayProxyRequest) context.Context {
	return withRequestMetadata(ctx, ev.RequestContext.RequestID, ev.RequestContext.Identity.SourceIP, ev.RequestContext.Identity.UserAgent)
}

func withRequestMetadata(ctx context.Context, requestID, sourceIP, userAgent string) context.Context {
	ctx = requestcontext.WithRequestID(ctx, requestID)
	ctx = requestcontext.WithClientMetadata(ctx, sourceIP, userAgent)
	return device.WithName(ctx, device.NameFromUserAgent(userAgent))
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"message":"` + httputil.GenericInternalMessage + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(raw),
	}
}

func errorResponse(err error) events.APIGatewayProxyResponse {
	status, body := httputil.ErrorEnvelope(err)
	return jsonResponse(status, body)
}
