package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"lambda-comments/internal/intake"
	"lambda-comments/internal/models"
)

// HandleHTTP serves POST /comments behind an API Gateway HTTP API.
func (h *Handler) HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if method := req.RequestContext.HTTP.Method; method != "" && method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, encode(models.ErrorResponse{ErrorMessage: "method not allowed"})), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			status, payload := respond(models.Accepted{}, intake.Invalid(MsgInvalidBody))
			return jsonResponse(status, payload), nil
		}
		body = decoded
	}

	status, payload := h.submit(ctx, body, req.RequestContext.HTTP.SourceIP)
	return jsonResponse(status, payload), nil
}

func jsonResponse(code int, body []byte) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: code,
		Body:       string(body),
		Headers: map[string]string{
			"content-type": "application/json",
		},
	}
}
