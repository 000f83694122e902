// Package api adapts the intake pipeline to its callers: direct Lambda invocation,
// API Gateway HTTP events, and a plain net/http router for local development.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"lambda-comments/internal/intake"
	"lambda-comments/internal/models"
)

// MsgInvalidBody is reported when the request body is not a JSON object.
const MsgInvalidBody = "Invalid request body"

// Intake runs one submission.
type Intake interface {
	Handle(ctx context.Context, sub models.Submission) (models.Accepted, error)
}

// Handler serves every transport from one pipeline.
type Handler struct {
	intake Intake
	logger zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(in Intake, logger zerolog.Logger) *Handler {
	return &Handler{intake: in, logger: logger}
}

// HandleEvent serves direct invocations. On failure the returned error's message is the
// serialized envelope, which the Lambda runtime reports as errorMessage.
func (h *Handler) HandleEvent(ctx context.Context, sub models.Submission) (models.Accepted, error) {
	got, err := h.intake.Handle(ctx, sub)
	if err != nil {
		if e, ok := intake.As(err); ok {
			return models.Accepted{}, e
		}
		h.logger.Error().Err(err).Msg("unexpected intake failure")
		return models.Accepted{}, intake.Internal(err)
	}
	return got, nil
}

// submit decodes a POST /comments body and runs it. Remote callers cannot set pipeline flags.
func (h *Handler) submit(ctx context.Context, body []byte, sourceIP string) (int, []byte) {
	var req models.CommentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Debug().Err(err).Msg("undecodable request body")
		return respond(models.Accepted{}, intake.Invalid(MsgInvalidBody))
	}
	got, err := h.intake.Handle(ctx, models.Submission{
		Fields:   models.Fields{Payload: req.Payload, Signature: req.Signature},
		SourceIP: sourceIP,
	})
	if err != nil {
		if _, ok := intake.As(err); !ok {
			h.logger.Error().Err(err).Msg("unexpected intake failure")
		}
	}
	return respond(got, err)
}

// respond maps an outcome to a status and JSON body.
func respond(got models.Accepted, err error) (int, []byte) {
	if err == nil {
		return http.StatusCreated, encode(got)
	}
	status := http.StatusBadRequest
	if e, ok := intake.As(err); !ok || e.Kind == intake.KindInternal {
		status = http.StatusInternalServerError
	}
	return status, encode(models.ErrorResponse{ErrorMessage: intake.EnvelopeOf(err)})
}

func encode(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []byte(`{"errorMessage":"{\"error\":\"InternalError\",\"data\":{\"_error\":\"Internal error.\"}}"}`)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
