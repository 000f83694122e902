package intake

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Kind tags a pipeline failure.
type Kind string

// Failure kinds.
const (
	KindValidation   Kind = "ValidationError"
	KindVerification Kind = "VerificationError"
	KindSpam         Kind = "SpamError"
	KindProvider     Kind = "ProviderError"
	KindStorage      Kind = "StorageError"
	KindInternal     Kind = "InternalError"
)

// GeneralKey holds whole-submission messages in Data.
const GeneralKey = "_error"

// Messages returned to the client.
const (
	MsgChecksum = "Checksum verification failed."
	MsgSpam     = "Our automated filter thinks this comment is spam."
	MsgProvider = "The spam filter is unavailable. Please try again."
	MsgStorage  = "The comment could not be saved. Please try again."
	MsgInternal = "Internal error."
)

// Error is a pipeline failure. Its message is the serialized envelope, which is what
// existing clients expect to receive verbatim.
type Error struct {
	Kind  Kind
	Data  map[string]string
	cause error
}

// Envelope is the wire form of an Error.
type Envelope struct {
	Error Kind              `json:"error"`
	Data  map[string]string `json:"data"`
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Data: map[string]string{GeneralKey: msg}, cause: cause}
}

// Error returns the serialized envelope.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Envelope().String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Envelope returns the wire form.
func (e *Error) Envelope() Envelope {
	data := e.Data
	if data == nil {
		data = map[string]string{}
	}
	return Envelope{Error: e.Kind, Data: data}
}

// Retryable reports whether the caller may retry the same submission.
func (e *Error) Retryable() bool {
	return e.Kind == KindProvider || e.Kind == KindStorage
}

// String serializes the envelope compactly, with map keys sorted and without HTML escaping.
func (env Envelope) String() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return `{"error":"InternalError","data":{"_error":"Internal error."}}`
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// EnvelopeOf returns the serialized envelope for any error. Errors that did not come from
// the pipeline are reported as InternalError without leaking their text.
func EnvelopeOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Error()
	}
	return Internal(err).Error()
}

// Invalid reports a malformed submission that never reached the pipeline.
func Invalid(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

// Internal wraps an unexpected failure without exposing its text to the client.
func Internal(cause error) *Error {
	return newError(KindInternal, MsgInternal, cause)
}
