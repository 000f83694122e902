package models

import (
	"encoding/json"
	"time"
)

// Fields carries the signed part of a submission.
// Payload is kept as raw bytes so the signature is checked against exactly what the client signed.
type Fields struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// Submission is the event handed to the intake pipeline.
type Submission struct {
	Fields        Fields `json:"fields"`
	SourceIP      string `json:"sourceIp,omitempty"`
	DryRun        bool   `json:"dryRun,omitempty"`
	SkipSpamCheck bool   `json:"skipSpamCheck,omitempty"`
	IsTest        bool   `json:"isTest,omitempty"`
	Quiet         bool   `json:"quiet,omitempty"`
}

// CommentRequest matches the JSON body of POST /comments.
type CommentRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// Comment is a validated comment payload.
type Comment struct {
	Permalink      string `json:"permalink" dynamodbav:"permalink" validate:"nonblank,url"`
	UserAgent      string `json:"userAgent" dynamodbav:"user_agent" validate:"nonblank"`
	Referrer       string `json:"referrer,omitempty" dynamodbav:"referrer,omitempty" validate:"omitempty,url"`
	CommentContent string `json:"commentContent" dynamodbav:"comment_content" validate:"nonblank"`
	AuthorName     string `json:"authorName" dynamodbav:"author_name" validate:"nonblank"`
	AuthorEmail    string `json:"authorEmail" dynamodbav:"author_email" validate:"nonblank,email"`
	AuthorURL      string `json:"authorUrl,omitempty" dynamodbav:"author_url,omitempty" validate:"omitempty,url"`
}

// AcceptedRecord is the durable artifact written for an accepted comment.
type AcceptedRecord struct {
	ID         string    `json:"id" dynamodbav:"id"`
	Comment    Comment   `json:"comment" dynamodbav:"comment"`
	SourceIP   string    `json:"sourceIp,omitempty" dynamodbav:"source_ip,omitempty"`
	ReceivedAt time.Time `json:"receivedAt" dynamodbav:"received_at"`
}

// Accepted is returned after a comment passes every stage.
type Accepted struct {
	ID string `json:"id"`
}

// ErrorResponse is the HTTP body returned on failure.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// NewAcceptedRecord builds a record with a UTC receive timestamp. The ID is assigned by the sink.
func NewAcceptedRecord(comment Comment, sourceIP string, receivedAt time.Time) AcceptedRecord {
	return AcceptedRecord{
		Comment:    comment,
		SourceIP:   sourceIP,
		ReceivedAt: receivedAt.UTC(),
	}
}
