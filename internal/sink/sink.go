// Package sink commits accepted comments for durable storage.
package sink

import (
	"context"

	"github.com/google/uuid"

	"lambda-comments/internal/models"
)

// Sink persists an accepted record and returns its generated ID. The write is visible to
// readers only once Commit returns nil. Commit is not idempotent: retrying it may produce
// two records.
type Sink interface {
	Commit(ctx context.Context, rec models.AcceptedRecord) (string, error)
}

// NewID returns a time-ordered unique identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
