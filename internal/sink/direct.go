package sink

import (
	"context"

	"lambda-comments/internal/models"
)

// Saver stores a record that already has an ID.
type Saver interface {
	Save(ctx context.Context, rec models.AcceptedRecord) error
}

// Direct writes records straight to a Saver, bypassing the queue.
type Direct struct {
	saver Saver
}

// NewDirect builds a Direct sink.
func NewDirect(saver Saver) *Direct {
	return &Direct{saver: saver}
}

// Commit implements Sink.
func (d *Direct) Commit(ctx context.Context, rec models.AcceptedRecord) (string, error) {
	rec.ID = NewID()
	if err := d.saver.Save(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}
