package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"lambda-comments/internal/app"
	"lambda-comments/internal/config"
	"lambda-comments/internal/logging"
	"lambda-comments/internal/models"
	"lambda-comments/internal/store"
)

type saver interface {
	Save(ctx context.Context, rec models.AcceptedRecord) error
}

type worker struct {
	store  saver
	logger zerolog.Logger
}

func main() {
	logger := logging.New(logging.FromEnv("worker"))

	settings, err := config.LoadWorker(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	w := &worker{store: app.NewStore(settings), logger: logger}
	lambda.Start(w.handleSQSEvent)
}

// handleSQSEvent reports failed messages individually so only they are redelivered.
func (w *worker) handleSQSEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, record := range event.Records {
		if err := w.processRecord(ctx, record); err != nil {
			w.logger.Error().Err(err).Str("message_id", record.MessageId).Msg("record not persisted")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return resp, nil
}

func (w *worker) processRecord(ctx context.Context, record events.SQSMessage) error {
	var rec models.AcceptedRecord
	if err := json.Unmarshal([]byte(record.Body), &rec); err != nil || rec.ID == "" {
		// redelivery cannot fix a malformed body
		w.logger.Error().Err(err).Str("message_id", record.MessageId).Msg("dropping invalid message body")
		return nil
	}

	if err := w.store.Save(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			w.logger.Info().Str("id", rec.ID).Msg("duplicate detected")
			return nil
		}
		return fmt.Errorf("save %s: %w", rec.ID, err)
	}

	w.logger.Info().Str("id", rec.ID).Str("permalink", rec.Comment.Permalink).Msg("persisted")
	return nil
}
