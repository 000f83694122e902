// Package app wires configuration into the intake pipeline and its adapters.
package app

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"lambda-comments/internal/config"
	"lambda-comments/internal/intake"
	"lambda-comments/internal/sink"
	"lambda-comments/internal/spam"
	"lambda-comments/internal/store"
)

// NewPipeline builds the pipeline described by settings. A nil classifier selects Akismet
// when AKISMET_KEY is set.
func NewPipeline(settings config.Settings, classifier spam.Classifier, logger zerolog.Logger) (*intake.Pipeline, error) {
	s, err := NewSink(settings)
	if err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = NewClassifier(settings, logger)
	}
	return intake.New([]byte(settings.APIKey), classifier, s,
		intake.WithLogger(logger),
		intake.WithTimeouts(settings.SpamTimeout, settings.CommitTimeout),
	), nil
}

// NewClassifier returns an Akismet client, or nil when no key is configured. A nil
// classifier rejects every submission that does not skip the spam check.
func NewClassifier(settings config.Settings, logger zerolog.Logger) spam.Classifier {
	if settings.AkismetKey == "" {
		logger.Warn().Msg("AKISMET_KEY not set; submissions that need a spam check will be rejected")
		return nil
	}
	return spam.NewAkismet(settings.AkismetKey, settings.AkismetBlog, settings.AkismetEndpoint, &http.Client{})
}

// NewSink returns the record sink selected by SINK_MODE.
func NewSink(settings config.Settings) (sink.Sink, error) {
	switch settings.SinkMode {
	case config.SinkQueue:
		return sink.NewQueue(sqs.NewFromConfig(settings.AWSConfig), settings.SQSQueueURL), nil
	case config.SinkDirect:
		return sink.NewDirect(NewStore(settings)), nil
	case config.SinkMemory:
		return sink.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown SINK_MODE %q", settings.SinkMode)
	}
}

// NewStore builds the DynamoDB store, archiving to S3 when S3_BUCKET is set.
func NewStore(settings config.Settings) *store.Store {
	var opts []store.Option
	if settings.S3Bucket != "" {
		opts = append(opts, store.WithArchive(s3.NewFromConfig(settings.AWSConfig), settings.S3Bucket, settings.S3Prefix))
	}
	return store.New(dynamodb.NewFromConfig(settings.AWSConfig), settings.DynamoDBTableName, opts...)
}
