package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/caarlos0/env/v11"
)

// Sink modes.
const (
	SinkQueue  = "queue"
	SinkDirect = "direct"
	SinkMemory = "memory"
)

// Settings holds resolved configuration and shared AWS config.
type Settings struct {
	AWSConfig aws.Config
	Env
}

// Env holds the values read from environment variables.
type Env struct {
	APIKey string `env:"API_KEY"`

	AkismetKey      string `env:"AKISMET_KEY"`
	AkismetBlog     string `env:"AKISMET_BLOG"`
	AkismetEndpoint string `env:"AKISMET_ENDPOINT" envDefault:"https://rest.akismet.com"`

	SinkMode          string `env:"SINK_MODE" envDefault:"queue"`
	SQSQueueURL       string `env:"SQS_QUEUE_URL"`
	DynamoDBTableName string `env:"DYNAMODB_TABLE_NAME"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Prefix          string `env:"S3_PREFIX" envDefault:"comments/"`

	SpamTimeout   time.Duration `env:"SPAM_TIMEOUT" envDefault:"3s"`
	CommitTimeout time.Duration `env:"COMMIT_TIMEOUT" envDefault:"5s"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// Load reads environment variables and AWS configuration for the intake lambdas.
func Load(ctx context.Context) (Settings, error) {
	settings, err := FromEnv(nil)
	if err != nil {
		return Settings{}, err
	}
	if err := settings.checkIntake(); err != nil {
		return Settings{}, err
	}
	if settings.SinkMode == SinkMemory {
		return settings, nil
	}
	return withAWS(ctx, settings)
}

// LoadWorker reads the configuration needed by the queue worker.
func LoadWorker(ctx context.Context) (Settings, error) {
	settings, err := FromEnv(nil)
	if err != nil {
		return Settings{}, err
	}
	if settings.DynamoDBTableName == "" {
		return Settings{}, errors.New("missing DYNAMODB_TABLE_NAME")
	}
	return withAWS(ctx, settings)
}

func withAWS(ctx context.Context, settings Settings) (Settings, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load AWS config: %w", err)
	}
	settings.AWSConfig = awsCfg
	return settings, nil
}

// FromEnv parses settings. A nil environment means the process environment.
func FromEnv(environment map[string]string) (Settings, error) {
	var settings Settings
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&settings.Env, opts); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return settings, nil
}

func (s Settings) checkIntake() error {
	if s.APIKey == "" {
		return errors.New("missing API_KEY")
	}
	switch s.SinkMode {
	case SinkQueue:
		if s.SQSQueueURL == "" {
			return errors.New("missing SQS_QUEUE_URL")
		}
	case SinkDirect:
		if s.DynamoDBTableName == "" {
			return errors.New("missing DYNAMODB_TABLE_NAME")
		}
	case SinkMemory:
	default:
		return fmt.Errorf("unknown SINK_MODE %q", s.SinkMode)
	}
	if s.SpamTimeout <= 0 || s.CommitTimeout <= 0 {
		return errors.New("SPAM_TIMEOUT and COMMIT_TIMEOUT must be positive")
	}
	return nil
}
