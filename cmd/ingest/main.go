package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"lambda-comments/internal/api"
	"lambda-comments/internal/app"
	"lambda-comments/internal/config"
	"lambda-comments/internal/logging"
)

func main() {
	logger := logging.New(logging.FromEnv("ingest"))

	settings, err := config.Load(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}
	pipeline, err := app.NewPipeline(settings, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline setup error")
	}

	lambda.Start(api.NewHandler(pipeline, logger).HandleHTTP)
}
