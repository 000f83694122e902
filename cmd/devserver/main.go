package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lambda-comments/internal/api"
	"lambda-comments/internal/app"
	"lambda-comments/internal/config"
	"lambda-comments/internal/logging"
	"lambda-comments/internal/spam"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(logging.FromEnv("devserver"))

	settings, err := config.Load(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	var classifier spam.Classifier
	if settings.AkismetKey == "" {
		classifier = allowAll(logger)
	}
	pipeline, err := app.NewPipeline(settings, classifier, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline setup error")
	}

	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           api.NewHandler(pipeline, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", settings.HTTPAddr).Str("sink", settings.SinkMode).Msg("dev server listening")
	if err := run(ctx, srv); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}

// allowAll stands in for Akismet when no key is configured.
func allowAll(logger zerolog.Logger) spam.Classifier {
	logger.Warn().Msg("AKISMET_KEY not set; every comment is classified as not spam")
	return spam.ClassifierFunc(func(context.Context, spam.Request) (spam.Verdict, error) {
		return spam.Verdict{}, nil
	})
}

// run blocks until ctx is canceled, then shuts srv down gracefully.
func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
