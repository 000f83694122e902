// Package intake runs a comment submission through signature verification, validation,
// spam classification and commit, in that order. The first failing stage ends the run.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"lambda-comments/internal/logging"
	"lambda-comments/internal/models"
	"lambda-comments/internal/signature"
	"lambda-comments/internal/sink"
	"lambda-comments/internal/spam"
	"lambda-comments/internal/validate"
)

// Stage names the last stage a submission completed.
type Stage string

// Stages, in order.
const (
	StageReceived    Stage = "received"
	StageVerified    Stage = "verified"
	StageValidated   Stage = "validated"
	StageSpamChecked Stage = "spam_checked"
	StageCommitted   Stage = "committed"
	StageResponded   Stage = "responded"
)

// Default timeouts for outbound calls.
const (
	DefaultSpamTimeout   = 3 * time.Second
	DefaultCommitTimeout = 5 * time.Second
)

// Pipeline is safe for concurrent use; it holds no per-submission state.
type Pipeline struct {
	secret        []byte
	classifier    spam.Classifier
	sink          sink.Sink
	logger        zerolog.Logger
	spamTimeout   time.Duration
	commitTimeout time.Duration
	now           func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTimeouts bounds the spam check and the commit. Non-positive values keep the defaults.
func WithTimeouts(spamTimeout, commitTimeout time.Duration) Option {
	return func(p *Pipeline) {
		if spamTimeout > 0 {
			p.spamTimeout = spamTimeout
		}
		if commitTimeout > 0 {
			p.commitTimeout = commitTimeout
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a Pipeline. The secret is copied; a nil classifier makes every spam check fail
// unless the submission skips it.
func New(secret []byte, classifier spam.Classifier, s sink.Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		secret:        append([]byte(nil), secret...),
		classifier:    classifier,
		sink:          s,
		logger:        zerolog.Nop(),
		spamTimeout:   DefaultSpamTimeout,
		commitTimeout: DefaultCommitTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one submission. On failure the error is an *Error.
func (p *Pipeline) Handle(ctx context.Context, sub models.Submission) (models.Accepted, error) {
	log := logging.ForSubmission(p.logger, sub.Quiet, sub.IsTest).With().
		Str("source_ip", sub.SourceIP).
		Bool("dry_run", sub.DryRun).
		Logger()

	if err := signature.Verify(sub.Fields.Payload, sub.Fields.Signature, p.secret); err != nil {
		return p.fail(log, StageReceived, newError(KindVerification, MsgChecksum, err))
	}

	comment, err := validate.Comment(sub.Fields.Payload)
	if err != nil {
		return p.fail(log, StageVerified, validationError(err))
	}

	if sub.SkipSpamCheck {
		log.Debug().Msg("spam check skipped")
	} else if serr := p.checkSpam(ctx, log, comment, sub); serr != nil {
		return p.fail(log, StageValidated, serr)
	}

	rec := models.NewAcceptedRecord(comment, sub.SourceIP, p.now())
	if sub.DryRun {
		id := sink.NewID()
		log.Info().Str("id", id).Str("stage", string(StageResponded)).Msg("comment accepted, commit skipped")
		return models.Accepted{ID: id}, nil
	}

	id, cerr := p.commit(ctx, rec)
	if cerr != nil {
		return p.fail(log, StageSpamChecked, cerr)
	}
	log.Info().Str("id", id).Str("stage", string(StageResponded)).Msg("comment accepted")
	return models.Accepted{ID: id}, nil
}

func (p *Pipeline) checkSpam(ctx context.Context, log zerolog.Logger, comment models.Comment, sub models.Submission) *Error {
	if p.classifier == nil {
		return newError(KindProvider, MsgProvider, errors.New("no spam classifier configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, p.spamTimeout)
	defer cancel()

	verdict, err := p.classifier.Classify(ctx, spam.Request{
		Comment:  comment,
		SourceIP: sub.SourceIP,
		IsTest:   sub.IsTest,
	})
	if err != nil {
		return newError(KindProvider, MsgProvider, err)
	}
	if verdict.IsSpam {
		log.Info().Str("reason", verdict.Reason).Msg("classified as spam")
		return newError(KindSpam, MsgSpam, nil)
	}
	log.Debug().Msg("spam check passed")
	return nil
}

func (p *Pipeline) commit(ctx context.Context, rec models.AcceptedRecord) (string, *Error) {
	if p.sink == nil {
		return "", newError(KindStorage, MsgStorage, errors.New("no record sink configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, p.commitTimeout)
	defer cancel()

	id, err := p.sink.Commit(ctx, rec)
	if err != nil {
		return "", newError(KindStorage, MsgStorage, err)
	}
	if id == "" {
		return "", newError(KindStorage, MsgStorage, errors.New("sink returned an empty id"))
	}
	return id, nil
}

// fail logs a rejection once. Client-side rejections log at info so quiet hides them;
// infrastructure failures always log.
func (p *Pipeline) fail(log zerolog.Logger, completed Stage, err *Error) (models.Accepted, error) {
	var ev *zerolog.Event
	if err.Retryable() {
		ev = log.Error()
	} else {
		ev = log.Info()
	}
	ev.Str("kind", string(err.Kind)).
		Str("stage", string(completed)).
		AnErr("cause", err.cause).
		Interface("data", err.Data).
		Msg("comment rejected")
	return models.Accepted{}, err
}

func validationError(err error) *Error {
	var fields validate.Errors
	if !errors.As(err, &fields) {
		return newError(KindValidation, validate.MsgInvalidPayload, err)
	}
	data := make(map[string]string, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	return &Error{Kind: KindValidation, Data: data}
}
