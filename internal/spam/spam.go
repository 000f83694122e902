// Package spam asks an external reputation service whether a comment is spam.
package spam

import (
	"context"

	"lambda-comments/internal/models"
)

// Request is what the classifier needs to judge one comment.
type Request struct {
	Comment  models.Comment
	SourceIP string
	IsTest   bool
}

// Verdict is the classifier's outcome.
type Verdict struct {
	IsSpam bool
	Reason string
}

// Classifier returns a verdict, or an error when the provider could not be reached or
// answered with something unusable. An error never means "not spam".
type Classifier interface {
	Classify(ctx context.Context, req Request) (Verdict, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, req Request) (Verdict, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) (Verdict, error) {
	return f(ctx, req)
}
