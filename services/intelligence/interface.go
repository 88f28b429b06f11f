// File: services/intelligence/interface.go
package ai

import (
	"context"
	"fmt"

	"medibot/models"
)

// Classifier turns one free-text message into an intent, a reply and any extracted
// appointment fields. Each call stands alone: no conversation memory is carried.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.Classification, error)
}

// ClassificationError reports that no usable classification came back.
type ClassificationError struct {
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return "classification failed: " + e.Reason
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (*models.Classification, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (*models.Classification, error) {
	return f(ctx, text)
}
