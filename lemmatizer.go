// Package lemmatizer reduces text to dictionary base forms.
//
// Tokenization, tagging and lemmatization are done by a Model. The
// package adds what sits around it: loading the model once at startup,
// validating requests, and rebuilding the input text with every word
// replaced by its lemma while keeping the original whitespace intact.
package lemmatizer

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Service answers lemmatization requests against a shared model handle.
// It is safe for concurrent use.
type Service struct {
	handle *Handle
}

// NewService returns a Service reading its model from h.
func NewService(h *Handle) *Service {
	return &Service{handle: h}
}

// Handle returns the model handle backing the service.
func (s *Service) Handle() *Handle {
	return s.handle
}

// Validate checks that text is non-empty after trimming.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return &FieldError{Field: "text", Reason: "must be a non-empty string"}
	}
	return nil
}

// Lemmatize validates text, runs the model once and builds the result.
func (s *Service) Lemmatize(ctx context.Context, text string) (Result, error) {
	if err := Validate(text); err != nil {
		return Result{}, err
	}
	m, err := s.handle.Model()
	if err != nil {
		return Result{}, err
	}
	doc, err := m.Process(ctx, text)
	if err != nil {
		return Result{}, errors.Wrapf(err, "model %q", m.Name())
	}
	return Lemmatize(doc), nil
}
