// Package llm generates candidate answers from questions. Generation is
// an external collaborator of the verification pipeline: its output is
// graded like any other answer and never influences verification logic.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider defines the interface for answer-generating language models
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model identifier answers are generated with
	Model() string

	// Generate produces an answer for the question
	Generate(ctx context.Context, question string) (string, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

const (
	generateMaxRetries = 3
	generateBackoff    = 500 * time.Millisecond
)

// sleepFunc is the sleep function used between retries (injectable for tests)
var sleepFunc = time.Sleep

// errTransient marks failures worth retrying: rate limits, server
// errors, network hiccups. Anything else fails immediately.
var errTransient = errors.New("transient failure")

// transientf wraps a formatted error as retryable
func transientf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{errTransient}, args...)...)
}

// generateWithRetry runs fn with a small fixed retry budget and
// doubling backoff. Only transient errors are retried.
func generateWithRetry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	delay := generateBackoff

	for attempt := 0; attempt < generateMaxRetries; attempt++ {
		if attempt > 0 {
			sleepFunc(delay)
			delay *= 2
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		answer, err := fn(ctx)
		if err == nil {
			return answer, nil
		}
		if !errors.Is(err, errTransient) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", generateMaxRetries, lastErr)
}

// systemPrompt keeps generated answers concise and declarative so the
// claim extractor has clean sentences to work with
const systemPrompt = "You are a question answering assistant. " +
	"Answer factually in a few short declarative sentences. " +
	"Do not hedge, do not add disclaimers, do not ask questions back."

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}
