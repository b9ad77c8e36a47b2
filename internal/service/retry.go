package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/timmy/themeboard/internal/domain"
	"github.com/timmy/themeboard/internal/logger"
)

// RetryPolicy bounds attempts and backoff around labeling calls.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy returns three attempts starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	b.RandomizationFactor = 0.1
	return b
}

// RetryingLabeler wraps a ThemeLabeler with the retry policy. The wrapped
// contract is unchanged: texts in, one label out.
type RetryingLabeler struct {
	next   ThemeLabeler
	policy RetryPolicy
}

// NewRetryingLabeler wraps next with policy.
func NewRetryingLabeler(next ThemeLabeler, policy RetryPolicy) *RetryingLabeler {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingLabeler{next: next, policy: policy}
}

// Label calls the wrapped labeler until it succeeds, a permanent error
// occurs or attempts run out.
func (r *RetryingLabeler) Label(ctx context.Context, texts []string) (string, error) {
	attempt := 0
	op := func() (string, error) {
		attempt++
		label, err := r.next.Label(ctx, texts)
		if err == nil {
			return label, nil
		}
		var status *StatusError
		if errors.As(err, &status) && !status.Retryable() {
			return "", backoff.Permanent(err)
		}
		logger.With(logger.Fields{
			logger.FieldAttempt: attempt,
		}).Warn(ctx, "Labeling attempt failed: %v", err)
		return "", err
	}

	label, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(r.policy.backOff()),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
	)
	if err != nil && !errors.Is(err, domain.ErrLabeling) {
		return "", fmt.Errorf("%w: %v", domain.ErrLabeling, err)
	}
	return label, err
}
