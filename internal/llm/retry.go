package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const initialBackoff = time.Second

// retryer repeats op on transient failures with exponential backoff. A
// retries value of 3 allows up to four attempts in total.
type retryer struct {
	retries   int
	backoff   time.Duration
	retryable func(error) bool
}

func (r retryer) do(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialBackoff
	if r.backoff > 0 {
		exp.InitialInterval = r.backoff
	}
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0

	retries := r.retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)

	return backoff.RetryWithData(func() (string, error) {
		result, err := op(ctx)
		if err != nil && (r.retryable == nil || !r.retryable(err)) {
			return "", backoff.Permanent(err)
		}
		return result, err
	}, policy)
}
